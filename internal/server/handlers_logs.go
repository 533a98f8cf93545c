package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"tagflow/internal/api"
	"tagflow/internal/auth"
	"tagflow/internal/logs"
	"tagflow/internal/services"
)

const (
	defaultLogLimit = 200
	maxLogLimit     = 2000
	logFollowWait   = 10 * time.Second
)

// handleLogs serves the daemon's JSON log file. Without since it returns the
// last limit matching lines; with since it returns every matching line
// written after that byte offset, waiting briefly for new ones when follow=1.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())
	if err := caller.Require(auth.CapAdmin, "read logs"); err != nil {
		s.writeError(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}
	limit = min(limit, maxLogLimit)

	offset := int64(-1)
	if strings.TrimSpace(r.URL.Query().Get("since")) != "" {
		since, err := queryInt64(r, "since")
		if err != nil || since < 0 {
			s.writeError(w, r, &services.ValidationError{Field: "since", Msg: "must be a non-negative offset"})
			return
		}
		offset = since
	}
	taskID, err := queryInt64(r, "task")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter := logs.Filter{
		EventType: strings.TrimSpace(r.URL.Query().Get("event")),
		MinLevel:  strings.ToLower(strings.TrimSpace(r.URL.Query().Get("level"))),
		TaskID:    taskID,
	}
	if filter.MinLevel != "" && !logs.ValidLevel(filter.MinLevel) {
		s.writeError(w, r, &services.ValidationError{Field: "level", Msg: "use debug, info, warn, or error"})
		return
	}

	opts := logs.TailOptions{Offset: offset, Limit: limit, Filter: filter}
	if offset >= 0 && queryFlag(r, "follow") {
		opts.Follow = true
		opts.Wait = logFollowWait
	}
	result, err := logs.Tail(r.Context(), s.cfg.LogFilePath(), opts)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.writeError(w, r, err)
		return
	}
	lines := result.Lines
	if lines == nil {
		lines = []string{}
	}
	s.writeJSON(w, r, http.StatusOK, api.LogPage{Lines: lines, Next: result.Offset})
}
