package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tagflow/internal/services"
	"tagflow/internal/tagging"
)

// handleExport returns the export document as a download, or uploads it to
// the archive bucket when archive=1 and returns the receipt.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	musicIDs, err := queryIDs(r, "music_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	caller := identityFrom(r.Context())
	data, err := s.engine.ExportRecords(r.Context(), caller, musicIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := tagging.ExportFileName(time.Now())

	if queryFlag(r, "archive") {
		if s.archive == nil {
			s.writeError(w, r, &services.ConflictError{Entity: "export", Msg: "archive is not enabled"})
			return
		}
		receipt, err := s.archive.Upload(r.Context(), name, data)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.engine.ExportArchived(r.Context(), receipt.Bucket, receipt.Key)
		s.writeJSON(w, r, http.StatusCreated, receipt)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
