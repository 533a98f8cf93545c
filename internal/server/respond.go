package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tagflow/internal/api"
	"tagflow/internal/logging"
	"tagflow/internal/services"
)

const maxBodyBytes = 4 << 20

var kindStatus = map[string]int{
	services.KindValidation:   http.StatusBadRequest,
	services.KindUnauthorized: http.StatusUnauthorized,
	services.KindForbidden:    http.StatusForbidden,
	services.KindNotFound:     http.StatusNotFound,
	services.KindConflict:     http.StatusConflict,
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("failed to encode response", logging.Error(err))
	}
}

// writeError maps err to a status code. Internal errors are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.Kind(err)
	status, ok := kindStatus[kind]
	msg := err.Error()
	if !ok {
		status = http.StatusInternalServerError
		msg = "internal error"
		logging.WithContext(r.Context(), s.logger).Error("request failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
	}
	s.writeJSON(w, r, status, api.ErrorResponse{Error: msg, Kind: kind})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &services.ValidationError{Msg: "request body too large"}
		case errors.Is(err, io.EOF):
			return &services.ValidationError{Msg: "request body is required"}
		default:
			return &services.ValidationError{Msg: fmt.Sprintf("malformed JSON body: %v", err)}
		}
	}
	return nil
}

// decodeOptionalJSON decodes the body into dst unless the body is empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &services.ValidationError{Msg: "request body too large"}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &services.ValidationError{Msg: fmt.Sprintf("malformed JSON body: %v", err)}
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &services.ValidationError{Field: "id", Msg: fmt.Sprintf("invalid id %q", raw)}
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &services.ValidationError{Field: key, Msg: fmt.Sprintf("invalid integer %q", raw)}
	}
	return v, nil
}

func queryInt64(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &services.ValidationError{Field: key, Msg: fmt.Sprintf("invalid id %q", raw)}
	}
	return v, nil
}

// queryIDs collects ids from repeated and comma separated values of key.
func queryIDs(r *http.Request, key string) ([]int64, error) {
	var ids []int64
	for _, value := range r.URL.Query()[key] {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, &services.ValidationError{Field: key, Msg: fmt.Sprintf("invalid id %q", part)}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func queryFlag(r *http.Request, key string) bool {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	return v == "1" || strings.EqualFold(v, "true")
}
