package server

import (
	"net/http"
	"strings"

	"tagflow/internal/api"
	"tagflow/internal/tagging"
)

type assignRequest struct {
	MusicID     int64   `json:"music_id"`
	QuestionIDs []int64 `json:"question_ids"`
	TaggerIDs   []int64 `json:"tagger_ids"`
}

type reviewRequest struct {
	Result  string `json:"result"`
	Comment string `json:"comment"`
}

type selectionRequest struct {
	SelectedOptions []string `json:"selected_options"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query := tagging.TaskQuery{
		Keyword: strings.TrimSpace(r.URL.Query().Get("keyword")),
		Status:  strings.TrimSpace(r.URL.Query().Get("status")),
	}
	var err error
	if query.TaggerID, err = queryInt64(r, "tagger_id"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if query.ReviewerID, err = queryInt64(r, "reviewer_id"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if query.MusicID, err = queryInt64(r, "music_id"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if query.Page, err = queryInt(r, "page"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if query.PageSize, err = queryInt(r, "page_size"); err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.engine.ListTasks(r.Context(), identityFrom(r.Context()), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromTaskPage(page))
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ids, err := s.engine.Assign(r.Context(), identityFrom(r.Context()), tagging.Assignment{
		MusicID:     req.MusicID,
		QuestionIDs: req.QuestionIDs,
		TaggerIDs:   req.TaggerIDs,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, api.AssignResponse{TaskIDs: ids})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.engine.Task(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromTaskDetail(detail))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.DeleteTask(r.Context(), identityFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.engine.Finish(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromTask(task))
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.engine.Review(r.Context(), identityFrom(r.Context()), id, tagging.ReviewResult(req.Result), req.Comment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromTask(task))
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req selectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	record, err := s.engine.SetSelection(r.Context(), identityFrom(r.Context()), id, req.SelectedOptions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromRecord(record))
}
