package server

import (
	"net/http"

	"tagflow/internal/api"
	"tagflow/internal/tagging"
)

type questionRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	IsMultipleChoice bool     `json:"is_multiple_choice"`
	Options          []string `json:"options"`
}

// questionPatchRequest leaves fields that are absent or null unchanged.
type questionPatchRequest struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	IsMultipleChoice *bool     `json:"is_multiple_choice"`
	Options          *[]string `json:"options"`
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.engine.ListQuestions(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromQuestions(questions))
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	question, err := s.engine.CreateQuestion(r.Context(), identityFrom(r.Context()), tagging.QuestionInput{
		Title:            req.Title,
		Description:      req.Description,
		IsMultipleChoice: req.IsMultipleChoice,
		Options:          req.Options,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, api.FromQuestion(question))
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	question, err := s.engine.Question(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromQuestion(question))
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req questionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch := tagging.QuestionPatch{
		Title:            req.Title,
		Description:      req.Description,
		IsMultipleChoice: req.IsMultipleChoice,
	}
	if req.Options != nil {
		patch.Options = *req.Options
		if patch.Options == nil {
			patch.Options = []string{}
		}
	}
	question, err := s.engine.UpdateQuestion(r.Context(), identityFrom(r.Context()), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromQuestion(question))
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.DeleteQuestion(r.Context(), identityFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
