package server

import (
	"net/http"
	"strings"

	"tagflow/internal/accounts"
	"tagflow/internal/api"
	"tagflow/internal/store"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// handleRegister accepts anonymous callers; the accounts service decides
// whether registration is open. A supplied token must be valid.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	caller, _, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		req.Role = "tagger"
	}
	user, err := s.accounts.Register(r.Context(), caller, accounts.Registration{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, api.FromUser(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	session, err := s.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromSession(session))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.User(r.Context(), identityFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromUser(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	users, err := s.accounts.List(r.Context(), identityFrom(r.Context()), store.UserFilter{
		Keyword: strings.TrimSpace(query.Get("keyword")),
		Role:    strings.TrimSpace(query.Get("role")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromUsers(users))
}
