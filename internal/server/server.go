// Package server exposes the tagging workflow over HTTP.
//
// Routes use method-qualified net/http patterns. Every request passes through
// request id assignment, access logging, and per-client rate limiting; routes
// other than status, login, and register require a bearer token issued by
// accounts.Service.Login. Handlers decode input, call the engine or a service
// with the caller's identity, and map typed errors to status codes.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"tagflow/internal/accounts"
	"tagflow/internal/api"
	"tagflow/internal/archive"
	"tagflow/internal/config"
	"tagflow/internal/library"
	"tagflow/internal/logging"
	"tagflow/internal/tagging"
)

// Deps wires the server to the domain services. Archive may be nil when
// export archiving is disabled; Status may be nil.
type Deps struct {
	Config   *config.Config
	Engine   *tagging.Engine
	Accounts *accounts.Service
	Library  *library.Service
	Archive  archive.Uploader
	Status   func(ctx context.Context) api.Status
	Logger   *slog.Logger
}

// Server routes HTTP requests to the domain services.
type Server struct {
	cfg      *config.Config
	engine   *tagging.Engine
	accounts *accounts.Service
	library  *library.Service
	archive  archive.Uploader
	status   func(ctx context.Context) api.Status
	logger   *slog.Logger
	limiter  *clientLimiter
	handler  http.Handler
}

// New builds the server and its route table.
func New(deps Deps) *Server {
	s := &Server{
		cfg:      deps.Config,
		engine:   deps.Engine,
		accounts: deps.Accounts,
		library:  deps.Library,
		archive:  deps.Archive,
		status:   deps.Status,
		logger:   logging.NewComponentLogger(deps.Logger, "api-server"),
		limiter:  newClientLimiter(deps.Config.Server.RateLimitPerSecond, deps.Config.Server.RateLimitBurst),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/me", s.authed(s.handleMe))
	mux.HandleFunc("GET /api/users", s.authed(s.handleListUsers))

	mux.HandleFunc("GET /api/questions", s.authed(s.handleListQuestions))
	mux.HandleFunc("POST /api/questions", s.authed(s.handleCreateQuestion))
	mux.HandleFunc("GET /api/questions/{id}", s.authed(s.handleGetQuestion))
	mux.HandleFunc("PUT /api/questions/{id}", s.authed(s.handleUpdateQuestion))
	mux.HandleFunc("DELETE /api/questions/{id}", s.authed(s.handleDeleteQuestion))

	mux.HandleFunc("GET /api/music", s.authed(s.handleListMusic))
	mux.HandleFunc("POST /api/music/import", s.authed(s.handleImportMusic))
	mux.HandleFunc("POST /api/music/recount", s.authed(s.handleRecount))
	mux.HandleFunc("DELETE /api/music/{id}", s.authed(s.handleDeleteMusic))
	mux.HandleFunc("GET /api/music/{id}/file", s.authed(s.handleMusicFile))

	mux.HandleFunc("GET /api/tasks", s.authed(s.handleListTasks))
	mux.HandleFunc("POST /api/tasks", s.authed(s.handleAssign))
	mux.HandleFunc("GET /api/tasks/{id}", s.authed(s.handleGetTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.authed(s.handleDeleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/finish", s.authed(s.handleFinish))
	mux.HandleFunc("POST /api/tasks/{id}/review", s.authed(s.handleReview))
	mux.HandleFunc("PUT /api/records/{id}", s.authed(s.handleSetSelection))

	mux.HandleFunc("GET /api/export", s.authed(s.handleExport))
	mux.HandleFunc("GET /api/logs", s.authed(s.handleLogs))

	s.handler = s.withRequestID(s.withAccessLog(s.withRateLimit(mux)))
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := api.Status{Running: true}
	if s.status != nil {
		status = s.status(r.Context())
	}
	s.writeJSON(w, r, http.StatusOK, status)
}
