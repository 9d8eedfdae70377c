// Package http exposes a script runner over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/aretw0/redscript/internal/logging"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Runner is the part of redscript.Runner the server needs.
type Runner interface {
	Run(ctx context.Context, path string, keys, args []domain.Param) (any, error)
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	Script string   `json:"script"`
	Keys   []string `json:"keys"`
	Args   []string `json:"args"`
}

// RunResponse carries the store's reply.
type RunResponse struct {
	Result any `json:"result"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Script  string `json:"script,omitempty"`
	Prelude string `json:"prelude,omitempty"`
}

// Server handles HTTP requests for a Runner.
type Server struct {
	runner  Runner
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for runner.
func NewHandler(runner Runner, opts ...Option) http.Handler {
	s := &Server{
		runner: runner,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/run", s.Run)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run handles POST /run.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("run: invalid request body", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	// Clients may only address scripts below the configured base.
	if body.Script == "" || !filepath.IsLocal(body.Script) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "script must be a relative path below the base directory"})
		return
	}

	res, err := s.runner.Run(r.Context(), body.Script, domain.Values(body.Keys...), domain.Values(body.Args...))
	if err != nil {
		status, resp := errorResponse(err)
		s.logger.Warn("run failed", "script", body.Script, "status", status, "err", err)
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{Result: res})
}

func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var serr *domain.ScriptError
	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		return http.StatusNotFound, resp
	case errors.As(err, &serr):
		resp.Script = serr.Script
		resp.Prelude = serr.Prelude
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, resp
	}
	return http.StatusBadGateway, resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
