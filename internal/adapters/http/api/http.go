// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/jokerank/internal/app"
	"github.com/okian/jokerank/internal/domain/model"
	"github.com/okian/jokerank/pkg/logger"
)

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	Jokes(ctx context.Context) []model.Joke
	Status(ctx context.Context) Status
	Refresh(ctx context.Context) error
	Vote(ctx context.Context, id string, delta model.Delta) ([]model.Joke, error)
}

// Status mirrors the board status returned by the service.
type Status = service.Status

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	jokesHandler  *JokesHandler
	logger        logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.jokesHandler = NewJokesHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/jokes", MetricsMiddleware(s.jokesHandler.HandleList, "jokes"))
	mux.HandleFunc("/jokes/refresh", MetricsMiddleware(s.jokesHandler.HandleRefresh, "refresh"))
	mux.HandleFunc("/jokes/", MetricsMiddleware(s.jokesHandler.HandleVote, "vote"))
}

// Handler returns a mux with all routes registered, wrapped with request ids.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	s.Register(ctx, mux)
	return RequestIDMiddleware(mux, s.logger)
}

// boardResponse is returned by every /jokes endpoint.
type boardResponse struct {
	Status Status       `json:"status"`
	Jokes  []model.Joke `json:"jokes"`
}

// voteRequest mirrors the OpenAPI schema for POST /jokes/{id}/vote.
type voteRequest struct {
	Delta *int `json:"delta"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
