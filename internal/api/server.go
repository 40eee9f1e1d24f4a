// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the public HTTP API.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/eosvc/internal/api/middleware"
	"github.com/ManuGH/eosvc/internal/config"
	"github.com/ManuGH/eosvc/internal/health"
	"github.com/ManuGH/eosvc/internal/spacetrack"
)

// HistoryFetcher is the gateway operation the API relays to.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, noradID, limit int) (spacetrack.History, error)
}

// Server wires the routes and middleware of the public API.
type Server struct {
	cfg     config.AppConfig
	gateway HistoryFetcher
	health  *health.Manager
	router  chi.Router
}

// NewServer builds the API server. A nil health manager gets an empty one.
func NewServer(cfg config.AppConfig, gateway HistoryFetcher, hm *health.Manager) *Server {
	if hm == nil {
		hm = health.NewManager(cfg.Version)
	}
	s := &Server{
		cfg:     cfg,
		gateway: gateway,
		health:  hm,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        s.cfg.CORS.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        tracingService(s.cfg),
		EnableLogging:         true,
		RateLimit: middleware.RateLimitConfig{
			Enabled:           s.cfg.RateLimit.Enabled,
			RequestsPerMinute: s.cfg.RateLimit.RequestsPerMinute,
			Whitelist:         s.cfg.RateLimit.Whitelist,
		},
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, ErrNotFound, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, ErrMethodNotAllowed, "")
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/openapi.yaml", s.handleOpenAPI)
		r.Get("/spacetrack/tle/{norad_id}", s.handleTLEHistory)
	})
	return r
}

func tracingService(cfg config.AppConfig) string {
	if !cfg.Tracing.Enabled {
		return ""
	}
	if cfg.LogService != "" {
		return cfg.LogService
	}
	return "eosvc"
}
