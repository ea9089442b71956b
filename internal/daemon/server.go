// Package daemon contains the daemon-specific logic for the HTTP API.
package daemon

import (
	"context"
	"net/http"
	"time"

	"stockplane/internal/config"
	"stockplane/internal/daemon/handlers"
	"stockplane/internal/daemon/middleware"
	"stockplane/internal/engine"
)

// Server is the HTTP server for the daemon API.
type Server struct {
	httpServer *http.Server
}

// New creates a daemon server. metricsHandler serves the Prometheus
// scrape endpoint; ready is the store readiness probe.
func New(addr string, e *engine.Engine, cfg *config.Config, metricsHandler http.Handler, ready func(context.Context) error) *Server {
	h := handlers.New(e, ready)
	authMW := middleware.Auth(cfg.APIToken)
	limitMW := middleware.RateLimit(cfg.APIRateLimit)
	protect := func(hf http.HandlerFunc) http.Handler {
		return limitMW(authMW(hf))
	}

	mux := http.NewServeMux()

	// Probes and the scrape endpoint stay open; everything that reaches
	// the remote sites or the store is token-gated and rate limited.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	mux.Handle("POST /imports/{site}/{kind}/run", protect(h.RunImport))
	mux.Handle("POST /fetch", protect(h.Fetch))
	mux.Handle("GET /metrics/report", protect(h.MetricsReport))
	mux.Handle("DELETE /metrics", protect(h.PruneMetrics))

	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Import runs block until terminal; no write timeout.
		},
	}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
