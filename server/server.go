// Package server exposes the engine's operational surface over HTTP:
// liveness, Prometheus metrics, the query catalog, and counter
// snapshots.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mireska/sift/internal/logger"
	"github.com/mireska/sift/internal/metrics"
)

type Server struct {
	logger zerolog.Logger
	http   *http.Server
}

func New(addr string, m *metrics.Metrics, queries []string) *Server {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.CleanPath)
	router.Use(middleware.RequestID)
	router.Use(middleware.Heartbeat("/health"))

	router.Handle("/metrics", m.Handler())
	router.Get("/stats", statsHandler(m))
	router.Get("/queries", queriesHandler(queries))

	return &Server{
		logger: logger.GetLogger("server"),
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Msgf("serving on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
