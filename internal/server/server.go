//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package server exposes the analytics views over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/pgEdge/pgedge-retailstats/internal/analytics"
	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
)

// Config holds server settings.
type Config struct {
	// Listen is the address to listen on.
	Listen string

	// ReloadInterval reloads the datasets periodically when positive.
	ReloadInterval time.Duration

	// Options tunes the rankings.
	Options analytics.Options
}

// Server serves the dashboard, stock and customer views from a store.
type Server struct {
	cfg     Config
	store   *dataset.Store
	metrics *Metrics
	log     zerolog.Logger
	router  chi.Router
}

// New creates a server over the given store.
func New(cfg Config, store *dataset.Store) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		metrics: NewMetrics(),
		log:     logging.Component("server"),
	}
	if snap, err := store.Current(); err == nil {
		s.metrics.ObserveReload(snap, nil)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/stock", s.handleStock)
		r.Get("/customers/{id}", s.handleCustomer)
		r.Get("/regions", s.handleRegions)
		r.Post("/reload", s.handleReload)
	})

	return r
}

// Reload reloads the store and records the outcome.
func (s *Server) Reload(ctx context.Context) (*dataset.Snapshot, error) {
	snap, err := s.store.Reload(ctx)
	s.metrics.ObserveReload(snap, err)
	return snap, err
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.ReloadInterval > 0 {
		go s.reloadLoop(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", s.cfg.Listen).Msg("Serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info().Msg("Server stopped")
	return nil
}

func (s *Server) reloadLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// failures are logged by the store; the previous snapshot stays
			_, _ = s.Reload(ctx)
		}
	}
}
