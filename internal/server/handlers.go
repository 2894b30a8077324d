package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pgEdge/pgedge-retailstats/internal/analytics"
	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

type errorResponse struct {
	Error string `json:"error"`
}

type dashboardResponse struct {
	*analytics.DashboardSummary
	Warnings []string `json:"warnings,omitempty"`
}

type stockResponse struct {
	*analytics.StockView
	Warnings []string `json:"warnings,omitempty"`
}

type customerResponse struct {
	Status     string `json:"status"`
	CustomerID string `json:"customer_id"`
	Message    string `json:"message,omitempty"`
	*analytics.CustomerDetailView
}

type healthResponse struct {
	Status    string         `json:"status"`
	Source    string         `json:"source"`
	LoadedAt  *time.Time     `json:"loaded_at,omitempty"`
	Rows      map[string]int `json:"rows,omitempty"`
	Reloads   int64          `json:"reloads"`
	LastError string         `json:"last_error,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

// snapshot returns the current snapshot or writes a 503.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*dataset.Snapshot, bool) {
	snap, err := s.store.Current()
	if err != nil {
		s.fail(w, r, http.StatusServiceUnavailable, err)
		return nil, false
	}
	return snap, true
}

// warnings turns ignored filter values into messages.
func (s *Server) warnings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		var mi *analytics.MalformedInputError
		if errors.As(err, &mi) {
			s.metrics.ObserveIgnored(mi.Param)
		}
		out = append(out, err.Error())
	}
	return out
}

// handleDashboard handles GET /api/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	params, errs := analytics.ParseDashboardParams(r.URL.Query())
	render.JSON(w, r, dashboardResponse{
		DashboardSummary: analytics.Dashboard(snap, params, s.cfg.Options),
		Warnings:         s.warnings(errs),
	})
}

// handleStock handles GET /api/stock
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	params, errs := analytics.ParseStockParams(r.URL.Query())
	render.JSON(w, r, stockResponse{
		StockView: analytics.Stock(snap, params, s.cfg.Options),
		Warnings:  s.warnings(errs),
	})
}

// handleCustomer handles GET /api/customers/{id}. A customer without
// orders is not an error; the response carries status "no_history".
func (s *Server) handleCustomer(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	view, err := analytics.CustomerDetail(snap, id)
	if errors.Is(err, analytics.ErrNotFound) {
		render.JSON(w, r, customerResponse{
			Status:     "no_history",
			CustomerID: dataset.NormalizeKey(id),
			Message:    err.Error(),
		})
		return
	}
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	render.JSON(w, r, customerResponse{
		Status:             "ok",
		CustomerID:         dataset.NormalizeKey(id),
		CustomerDetailView: view,
	})
}

// handleRegions handles GET /api/regions
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, analytics.Regions())
}

// handleReload handles POST /api/reload
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Reload(r.Context()); err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	render.JSON(w, r, s.health())
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.health()
	if h.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, h)
}

func (s *Server) health() healthResponse {
	h := healthResponse{
		Status:  "loading",
		Source:  s.store.Name(),
		Reloads: s.store.Reloads(),
	}
	if err := s.store.LastError(); err != nil {
		h.LastError = err.Error()
	}

	snap, err := s.store.Current()
	if err != nil {
		return h
	}
	h.Status = "ok"
	loaded := snap.LoadedAt
	h.LoadedAt = &loaded
	h.Rows = make(map[string]int, 3)
	for _, kind := range schema.Kinds() {
		h.Rows[string(kind)] = snap.Stats()[kind]
	}
	return h
}
