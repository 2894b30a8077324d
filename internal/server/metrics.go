//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	reloads        *prometheus.CounterVec
	rows           *prometheus.GaugeVec
	ignoredFilters *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "retailstats",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "retailstats",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "retailstats",
			Name:      "dataset_reloads_total",
			Help:      "Dataset reloads by result.",
		}, []string{"result"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retailstats",
			Name:      "dataset_rows",
			Help:      "Rows in the current snapshot by dataset.",
		}, []string{"dataset"}),
		ignoredFilters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "retailstats",
			Name:      "ignored_filter_params_total",
			Help:      "Filter parameters ignored because their value did not parse.",
		}, []string{"param"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.reloads,
		m.rows,
		m.ignoredFilters,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveReload records the outcome of a reload.
func (m *Metrics) ObserveReload(snap *dataset.Snapshot, err error) {
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	for kind, n := range snap.Stats() {
		m.rows.WithLabelValues(string(kind)).Set(float64(n))
	}
}

// ObserveIgnored counts ignored filter parameters.
func (m *Metrics) ObserveIgnored(param string) {
	m.ignoredFilters.WithLabelValues(param).Inc()
}
