// Package metrics exposes Prometheus collectors for inspection throughput and HTTP latency.
package metrics

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Write operations recorded against result tables.
const (
	OpInsert = "insert"
	OpUpdate = "update"
)

// Email outcomes.
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Metrics holds the application collectors and the registry they are bound to.
type Metrics struct {
	InspectionsCompleted *prometheus.CounterVec   // by disposition
	ResultsWritten       *prometheus.CounterVec   // by check and op
	SummaryEmails        *prometheus.CounterVec   // by status
	RequestDuration      *prometheus.HistogramVec // by method, pattern, and status

	registry *prometheus.Registry
}

// New creates a Metrics instance on a private registry with Go runtime and
// process collectors included.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		InspectionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_inspections_completed_total",
				Help: "Total number of inspections completed by disposition",
			},
			[]string{"disposition"},
		),
		ResultsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_results_written_total",
				Help: "Total number of check results written by check and operation",
			},
			[]string{"check", "op"},
		),
		SummaryEmails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_summary_emails_total",
				Help: "Total number of summary email attempts by outcome",
			},
			[]string{"status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inspector_http_request_duration_seconds",
				Help:    "HTTP request latency by method, route pattern, and status code",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "pattern", "status"},
		),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.InspectionsCompleted,
		m.ResultsWritten,
		m.SummaryEmails,
		m.RequestDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return m, nil
}

// WatchDB exports db's connection pool statistics labelled db_name=name.
func (m *Metrics) WatchDB(db *sql.DB, name string) error {
	if err := m.registry.Register(collectors.NewDBStatsCollector(db, name)); err != nil {
		return fmt.Errorf("register pool stats for %s: %w", name, err)
	}
	return nil
}

// Registry returns the registry backing these collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape endpoint for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Completed records a completed inspection. Safe on a nil receiver.
func (m *Metrics) Completed(disposition string) {
	if m == nil {
		return
	}
	m.InspectionsCompleted.WithLabelValues(disposition).Inc()
}

// Written records a result upsert. Safe on a nil receiver.
func (m *Metrics) Written(check string, inserted bool) {
	if m == nil {
		return
	}
	op := OpUpdate
	if inserted {
		op = OpInsert
	}
	m.ResultsWritten.WithLabelValues(check, op).Inc()
}

// Emailed records a summary email attempt. Safe on a nil receiver.
func (m *Metrics) Emailed(status string) {
	if m == nil {
		return
	}
	m.SummaryEmails.WithLabelValues(status).Inc()
}

// Middleware observes request latency. It labels by the ServeMux pattern that
// matched, so it must wrap a mux rather than sit in front of a prefix router.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			m.RequestDuration.
				WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
