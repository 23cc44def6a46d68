// Package metrics provides Prometheus metrics for the restcurve service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	// Ingest metrics.
	recordsIngested prometheus.Counter
	recordsSkipped  *prometheus.CounterVec

	// Pipeline metrics: one full recomputation per query.
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec

	// Store metrics.
	storedRecords  prometheus.Gauge
	storedEntities prometheus.Gauge

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics.
	systemMemoryBytes prometheus.Gauge
	systemGoroutines  prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// NewManager creates a manager with its own registry, keeping the default
// Go collectors out of the scrape output.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "restcurve",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.recordsIngested = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "records_ingested_total",
		Help:      "Game records accepted into the store.",
	})
	m.recordsSkipped = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "records_skipped_total",
		Help:      "Records dropped during ingest or rest computation, by reason.",
	}, []string{"reason"})
	m.pipelineRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "pipeline_runs_total",
		Help:      "Full pipeline recomputations, by operation.",
	}, []string{"operation"})
	m.pipelineDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Wall time of full pipeline recomputations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	m.storedRecords = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "stored_records",
		Help:      "Game records currently in the store.",
	})
	m.storedEntities = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "stored_entities",
		Help:      "Distinct entities currently in the store.",
	})
	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by endpoint and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	m.systemMemoryBytes = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation.",
	})
	m.systemGoroutines = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_goroutines",
		Help:      "Current goroutine count.",
	})

	return m
}

// Handler returns the scrape handler for the manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Global manager used by the package-level helpers.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Handler returns the global scrape handler.
func Handler() http.Handler { return globalManager.Handler() }

// Package-level recording helpers.

// RecordIngested counts n accepted records.
func RecordIngested(n int) { globalManager.recordsIngested.Add(float64(n)) }

// RecordSkipped counts n dropped records for a reason such as
// "unparsable_date", "missing_field" or "duplicate".
func RecordSkipped(reason string, n int) {
	if n > 0 {
		globalManager.recordsSkipped.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordPipelineRun counts one pipeline recomputation and its duration.
func RecordPipelineRun(operation string, seconds float64) {
	globalManager.pipelineRuns.WithLabelValues(operation).Inc()
	globalManager.pipelineDuration.WithLabelValues(operation).Observe(seconds)
}

// UpdateStoredRecords sets the store size gauge.
func UpdateStoredRecords(n int) { globalManager.storedRecords.Set(float64(n)) }

// UpdateStoredEntities sets the distinct-entity gauge.
func UpdateStoredEntities(n int) { globalManager.storedEntities.Set(float64(n)) }

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPDuration observes one request's latency.
func RecordHTTPDuration(endpoint string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryBytes.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutines.Set(float64(n)) }
