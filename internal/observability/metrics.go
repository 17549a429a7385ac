// Package observability exposes the application's Prometheus metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application metric instruments.
type Metrics struct {
	registry *prometheus.Registry

	DetectionsTotal   *prometheus.CounterVec
	PersistFailures   prometheus.Counter
	InferenceDuration prometheus.Histogram
}

// Detection outcome label values.
const (
	OutcomeDetected     = "detected"
	OutcomeUnrecognized = "unrecognized"
	OutcomeFailed       = "failed"
)

// NewMetrics creates and registers the metric instruments on a private
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		DetectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fungid_detections_total",
			Help: "Number of processed detection requests by outcome.",
		}, []string{"outcome"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fungid_record_persist_failures_total",
			Help: "Number of detection records that could not be persisted (best-effort durability).",
		}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fungid_inference_duration_seconds",
			Help:    "Model inference duration.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	registry.MustRegister(m.DetectionsTotal, m.PersistFailures, m.InferenceDuration)
	return m
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
