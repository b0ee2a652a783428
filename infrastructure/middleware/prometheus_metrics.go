// Package middleware provides operational observability adapters for the
// evaluation engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahrav/ragmark/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements ports.MetricsCollector on a Prometheus
// registry. It tracks oracle request volume, latency, and evaluation run
// counters for long-running benchmark services.
type PrometheusMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	valueHistograms *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a collector registered on the given registry.
// Passing nil registers on the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragmark_events_total",
				Help: "Count of engine events such as oracle requests and degraded judgments.",
			},
			[]string{"metric", "model", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ragmark_operation_duration_seconds",
				Help:    "Latency of engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "model", "status"},
		),
		valueHistograms: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ragmark_observed_values",
				Help:    "Distributions of observed values such as oracle request seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric", "model", "status"},
		),
	}

	reg.MustRegister(m.requestCounter, m.requestLatency, m.valueHistograms)
	return m
}

// RecordLatency implements ports.MetricsCollector.
func (p *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	p.requestLatency.With(prometheus.Labels{
		"operation": operation,
		"model":     labels["model"],
		"status":    labels["status"],
	}).Observe(duration.Seconds())
}

// RecordCounter implements ports.MetricsCollector.
func (p *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	p.requestCounter.With(prometheus.Labels{
		"metric": metric,
		"model":  labels["model"],
		"status": labels["status"],
	}).Add(value)
}

// RecordHistogram implements ports.MetricsCollector.
func (p *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	p.valueHistograms.With(prometheus.Labels{
		"metric": metric,
		"model":  labels["model"],
		"status": labels["status"],
	}).Observe(value)
}
