// Package ports defines the interfaces between the evaluation engine and its
// external collaborators. The judging oracle, response cache, and metrics
// sink are injected dependencies so tests can substitute deterministic stubs.
package ports

import (
	"context"
	"time"
)

// LLMClient is the judging oracle capability. Implementations handle
// provider-specific authentication, request formatting, and response parsing.
type LLMClient interface {
	// Complete sends a prompt to the oracle and returns its raw text
	// response. The options map carries provider-tunable parameters such as
	// "temperature" (float64), "max_tokens" (int), or "model" (string).
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// GetModel returns the model identifier the client is configured with.
	GetModel() string
}

// CacheStore caches oracle responses. Caching is an optional decorator around
// the LLMClient; the engine must behave identically with or without it.
type CacheStore interface {
	// Get retrieves a cached value by key. The second return is false when
	// the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value under key. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// MetricsCollector receives operational metrics from the engine and the
// oracle transport. Implementations typically back onto Prometheus.
type MetricsCollector interface {
	// RecordLatency records the duration of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram distribution.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
