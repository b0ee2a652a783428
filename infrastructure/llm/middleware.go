package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/ahrav/ragmark/internal/ports"
)

// rateLimitedLLM paces oracle requests with a token bucket so batch judging
// stays under provider rate limits.
type rateLimitedLLM struct {
	next    CoreLLM
	limiter *rate.Limiter
}

// RateLimitMiddleware enforces limit requests per second with the given
// burst allowance. Waiting blocks the calling worker, not the whole pool.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next CoreLLM) CoreLLM {
		return &rateLimitedLLM{next: next, limiter: limiter}
	}
}

func (r *rateLimitedLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.next.DoRequest(ctx, prompt, opts)
}

func (r *rateLimitedLLM) GetModel() string { return r.next.GetModel() }

// metricsLLM reports request counts and latencies to a MetricsCollector.
type metricsLLM struct {
	next      CoreLLM
	collector ports.MetricsCollector
}

// MetricsMiddleware records per-request latency and outcome metrics.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &metricsLLM{next: next, collector: collector}
	}
}

func (m *metricsLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	start := time.Now()
	response, err := m.next.DoRequest(ctx, prompt, opts)

	if m.collector != nil {
		labels := map[string]string{
			"model":  m.next.GetModel(),
			"status": "success",
		}
		if err != nil {
			labels["status"] = "error"
		}
		m.collector.RecordHistogram("oracle_request_seconds", time.Since(start).Seconds(), labels)
		m.collector.RecordCounter("oracle_requests_total", 1, labels)
	}

	return response, err
}

func (m *metricsLLM) GetModel() string { return m.next.GetModel() }
