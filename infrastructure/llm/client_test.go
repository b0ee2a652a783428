package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// stubCore is a minimal CoreLLM for middleware tests.
type stubCore struct {
	model    string
	response string
	err      error
	calls    atomic.Int64
	lastOpts map[string]any
}

func (s *stubCore) DoRequest(_ context.Context, _ string, opts map[string]any) (string, error) {
	s.calls.Add(1)
	s.lastOpts = opts
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubCore) GetModel() string { return s.model }

// taggingMiddleware appends its tag to the response so application order is
// observable from the outside.
func taggingMiddleware(tag string) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &taggedLLM{next: next, tag: tag}
	}
}

type taggedLLM struct {
	next CoreLLM
	tag  string
}

func (t *taggedLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	response, err := t.next.DoRequest(ctx, prompt, opts)
	return response + ":" + t.tag, err
}

func (t *taggedLLM) GetModel() string { return t.next.GetModel() }

func TestNewClient_Errors(t *testing.T) {
	t.Run("empty api key", func(t *testing.T) {
		_, err := NewClient("openai", ClientConfig{})
		assert.ErrorIs(t, err, ErrEmptyAPIKey)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewClient("carrier-pigeon", ClientConfig{APIKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})
}

func TestProviders_RegisteredByInit(t *testing.T) {
	names := Providers()
	assert.Contains(t, names, "openai")
	assert.Contains(t, names, "anthropic")
	assert.Contains(t, names, "google")
}

func TestWrapCore_MiddlewareOrder(t *testing.T) {
	core := &stubCore{model: "m", response: "base"}
	client := WrapCore(core, taggingMiddleware("outer"), taggingMiddleware("inner"))

	response, err := client.Complete(context.Background(), "p", nil)
	require.NoError(t, err)

	// First-listed middleware wraps last, so its tag lands last.
	assert.Equal(t, "base:inner:outer", response)
	assert.Equal(t, "m", client.GetModel())
}

func TestCacheMiddleware(t *testing.T) {
	t.Run("memoizes by model and prompt", func(t *testing.T) {
		core := &stubCore{model: "m", response: "answer"}
		client := WrapCore(core, CacheMiddleware(NewMemoryCache(), 0))

		for range 3 {
			response, err := client.Complete(context.Background(), "same prompt", nil)
			require.NoError(t, err)
			assert.Equal(t, "answer", response)
		}
		assert.EqualValues(t, 1, core.calls.Load())

		_, err := client.Complete(context.Background(), "different prompt", nil)
		require.NoError(t, err)
		assert.EqualValues(t, 2, core.calls.Load())
	})

	t.Run("failures are not cached", func(t *testing.T) {
		core := &stubCore{model: "m", err: errors.New("boom")}
		client := WrapCore(core, CacheMiddleware(NewMemoryCache(), 0))

		_, err := client.Complete(context.Background(), "p", nil)
		require.Error(t, err)
		_, err = client.Complete(context.Background(), "p", nil)
		require.Error(t, err)
		assert.EqualValues(t, 2, core.calls.Load())
	})
}

func TestMemoryCache_TTL(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", 10*time.Millisecond))
	_, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(20 * time.Millisecond)
	_, found, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, cache.Len())
}

func TestRateLimitMiddleware_SpacesRequests(t *testing.T) {
	core := &stubCore{model: "m", response: "r"}
	// 1 token burst at 50 rps: the second call must wait ~20ms.
	client := WrapCore(core, RateLimitMiddleware(rate.Limit(50), 1))

	ctx := context.Background()
	start := time.Now()
	for range 2 {
		_, err := client.Complete(ctx, "p", nil)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestRateLimitMiddleware_CancelledContext(t *testing.T) {
	core := &stubCore{model: "m", response: "r"}
	client := WrapCore(core, RateLimitMiddleware(rate.Limit(0.001), 1))

	ctx := context.Background()
	_, err := client.Complete(ctx, "p", nil)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = client.Complete(cancelled, "p", nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, core.calls.Load())
}

func TestParseRequestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		want requestOptions
	}{
		{
			name: "empty uses default model",
			opts: nil,
			want: requestOptions{Model: "default-model"},
		},
		{
			name: "explicit model wins",
			opts: map[string]any{"model": "override"},
			want: requestOptions{Model: "override"},
		},
		{
			name: "int max tokens",
			opts: map[string]any{"max_tokens": 256},
			want: requestOptions{Model: "default-model", MaxTokens: 256},
		},
		{
			name: "float max tokens tolerated",
			opts: map[string]any{"max_tokens": float64(128)},
			want: requestOptions{Model: "default-model", MaxTokens: 128},
		},
		{
			name: "out of range temperature ignored",
			opts: map[string]any{"temperature": 3.5},
			want: requestOptions{Model: "default-model"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRequestOptions(tt.opts, "default-model")
			assert.Equal(t, tt.want.Model, got.Model)
			assert.Equal(t, tt.want.MaxTokens, got.MaxTokens)
			if tt.want.Temperature == nil {
				assert.Nil(t, got.Temperature)
			}
		})
	}

	t.Run("temperature passes through", func(t *testing.T) {
		got := parseRequestOptions(map[string]any{"temperature": 0.001}, "m")
		require.NotNil(t, got.Temperature)
		assert.InDelta(t, 0.001, *got.Temperature, 1e-9)
	})
}

func TestProviderError(t *testing.T) {
	t.Run("classification", func(t *testing.T) {
		tests := []struct {
			status    int
			want      ErrorType
			retryable bool
		}{
			{401, ErrorTypeAuthentication, false},
			{403, ErrorTypeAuthentication, false},
			{404, ErrorTypeNotFound, false},
			{429, ErrorTypeRateLimit, true},
			{400, ErrorTypeBadRequest, false},
			{500, ErrorTypeServerError, true},
			{503, ErrorTypeServerError, true},
		}
		for _, tt := range tests {
			t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
				err := wrapProviderError("openai", tt.status, errors.New("upstream"))
				assert.Equal(t, tt.want, err.Type)
				assert.Equal(t, tt.retryable, err.IsRetryable())
			})
		}
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		err := wrapProviderError("openai", 0, context.DeadlineExceeded)
		assert.Equal(t, ErrorTypeTimeout, err.Type)
		assert.True(t, err.IsRetryable())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("message formatting", func(t *testing.T) {
		err := &ProviderError{Provider: "anthropic", StatusCode: 429, Message: "slow down"}
		assert.Contains(t, err.Error(), "anthropic error (HTTP 429)")
		assert.Contains(t, err.Error(), "slow down")
	})
}
