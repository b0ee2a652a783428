// Package llm provides the judging-oracle transport: a unified client over
// multiple LLM providers (OpenAI-compatible, Anthropic, Google Gemini) with
// pluggable middleware for rate limiting, response caching, and metrics.
//
// The evaluation engine only sees ports.LLMClient; which provider backs it,
// and which middleware wraps it, is assembled here.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "qwen3-14b",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(rate.Limit(5), 10),
//	        llm.CacheMiddleware(llm.NewMemoryCache(), 0),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/ragmark/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement. Middleware wraps
// any conforming implementation.
type CoreLLM interface {
	// DoRequest sends a prompt and returns the response text.
	// The opts map carries request parameters such as "temperature"
	// (float64), "max_tokens" (int), and "model" (string).
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Middleware wraps a CoreLLM with cross-cutting behavior. Middleware listed
// first in ClientConfig ends up outermost.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds provider and middleware settings for one oracle client.
type ClientConfig struct {
	// APIKey authenticates against the provider.
	APIKey string

	// Model selects the judge model. Empty uses the provider default.
	Model string

	// BaseURL overrides the provider endpoint, e.g. for OpenAI-compatible
	// self-hosted gateways.
	BaseURL string

	// Timeout caps individual request duration. Zero means no client-side
	// timeout.
	Timeout time.Duration

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// ProviderFactory builds a provider CoreLLM from configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a name. Called from
// provider init functions; also open to callers adding custom providers.
func RegisterProviderFactory(name string, factory ProviderFactory) {
	providerFactories[name] = factory
}

// Providers returns the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(providerFactories))
	for name := range providerFactories {
		names = append(names, name)
	}
	return names
}

var _ ports.LLMClient = (*Client)(nil)

// Client adapts a middleware-wrapped CoreLLM to ports.LLMClient.
type Client struct {
	core CoreLLM
}

// NewClient assembles the provider and middleware chain for the named
// provider.
func NewClient(provider string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (registered: %v)", provider, Providers())
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", provider, err)
	}

	// Reverse application keeps the first-listed middleware outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// WrapCore wraps an existing CoreLLM (typically a test double) in a Client
// without provider construction.
func WrapCore(core CoreLLM, middleware ...Middleware) *Client {
	for i := len(middleware) - 1; i >= 0; i-- {
		core = middleware[i](core)
	}
	return &Client{core: core}
}

// Complete implements ports.LLMClient.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// GetModel implements ports.LLMClient.
func (c *Client) GetModel() string { return c.core.GetModel() }
