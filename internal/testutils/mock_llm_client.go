// Package testutils provides deterministic test doubles for the evaluation
// engine, chiefly a stub judging oracle with scriptable responses, failure
// injection, and artificial latency for concurrency tests.
package testutils

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ahrav/ragmark/internal/ports"
)

// ErrTransport is the failure returned by a MockLLMClient configured to fail.
var ErrTransport = errors.New("mock transport failure")

var _ ports.LLMClient = (*MockLLMClient)(nil)

// MockLLMClient implements ports.LLMClient with deterministic, scriptable
// behavior. Responses are selected by substring pattern against the prompt;
// unmatched prompts receive DefaultResponse. The client records every prompt
// it sees and is safe for concurrent use.
type MockLLMClient struct {
	mu sync.Mutex

	model           string
	responses       []MockResponse
	callCount       int
	prompts         []string
	failuresLeft    int
	alwaysFail      bool
	maxRandomDelay  time.Duration
	rng             *rand.Rand

	// DefaultResponse is returned when no pattern matches the prompt.
	DefaultResponse string
}

// MockResponse routes prompts containing Pattern to Response.
type MockResponse struct {
	Pattern  string
	Response string
}

// NewMockLLMClient creates a stub oracle that answers every prompt with an
// affirmative tagged verdict unless scripted otherwise.
func NewMockLLMClient(model string) *MockLLMClient {
	return &MockLLMClient{
		model:           model,
		DefaultResponse: "<result>yes</result>",
		rng:             rand.New(rand.NewSource(1)),
	}
}

// AddResponse scripts a response for prompts containing the pattern.
// Patterns are checked in registration order; first match wins.
func (m *MockLLMClient) AddResponse(r MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, r)
}

// FailNext makes the next n calls return ErrTransport before behaving
// normally again.
func (m *MockLLMClient) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresLeft = n
}

// AlwaysFail makes every call return ErrTransport.
func (m *MockLLMClient) AlwaysFail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alwaysFail = true
}

// WithRandomDelay sleeps a random duration up to max before each response,
// scrambling worker completion order in ordering tests.
func (m *MockLLMClient) WithRandomDelay(max time.Duration) *MockLLMClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxRandomDelay = max
	return m
}

// Complete implements ports.LLMClient.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, _ map[string]any) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	fail := m.alwaysFail
	if !fail && m.failuresLeft > 0 {
		m.failuresLeft--
		fail = true
	}

	var delay time.Duration
	if m.maxRandomDelay > 0 {
		delay = time.Duration(m.rng.Int63n(int64(m.maxRandomDelay)))
	}

	response := m.DefaultResponse
	for _, r := range m.responses {
		if strings.Contains(prompt, r.Pattern) {
			response = r.Response
			break
		}
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	if fail {
		return "", ErrTransport
	}
	return response, nil
}

// GetModel implements ports.LLMClient.
func (m *MockLLMClient) GetModel() string { return m.model }

// CallCount returns how many times Complete was invoked.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns a copy of every prompt received so far.
func (m *MockLLMClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
