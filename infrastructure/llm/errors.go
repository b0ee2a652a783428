package llm

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the oracle transport.
var (
	// ErrEmptyAPIKey indicates a required API key was not provided.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrEmptyResponse indicates the provider returned no usable text.
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrNoResponseChoice indicates the provider response contained no choices.
	ErrNoResponseChoice = errors.New("no response choices returned")
)

// ErrorType categorizes provider failures for retryability decisions.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeAuthentication
	ErrorTypeRateLimit
	ErrorTypeBadRequest
	ErrorTypeNotFound
	ErrorTypeServerError
	ErrorTypeNetwork
	ErrorTypeTimeout
)

// ProviderError normalizes provider-specific failures into one shape carrying
// the provider name, a classified type, and the HTTP status when known.
type ProviderError struct {
	Provider   string
	Type       ErrorType
	StatusCode int
	Message    string
	Wrapped    error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Wrapped != nil {
		msg += fmt.Sprintf(": %v", e.Wrapped)
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Wrapped }

// IsRetryable reports whether the failure is plausibly transient.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeNetwork, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

// classifyHTTPStatus maps an HTTP status code to an ErrorType.
func classifyHTTPStatus(status int) ErrorType {
	switch {
	case status == 401 || status == 403:
		return ErrorTypeAuthentication
	case status == 429:
		return ErrorTypeRateLimit
	case status == 404:
		return ErrorTypeNotFound
	case status >= 500:
		return ErrorTypeServerError
	case status >= 400:
		return ErrorTypeBadRequest
	default:
		return ErrorTypeUnknown
	}
}

// wrapProviderError builds a ProviderError from a raw SDK failure, folding in
// context cancellation classification.
func wrapProviderError(provider string, status int, err error) *ProviderError {
	errType := classifyHTTPStatus(status)
	if errType == ErrorTypeUnknown {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			errType = ErrorTypeTimeout
		case errors.Is(err, context.Canceled):
			errType = ErrorTypeNetwork
		}
	}
	return &ProviderError{Provider: provider, Type: errType, StatusCode: status, Wrapped: err}
}
