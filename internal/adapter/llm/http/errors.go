// Package http provides shared plumbing for the outbound HTTP clients:
// typed errors, retry with exponential backoff, JSON extraction from
// free-form model output, and structured request/response logging.
package http

import "fmt"

// ErrorType categorizes a client error.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeServiceUnavailable
	ErrTypeInvalidRequest
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeNotFound:
		return "not found"
	default:
		return "unknown error"
	}
}

// Error is a typed client error carrying retryability and provenance.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Retryable  bool
	Provider   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Provider, e.Type, e.Message, e.StatusCode)
}

// Is matches on error type, enabling errors.Is comparisons against
// sentinel *Error values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable reports whether the operation may be retried.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// MapStatusError converts an HTTP status code into a typed error. Rate
// limits and 5xx responses are retryable; auth and validation failures are
// not. 529 is the Anthropic-specific overloaded status.
func MapStatusError(provider string, statusCode int, message string) *Error {
	e := &Error{
		Message:    message,
		StatusCode: statusCode,
		Provider:   provider,
	}

	switch statusCode {
	case 401, 403:
		e.Type = ErrTypeAuthentication
	case 404:
		e.Type = ErrTypeNotFound
	case 429:
		e.Type = ErrTypeRateLimit
		e.Retryable = true
	case 400, 422:
		e.Type = ErrTypeInvalidRequest
	case 500, 502, 503, 529:
		e.Type = ErrTypeServiceUnavailable
		e.Retryable = true
	default:
		e.Type = ErrTypeUnknown
	}

	return e
}
