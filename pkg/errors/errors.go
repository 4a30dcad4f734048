// Package errors provides the structured error taxonomy for the SellerLegend API client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error categories. APIError values match these
// via errors.Is, so callers can branch without unwrapping the struct.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("resource not found")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrServer         = errors.New("server error")
	ErrAccessDenied   = errors.New("access denied")
	ErrTransport      = errors.New("transport failure")
)

// Kind identifies the error category an APIError belongs to.
type Kind int

const (
	KindGeneric Kind = iota
	KindAuthentication
	KindValidation
	KindNotFound
	KindRateLimit
	KindServer
	KindAccessDenied
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindAccessDenied:
		return "access_denied"
	default:
		return "generic"
	}
}

// APIError represents a failure surfaced by the SellerLegend API or by the
// transport underneath it. StatusCode is zero when no HTTP response was
// received. Body holds the decoded error payload when one was parseable.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Body       map[string]any
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel matching this error's kind.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrRateLimit:
		return e.Kind == KindRateLimit
	case ErrServer:
		return e.Kind == KindServer
	case ErrAccessDenied:
		return e.Kind == KindAccessDenied
	}
	return false
}

// New creates an APIError of the given kind.
func New(kind Kind, statusCode int, message string, body map[string]any) *APIError {
	return &APIError{Kind: kind, StatusCode: statusCode, Message: message, Body: body}
}

// NewAuth creates an authentication error with no HTTP response attached.
func NewAuth(message string) *APIError {
	return &APIError{Kind: KindAuthentication, Message: message}
}

// NewValidation creates a validation error raised before any network call.
func NewValidation(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message}
}

// NewTransport wraps a transport-level failure (timeout, DNS, connection
// reset) as a generic error. Raw transport errors never escape the client.
func NewTransport(message string, err error) *APIError {
	return &APIError{Kind: KindGeneric, Message: message, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
}

// FromStatus maps an HTTP status outside 2xx to the matching error kind.
func FromStatus(statusCode int, message string, body map[string]any) *APIError {
	var kind Kind
	switch {
	case statusCode == 401:
		kind = KindAuthentication
	case statusCode == 403:
		kind = KindAccessDenied
	case statusCode == 404:
		kind = KindNotFound
	case statusCode == 422:
		kind = KindValidation
	case statusCode == 429:
		kind = KindRateLimit
	case statusCode >= 500 && statusCode < 600:
		kind = KindServer
	default:
		kind = KindGeneric
	}
	return &APIError{Kind: kind, StatusCode: statusCode, Message: message, Body: body}
}

// IsRetryable returns true if the error is likely transient and worth
// retrying on an idempotent request.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return errors.Is(err, ErrTransport)
}
