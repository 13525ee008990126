package luckperms

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidBaseURL indicates the base URL is not an absolute URL
	ErrInvalidBaseURL = errors.New("base URL must be absolute")
	// ErrInvalidAPIKey indicates the API key cannot be sent as a header value
	ErrInvalidAPIKey = errors.New("API key is not a valid header value")
	// ErrInvalidSearch indicates a search request without a criterion
	ErrInvalidSearch = errors.New("search request needs exactly one of key, key prefix or meta key")
	// ErrEmptyPathSegment indicates an empty user id or group name
	ErrEmptyPathSegment = errors.New("empty path segment")
	// ErrUnhealthy indicates the server reported itself unhealthy
	ErrUnhealthy = errors.New("luckperms reported unhealthy")
)

// ErrorKind classifies a failure by the stage it happened in
type ErrorKind int

const (
	// KindHTTP covers transport failures and non-success statuses
	KindHTTP ErrorKind = iota + 1
	// KindJSON covers body encoding and decoding failures
	KindJSON
	// KindURL covers malformed base or request URLs
	KindURL
)

func (k ErrorKind) String() string {
	switch k {
	case KindHTTP:
		return "HTTP"
	case KindJSON:
		return "JSON"
	case KindURL:
		return "URL"
	default:
		return "unknown"
	}
}

// ClientCreationError is returned by NewClient
type ClientCreationError struct {
	Kind ErrorKind
	Err  error
}

func (e *ClientCreationError) Error() string {
	return fmt.Sprintf("luckperms client: %s error: %v", e.Kind, e.Err)
}

func (e *ClientCreationError) Unwrap() error {
	return e.Err
}

// RequestError is returned by every client operation
type RequestError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("luckperms %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// APIError carries a non-success response from the server
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
		Body:       string(body),
	}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d: %s: %s", e.StatusCode, e.Message, e.Body)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err wraps a 404 response
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

// IsUnauthorized reports whether err wraps a 401 or 403 response
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// KindOf returns the kind of a RequestError or ClientCreationError, or zero
func KindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	var createErr *ClientCreationError
	if errors.As(err, &createErr) {
		return createErr.Kind
	}
	return 0
}
