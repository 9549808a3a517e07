package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify errors returned by a Geocoder.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotExactlyOne    = errors.New("did not find exactly one place")
	ErrNoResult         = errors.New("no result")
	ErrRequestDenied    = errors.New("request denied")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrRateLimited      = errors.New("rate limited")
	ErrNotImplemented   = errors.New("not implemented")
	ErrUnknownStatus    = errors.New("unknown provider status")
)

// NotExactlyOneError reports how many places came back when one was required.
type NotExactlyOneError struct {
	Count int
}

func (e *NotExactlyOneError) Error() string {
	return fmt.Sprintf("didn't find exactly one place (found %d)", e.Count)
}

func (e *NotExactlyOneError) Unwrap() error {
	return ErrNotExactlyOne
}

// StatusError is a provider status string translated into an error kind.
type StatusError struct {
	Status  string
	Message string // provider's error_message, if any
	Err     error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider status %s: %v: %s", e.Status, e.Err, e.Message)
	}
	return fmt.Sprintf("provider status %s: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned when the provider answers with a non-2xx code.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("geocoding API error: status %d: %s", e.Code, e.Body)
}

// ErrorKind returns a stable, low-cardinality label for err. It is used for
// metric labels, the error_kind field of result messages and HTTP mapping.
func ErrorKind(err error) string {
	var httpErr *HTTPStatusError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrNotExactlyOne):
		return "not_exactly_one"
	case errors.Is(err, ErrNoResult):
		return "no_result"
	case errors.Is(err, ErrRequestDenied):
		return "request_denied"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNotImplemented):
		return "not_implemented"
	case errors.Is(err, ErrUnknownStatus):
		return "unknown_status"
	case errors.As(err, &httpErr):
		return "http_status"
	default:
		return "transport"
	}
}
