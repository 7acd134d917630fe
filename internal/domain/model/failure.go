package model

import (
	"errors"
	"fmt"
)

// ErrInvalidAccount is returned when an operation is given an empty account handle.
var ErrInvalidAccount = errors.New("account handle must not be empty")

// FetchError is the typed outcome of a failed catalog load. Every failure the
// pipeline produces is a *FetchError so callers can render one degraded state
// while logging the specific cause.
type FetchError struct {
	Kind       FailureKind
	StatusCode int // Set for FailureHTTP only.
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch {
	case e.Kind == FailureHTTP && e.Err != nil:
		return fmt.Sprintf("fetch failed (%s %d): %v", e.Kind, e.StatusCode, e.Err)
	case e.Kind == FailureHTTP:
		return fmt.Sprintf("fetch failed (%s %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch failed (%s)", e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewHTTPError builds a FailureHTTP error for the given response status.
func NewHTTPError(status int, err error) *FetchError {
	return &FetchError{Kind: FailureHTTP, StatusCode: status, Err: err}
}

// FailureKindOf returns the kind of the first *FetchError in err's chain,
// and false if err carries none.
func FailureKindOf(err error) (FailureKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}
