package api

import (
	"errors"
	"fmt"
)

// ErrEmptyBody is wrapped by a DecodeError when a 2xx response carries no
// body but the endpoint returns required fields.
var ErrEmptyBody = errors.New("empty response body")

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// DecodeError means the backend answered 2xx with a body that does not
// match the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsBackendError reports whether err came from the backend answering,
// as opposed to the request never completing.
func IsBackendError(err error) bool {
	var apiErr *Error
	var decErr *DecodeError
	return errors.As(err, &apiErr) || errors.As(err, &decErr)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
