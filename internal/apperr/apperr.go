// Package apperr defines the error kinds shared by the page and annotation
// services. Callers match them with errors.Is; services wrap them with context.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation is the parent of every error caused by bad input. A request
// failing with it has not mutated any file or record.
var ErrValidation = errors.New("validation error")

var (
	ErrMissingPayload    = fmt.Errorf("%w: missing payload", ErrValidation)
	ErrInvalidTimestamp  = fmt.Errorf("%w: invalid timestamp", ErrValidation)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported document format", ErrValidation)
)

var (
	ErrRasterizeFailure = errors.New("rasterization failed")
	ErrIOFailure        = errors.New("i/o failure")
	ErrUnexpected       = errors.New("unexpected failure")

	// ErrCorruptState marks a record log that failed to parse. The store
	// recovers from it locally and only logs it.
	ErrCorruptState = errors.New("corrupt record log")
)

// Wrap attaches kind to cause so that errors.Is matches both.
func Wrap(kind error, op string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", kind, op)
	}
	return fmt.Errorf("%w: %s: %w", kind, op, cause)
}

// HTTPStatus maps an error to the response status of the HTTP boundary.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
