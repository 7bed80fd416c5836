package backend

import (
	"errors"
	"fmt"
	"net/http"

	app_errors "kishanmitra/client/internal/errors"
)

var (
	// ErrUnavailable wraps transport failures: refused connections, timeouts,
	// cancelled contexts.
	ErrUnavailable = fmt.Errorf("%w: backend unreachable", app_errors.ErrUnavailable)

	// ErrMalformedResponse is returned when a 2xx body cannot be decoded or
	// lacks a field the contract requires.
	ErrMalformedResponse = fmt.Errorf("%w: malformed backend response", app_errors.ErrUnavailable)
)

// StatusError is returned for every non-2xx answer. Detail carries the
// FastAPI `{"detail": ...}` message when the backend sent one.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

// Unwrap maps the status onto the shared error kinds so callers can use
// errors.Is without looking at codes.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return app_errors.ErrUnauthorized
	case http.StatusForbidden:
		return app_errors.ErrPermission
	case http.StatusNotFound:
		return app_errors.ErrNotFound
	case http.StatusConflict:
		return app_errors.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return app_errors.ErrValidation
	default:
		return app_errors.ErrUnavailable
	}
}

// DetailOf returns the backend's own message for err, or fallback.
func DetailOf(err error, fallback string) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Detail != "" {
		return statusErr.Detail
	}
	return fallback
}
