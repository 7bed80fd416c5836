package errors

import "errors"

// This package defines the sentinel errors shared by every layer of the client.
// Services wrap them with context (`fmt.Errorf("%w: ...")`) and the API layer
// uses `errors.Is()` to map them onto HTTP responses for the browser view.

var (
	// ErrNotFound signifies that a requested resource could not be located,
	// either locally or on the backend.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data failed validation before it
	// was sent anywhere (empty query, unknown language code, bad email).
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation cannot run in the current state
	// of the session, e.g. submitting while a response is still pending.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission signifies that a browser capability (microphone,
	// geolocation) was denied by the user.
	// This is typically mapped to a 403 Forbidden HTTP status.
	ErrPermission = errors.New("permission denied")

	// ErrUnauthorized signifies that the backend rejected the supplied
	// credentials or the stored token is no longer usable.
	// This is typically mapped to a 401 Unauthorized HTTP status.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable signifies that a remote collaborator (backend, geocoder,
	// OAuth provider) could not be reached or returned an unusable answer.
	// This is typically mapped to a 502 Bad Gateway HTTP status.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrInternal signifies an unexpected error inside the client.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal error")
)
