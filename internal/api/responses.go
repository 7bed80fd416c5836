package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"kishanmitra/client/internal/backend"
	app_errors "kishanmitra/client/internal/errors"
)

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is returned by operations that have nothing else to report.
type StatusResponse struct {
	Status string `json:"status"`
}

var statusOK = StatusResponse{Status: "ok"}

// respondWithError maps service errors to HTTP status codes and writes a
// standard JSON error body. Rejections reported by the backend keep their
// detail text so the view can show it inline.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = backend.DetailOf(err, "The requested resource was not found.")
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		message = backend.DetailOf(err, err.Error())
	case errors.Is(err, app_errors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = backend.DetailOf(err, "Invalid credentials.")
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		message = backend.DetailOf(err, err.Error())
	case errors.Is(err, app_errors.ErrPermission):
		statusCode = http.StatusForbidden
		message = backend.DetailOf(err, "Permission denied.")
	case errors.Is(err, app_errors.ErrUnavailable):
		statusCode = http.StatusBadGateway
		message = backend.DetailOf(err, "The assistant service is unavailable. Please try again.")
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON marshals payload and writes it with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// decodeJSON reads a request body into dst and validates it.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation)
	}
	return validateRequest(dst)
}
