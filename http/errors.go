package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/laropanostra/shopapp"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Only faults are logged here; rejected requests show up in the access log.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shopapp.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", shopapp.ClientMessage(err, "Invalid request parameters"))
	case errors.Is(err, shopapp.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, context.DeadlineExceeded):
		slog.ErrorContext(r.Context(), "request timed out", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusGatewayTimeout, "timeout", "Database did not answer in time")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		w.WriteHeader(499)
	default:
		slog.ErrorContext(r.Context(), "request error", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
