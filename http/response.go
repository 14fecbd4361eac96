package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// FileResponse is the envelope of every file server answer.
type FileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeFileResponse(w http.ResponseWriter, code int, resp FileResponse) {
	if err := WriteJSON(w, code, resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
