// Package api provides the HTTP handlers for session control and the
// session journal.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/guineaday/internal/engine"
	"github.com/ayusman/guineaday/internal/gesture"
	"github.com/ayusman/guineaday/internal/input"
)

// Controller is what the handlers need from the running application.
type Controller interface {
	Engine() *engine.Engine
	// SetMode switches and persists the input modality.
	SetMode(m input.Mode) error
	// Remote returns the source browser landmark frames go to, or nil.
	Remote() *gesture.RemoteSource
	// Preview returns the latest camera JPEG, or nil.
	Preview() []byte
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
