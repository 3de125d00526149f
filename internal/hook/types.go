// Package hook discovers and runs external programs when a session event
// happens. A hook lives in its own directory with a hook.json manifest; it
// receives a Request as JSON on stdin and answers with a Response on stdout.
package hook

import (
	"encoding/json"
	"time"
)

// Events a hook can subscribe to.
const (
	EventCompletion   = "completion"
	EventSessionStart = "session_start"
)

// ManifestFile is the file name looked up in each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook and the events it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the manifest subscribes to event.
func (m Manifest) Handles(event string) bool {
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Request is written to the hook's stdin.
type Request struct {
	Event    string          `json:"event"`
	Session  string          `json:"session"`
	Body     string          `json:"body,omitempty"`
	Zone     string          `json:"zone,omitempty"`
	Policy   string          `json:"policy,omitempty"`
	Progress float64         `json:"progress,omitempty"`
	At       time.Time       `json:"at"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}
