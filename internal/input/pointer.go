// Package input fuses pointer/touch events and gesture results into one
// canonical pointer signal.
package input

import (
	"errors"
	"fmt"
)

// Mode selects the live input modality for a session.
type Mode string

const (
	// ModePointer uses mouse or touch events.
	ModePointer Mode = "pointer"
	// ModeGesture uses classified hand-landmark frames.
	ModeGesture Mode = "gesture"
)

// ErrUnknownMode is returned when parsing an unsupported mode.
var ErrUnknownMode = errors.New("unknown input mode")

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePointer, ModeGesture:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// PointerState is the modality-agnostic signal consumed once per tick.
// Valid is false when the source reports no signal.
type PointerState struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Grabbing bool    `json:"grabbing"`
	Valid    bool    `json:"valid"`
}

// Absent is the state reported when no pointer is present.
var Absent = PointerState{}

// EventKind is the type of a pointer device event.
type EventKind string

const (
	EventPress   EventKind = "press"
	EventMove    EventKind = "move"
	EventRelease EventKind = "release"
	EventCancel  EventKind = "cancel"
)

// Contact is one active contact point in client space. A mouse is contact 0.
type Contact struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// PointerEvent is a device event. For release and cancel, Contacts lists the
// contacts that ended; it may be empty for a mouse.
type PointerEvent struct {
	Kind     EventKind `json:"kind"`
	Contacts []Contact `json:"contacts"`
}

// Mouse builds a single-contact event, handy for mouse input.
func Mouse(kind EventKind, x, y float64) PointerEvent {
	return PointerEvent{Kind: kind, Contacts: []Contact{{ID: 0, X: x, Y: y}}}
}
