package engine

import (
	"time"

	"github.com/ayusman/guineaday/internal/completion"
	"github.com/ayusman/guineaday/internal/input"
)

// BodyView is the render state of one body.
type BodyView struct {
	ID    int     `json:"id"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Size  float64 `json:"size"`
	State string  `json:"state"`
}

// Snapshot is the per-tick state published to the presentation layer.
type Snapshot struct {
	Session    string                 `json:"session"`
	Tick       uint64                 `json:"tick"`
	Mode       input.Mode             `json:"mode"`
	Policy     string                 `json:"policy"`
	Active     bool                   `json:"active"`
	Frozen     bool                   `json:"frozen"`
	Width      float64                `json:"width"`
	Height     float64                `json:"height"`
	Bodies     []BodyView             `json:"bodies"`
	Zones      []completion.Zone      `json:"zones"`
	Progress   float64                `json:"progress"`
	Grabbed    *int                   `json:"grabbed,omitempty"`
	Pointer    input.PointerState     `json:"pointer"`
	Completion *completion.Completion `json:"completion,omitempty"`
}

// Body returns the view with the given label.
func (s Snapshot) Body(label string) (BodyView, bool) {
	for _, b := range s.Bodies {
		if b.Label == label {
			return b, true
		}
	}
	return BodyView{}, false
}

// Outcome is the final state of a session.
type Outcome string

const (
	OutcomeActive    Outcome = "active"
	OutcomeCompleted Outcome = "completed"
	OutcomeAbandoned Outcome = "abandoned"
)

// Record summarizes a session for the journal.
type Record struct {
	ID         string
	Mode       input.Mode
	Policy     string
	Bodies     []string
	Zones      []string
	Outcome    Outcome
	Progress   float64
	Completion *completion.Completion
	StartedAt  time.Time
	EndedAt    time.Time
}

// Journal persists session records. SaveSession is called when a session
// starts and again when it ends; implementations upsert by ID.
type Journal interface {
	SaveSession(r Record) error
}

// Notice is delivered to completion listeners.
type Notice struct {
	Session    string
	Completion completion.Completion
}
