// Package completion decides when a drag interaction satisfies the session
// goal.
package completion

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/guineaday/internal/physics"
)

// Policy names.
const (
	PolicyZone     = "zone"
	PolicyProgress = "progress"
)

// Defaults.
const (
	DefaultZoneThreshold     = 60.0
	DefaultProgressThreshold = 80.0
	DefaultZoneSize          = 60.0
)

// ErrUnknownPolicy is returned for a policy name other than zone or progress.
var ErrUnknownPolicy = errors.New("unknown completion policy")

// Zone is a drop target. Pos is the top-left corner of a square of side Size.
type Zone struct {
	ID    int          `json:"id"`
	Label string       `json:"label"`
	Pos   physics.Vec2 `json:"pos"`
	Size  float64      `json:"size"`
}

// Center returns the middle of the zone.
func (z Zone) Center() physics.Vec2 {
	return physics.Vec2{X: z.Pos.X + z.Size/2, Y: z.Pos.Y + z.Size/2}
}

// Completion is raised once per session when the goal is met.
type Completion struct {
	Body     string    `json:"body"`
	Zone     string    `json:"zone,omitempty"`
	Policy   string    `json:"policy"`
	Progress float64   `json:"progress"`
	At       time.Time `json:"at"`
}

// Policy evaluates drag events. Grab starts a drag, Move and Release may
// complete it, and Abort ends it without completing.
type Policy interface {
	Name() string
	Grab(b *physics.Body, pointer physics.Vec2)
	Move(b *physics.Body, pointer physics.Vec2) (Completion, bool)
	Release(b *physics.Body, pointer physics.Vec2) (Completion, bool)
	Abort()
	Progress() float64
	Reset()
}

// Config selects and tunes a policy.
type Config struct {
	Policy            string  `yaml:"policy"`
	ZoneThreshold     float64 `yaml:"zone_threshold"`
	ProgressThreshold float64 `yaml:"progress_threshold"`
}

// DefaultConfig returns the zone policy with default thresholds.
func DefaultConfig() Config {
	return Config{
		Policy:            PolicyZone,
		ZoneThreshold:     DefaultZoneThreshold,
		ProgressThreshold: DefaultProgressThreshold,
	}
}

// New builds the configured policy.
func New(cfg Config) (Policy, error) {
	switch cfg.Policy {
	case PolicyZone, "":
		return NewZoneHit(cfg.ZoneThreshold), nil
	case PolicyProgress:
		return NewProgress(cfg.ProgressThreshold), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, cfg.Policy)
	}
}

// Tracker latches the first completion of a session.
type Tracker struct {
	last  Completion
	fired bool
}

// Offer records c if nothing has fired yet. It reports whether c was accepted.
func (t *Tracker) Offer(c Completion) bool {
	if t.fired {
		return false
	}
	t.last = c
	t.fired = true
	return true
}

// Fired reports whether the session has completed.
func (t *Tracker) Fired() bool {
	return t.fired
}

// Last returns the latched completion.
func (t *Tracker) Last() (Completion, bool) {
	return t.last, t.fired
}

// Reset arms the tracker for a new session.
func (t *Tracker) Reset() {
	*t = Tracker{}
}
