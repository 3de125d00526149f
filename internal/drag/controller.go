// Package drag arbitrates exclusive grab ownership over a set of bodies.
//
// A single Controller owns at most one Session at a time. Bodies move between
// Free and Grabbed only through Update and Cancel; the physics simulator never
// touches a Grabbed body.
package drag

import (
	"time"

	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/physics"
)

// EventKind describes what an Update did.
type EventKind int

const (
	// None means the state did not change.
	None EventKind = iota
	// Grab means a body was captured.
	Grab
	// Move means the grabbed body followed the pointer.
	Move
	// Release means the grab ended normally and completion should be evaluated.
	Release
	// Lost means the pointer vanished while grabbing. Completion is suppressed.
	Lost
	// Cancel means the grab was cleared externally. Completion is suppressed.
	Cancel
)

var kindNames = [...]string{"none", "grab", "move", "release", "lost", "cancel"}

func (k EventKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Ended reports whether the event closed a Session.
func (k EventKind) Ended() bool {
	return k == Release || k == Lost || k == Cancel
}

// Session is the lifetime of one held body.
type Session struct {
	BodyID    int
	Offset    physics.Vec2 // pointer minus body origin at grab time
	Start     physics.Vec2 // pointer position at grab time
	StartedAt time.Time
}

// Event is the outcome of a controller transition. Body and Session are set
// for every kind except None.
type Event struct {
	Kind    EventKind
	Body    *physics.Body
	Pointer physics.Vec2
	Session Session
}

// Controller is the Free/Grabbed state machine shared by every body.
type Controller struct {
	bodies   []*physics.Body
	session  *Session
	lastGrab bool
	now      func() time.Time
}

// NewController creates a controller over bodies. Hit testing follows the
// slice order.
func NewController(bodies []*physics.Body) *Controller {
	return &Controller{bodies: bodies, now: time.Now}
}

// SetBodies replaces the body set. Any active session is dropped without an
// event; callers cancel first when they need one.
func (c *Controller) SetBodies(bodies []*physics.Body) {
	c.bodies = bodies
	c.session = nil
}

// Session returns a copy of the active session, if any.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Grabbed returns the held body, or nil.
func (c *Controller) Grabbed() *physics.Body {
	if c.session == nil {
		return nil
	}
	return c.body(c.session.BodyID)
}

// Update applies one canonical pointer state.
func (c *Controller) Update(p input.PointerState) Event {
	if !p.Valid {
		c.lastGrab = false
		if c.session != nil {
			return c.end(Lost, c.lastPointer())
		}
		return Event{}
	}

	pos := physics.Vec2{X: p.X, Y: p.Y}
	rising := p.Grabbing && !c.lastGrab
	falling := !p.Grabbing && c.lastGrab
	c.lastGrab = p.Grabbing

	switch {
	case c.session != nil && p.Grabbing:
		b := c.Grabbed()
		if b == nil {
			c.session = nil
			return Event{}
		}
		b.Pos = pos.Sub(c.session.Offset)
		b.Vel = physics.Vec2{}
		return Event{Kind: Move, Body: b, Pointer: pos, Session: *c.session}

	case c.session != nil && falling:
		return c.end(Release, pos)

	case c.session == nil && rising:
		b := c.hit(pos)
		if b == nil {
			return Event{}
		}
		b.State = physics.Grabbed
		b.Vel = physics.Vec2{}
		c.session = &Session{
			BodyID:    b.ID,
			Offset:    pos.Sub(b.Pos),
			Start:     pos,
			StartedAt: c.now(),
		}
		return Event{Kind: Grab, Body: b, Pointer: pos, Session: *c.session}
	}
	return Event{}
}

// Observe tracks the grab signal of a state the engine did not act on, so a
// release made while input was ignored still arms the next press.
func (c *Controller) Observe(p input.PointerState) {
	c.lastGrab = p.Valid && p.Grabbing
}

// Cancel clears any active session, returning the body to Free. A pointer
// that is still held must be released before it can grab again.
func (c *Controller) Cancel() Event {
	if c.session == nil {
		return Event{}
	}
	return c.end(Cancel, c.lastPointer())
}

// Reset cancels and forgets the previous grab signal, for a new input source.
func (c *Controller) Reset() Event {
	ev := c.Cancel()
	c.lastGrab = false
	return ev
}

func (c *Controller) end(kind EventKind, pos physics.Vec2) Event {
	s := *c.session
	c.session = nil

	b := c.body(s.BodyID)
	if b == nil {
		return Event{}
	}
	b.State = physics.Free
	b.Vel = physics.Vec2{}
	return Event{Kind: kind, Body: b, Pointer: pos, Session: s}
}

func (c *Controller) hit(p physics.Vec2) *physics.Body {
	for _, b := range c.bodies {
		if b.State == physics.Free && b.Contains(p) {
			return b
		}
	}
	return nil
}

func (c *Controller) body(id int) *physics.Body {
	for _, b := range c.bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// lastPointer reconstructs the pointer position from the held body.
func (c *Controller) lastPointer() physics.Vec2 {
	if b := c.Grabbed(); b != nil {
		return b.Pos.Add(c.session.Offset)
	}
	return physics.Vec2{}
}
