package input

import (
	"sync"

	"github.com/ayusman/guineaday/internal/gesture"
)

// Normalizer defaults.
const (
	// DefaultStaleTicks is how many consecutive frameless ticks are tolerated
	// in gesture mode before the pointer is reported absent.
	DefaultStaleTicks = 1
	// maxPending bounds the per-tick queue.
	maxPending = 256
)

// Normalizer serializes asynchronous pointer events and gesture results into
// an ordered list of PointerStates drained once per tick. Only the source
// matching the configured mode is accepted.
type Normalizer struct {
	mu sync.Mutex

	mode       Mode
	offsetX    float64
	offsetY    float64
	staleLimit int

	current PointerState
	pending []PointerState
	// lastEdge is set when the newest pending state changed the flags.
	lastEdge bool

	// pointer mode
	primary    int
	hasPrimary bool

	// gesture mode
	sawFrame bool
	missed   int
}

// NewNormalizer creates a Normalizer for the given mode. A negative
// staleTicks selects DefaultStaleTicks.
func NewNormalizer(mode Mode, staleTicks int) *Normalizer {
	if staleTicks < 0 {
		staleTicks = DefaultStaleTicks
	}
	return &Normalizer{
		mode:       mode,
		staleLimit: staleTicks,
	}
}

// Mode returns the active modality.
func (n *Normalizer) Mode() Mode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

// SetOffset sets the interaction surface's screen offset. Incoming coordinates
// are translated into surface-local space by subtracting it.
func (n *Normalizer) SetOffset(x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offsetX = x
	n.offsetY = y
}

// Reset switches to mode and discards all queued and current input.
func (n *Normalizer) Reset(mode Mode) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mode = mode
	n.current = Absent
	n.pending = n.pending[:0]
	n.lastEdge = false
	n.hasPrimary = false
	n.sawFrame = false
	n.missed = 0
}

// Current returns the most recent state.
func (n *Normalizer) Current() PointerState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// PushPointer feeds a device event. It returns false when pointer input is
// not the active modality or the event carries nothing usable.
func (n *Normalizer) PushPointer(ev PointerEvent) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.mode != ModePointer {
		return false
	}

	switch ev.Kind {
	case EventPress:
		if n.hasPrimary {
			c, ok := find(ev.Contacts, n.primary)
			if !ok {
				// A second finger went down; the first contact stays in charge.
				return false
			}
			n.emit(n.local(c, true))
			return true
		}
		if len(ev.Contacts) == 0 {
			return false
		}
		c := ev.Contacts[0]
		n.primary = c.ID
		n.hasPrimary = true
		n.emit(n.local(c, true))
		return true

	case EventMove:
		if n.hasPrimary {
			c, ok := find(ev.Contacts, n.primary)
			if !ok {
				return false
			}
			n.emit(n.local(c, true))
			return true
		}
		if len(ev.Contacts) == 0 {
			return false
		}
		n.emit(n.local(ev.Contacts[0], false))
		return true

	case EventRelease, EventCancel:
		if !n.hasPrimary {
			return false
		}
		state := n.current
		if len(ev.Contacts) > 0 {
			c, ok := find(ev.Contacts, n.primary)
			if !ok {
				return false
			}
			state = n.local(c, false)
		}
		state.Grabbing = false
		state.Valid = true
		n.hasPrimary = false
		n.emit(state)
		return true
	}
	return false
}

// PushGesture feeds one classified frame. ok is false when the classifier
// found no usable hand, which is reported as an absent pointer.
func (n *Normalizer) PushGesture(res gesture.Result, ok bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.mode != ModeGesture {
		return false
	}

	n.sawFrame = true
	if !ok {
		n.emit(Absent)
		return true
	}
	n.emit(PointerState{
		X:        res.X - n.offsetX,
		Y:        res.Y - n.offsetY,
		Grabbing: res.Grabbing,
		Valid:    true,
	})
	return true
}

// Drain returns the states queued since the previous call, oldest first.
// In gesture mode it also applies the staleness rule: once more than the
// configured number of ticks pass without a frame, an absent state is queued.
func (n *Normalizer) Drain() []PointerState {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.mode == ModeGesture {
		if n.sawFrame {
			n.missed = 0
		} else {
			n.missed++
			if n.missed > n.staleLimit && n.current.Valid {
				n.emit(Absent)
			}
		}
		n.sawFrame = false
	}

	if len(n.pending) == 0 {
		return nil
	}
	out := make([]PointerState, len(n.pending))
	copy(out, n.pending)
	n.pending = n.pending[:0]
	return out
}

// emit records a new state. Runs of states with unchanged grab and validity
// flags are coalesced so that every edge keeps its own position and only the
// latest position after it survives.
func (n *Normalizer) emit(s PointerState) {
	edge := s.Grabbing != n.current.Grabbing || s.Valid != n.current.Valid
	n.current = s
	if last := len(n.pending) - 1; last >= 0 && !edge && !n.lastEdge {
		n.pending[last] = s
		return
	}
	n.lastEdge = edge
	if len(n.pending) >= maxPending {
		copy(n.pending, n.pending[1:])
		n.pending = n.pending[:len(n.pending)-1]
	}
	n.pending = append(n.pending, s)
}

func (n *Normalizer) local(c Contact, grabbing bool) PointerState {
	return PointerState{
		X:        c.X - n.offsetX,
		Y:        c.Y - n.offsetY,
		Grabbing: grabbing,
		Valid:    true,
	}
}

func find(contacts []Contact, id int) (Contact, bool) {
	for _, c := range contacts {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}
