package gesture

import (
	"context"
	"errors"
	"sync"
)

// ErrNotReady is returned by Wait when initialization has not finished
// successfully.
var ErrNotReady = errors.New("gesture source not ready")

// State is the initialization state of a gesture source.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Initializer drives a Source through Uninitialized -> Loading -> Ready | Failed.
// Consumers only look at the outcome, never at how the source loads.
type Initializer struct {
	src Source

	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}
}

// NewInitializer wraps src in the Uninitialized state.
func NewInitializer(src Source) *Initializer {
	return &Initializer{
		src:  src,
		done: make(chan struct{}),
	}
}

// Start begins loading in the background. Calling Start more than once has
// no effect.
func (i *Initializer) Start(ctx context.Context) {
	i.mu.Lock()
	if i.state != StateUninitialized {
		i.mu.Unlock()
		return
	}
	i.state = StateLoading
	i.mu.Unlock()

	go func() {
		var err error
		if i.src == nil {
			err = errors.New("no gesture source configured")
		} else {
			err = i.src.Start(ctx)
		}

		i.mu.Lock()
		if err != nil {
			i.state = StateFailed
			i.err = err
		} else {
			i.state = StateReady
		}
		i.mu.Unlock()
		close(i.done)
	}()
}

// State returns the current state and, when Failed, the cause.
func (i *Initializer) State() (State, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state, i.err
}

// Done is closed once the state is Ready or Failed.
func (i *Initializer) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until loading finishes or ctx ends. It returns nil only when
// the source is Ready.
func (i *Initializer) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.done:
	}

	state, err := i.State()
	if state == StateReady {
		return nil
	}
	if err != nil {
		return errors.Join(ErrNotReady, err)
	}
	return ErrNotReady
}
