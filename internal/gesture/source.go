package gesture

import (
	"context"
	"errors"
	"sync"
)

// ErrSourceStopped is returned by Next once a source has been stopped.
var ErrSourceStopped = errors.New("gesture source stopped")

// ErrNotStarted is returned by Next before Start succeeded.
var ErrNotStarted = errors.New("gesture source not started")

// Source is the capability the engine needs from a landmark producer.
// Concrete detection libraries are adapters implementing it.
type Source interface {
	// Start acquires the underlying device or library. It may block while loading.
	Start(ctx context.Context) error
	// Stop releases resources. Pending and future Next calls return ErrSourceStopped.
	Stop() error
	// Next blocks until the next frame. An empty frame means no hand.
	Next(ctx context.Context) (Frame, error)
}

// RemoteSource receives frames pushed by an external producer, typically a
// browser running the hand landmarker and sending results over a websocket.
// Only the most recent undelivered frame is kept.
type RemoteSource struct {
	frames chan Frame

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewRemoteSource creates a stopped RemoteSource.
func NewRemoteSource() *RemoteSource {
	return &RemoteSource{
		frames: make(chan Frame, 1),
	}
}

// Start marks the source as live. Starting twice is a no-op.
func (s *RemoteSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.started = true
	s.done = make(chan struct{})
	return nil
}

// Stop ends delivery and drops any buffered frame.
func (s *RemoteSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	close(s.done)

	select {
	case <-s.frames:
	default:
	}
	return nil
}

// Push offers a frame. It returns false when the source is not running.
// A frame that has not been consumed yet is replaced.
func (s *RemoteSource) Push(f Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return false
	}
	for {
		select {
		case s.frames <- f:
			return true
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

// Running reports whether the source accepts frames.
func (s *RemoteSource) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Next waits for the next pushed frame.
func (s *RemoteSource) Next(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	started, done := s.started, s.done
	s.mu.Unlock()

	if !started {
		if done != nil {
			return Frame{}, ErrSourceStopped
		}
		return Frame{}, ErrNotStarted
	}

	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case <-done:
		return Frame{}, ErrSourceStopped
	case f := <-s.frames:
		return f, nil
	}
}
