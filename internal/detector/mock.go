package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/guineaday/internal/gesture"
)

// MockDetector returns preset hands. Safe for concurrent use.
type MockDetector struct {
	mu    sync.Mutex
	hands []gesture.Frame
	err   error
	calls int
}

// NewMockDetector creates a MockDetector that finds no hands.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned by Detect.
func (m *MockDetector) SetHands(hands ...gesture.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError makes Detect fail with err. Nil clears it.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the preset hands or error.
func (m *MockDetector) Detect(*gocv.Mat) ([]gesture.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op.
func (m *MockDetector) Close() error {
	return nil
}
