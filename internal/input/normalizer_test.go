package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/guineaday/internal/gesture"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("gesture")
	require.NoError(t, err)
	assert.Equal(t, ModeGesture, m)

	_, err = ParseMode("keyboard")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestNormalizer_PointerMode(t *testing.T) {
	t.Run("press move release", func(t *testing.T) {
		n := NewNormalizer(ModePointer, -1)
		n.SetOffset(10, 20)

		require.True(t, n.PushPointer(Mouse(EventPress, 110, 120)))
		require.True(t, n.PushPointer(Mouse(EventMove, 150, 160)))
		require.True(t, n.PushPointer(Mouse(EventRelease, 155, 165)))

		got := n.Drain()
		require.Len(t, got, 3)
		assert.Equal(t, PointerState{X: 100, Y: 100, Grabbing: true, Valid: true}, got[0], "press keeps its own position")
		assert.Equal(t, PointerState{X: 140, Y: 140, Grabbing: true, Valid: true}, got[1])
		assert.Equal(t, PointerState{X: 145, Y: 145, Grabbing: false, Valid: true}, got[2])

		assert.Nil(t, n.Drain())
	})

	t.Run("press and release in one tick keeps both edges", func(t *testing.T) {
		n := NewNormalizer(ModePointer, -1)
		n.PushPointer(Mouse(EventMove, 1, 1))
		n.PushPointer(Mouse(EventPress, 5, 5))
		n.PushPointer(Mouse(EventRelease, 5, 5))

		got := n.Drain()
		require.Len(t, got, 3)
		assert.False(t, got[0].Grabbing)
		assert.True(t, got[1].Grabbing)
		assert.False(t, got[2].Grabbing)
	})

	t.Run("release without contacts uses last position", func(t *testing.T) {
		n := NewNormalizer(ModePointer, -1)
		n.PushPointer(Mouse(EventPress, 30, 40))
		n.PushPointer(PointerEvent{Kind: EventCancel})

		got := n.Drain()
		require.Len(t, got, 2)
		assert.Equal(t, PointerState{X: 30, Y: 40, Valid: true}, got[1])
	})

	t.Run("first contact owns the grab", func(t *testing.T) {
		n := NewNormalizer(ModePointer, -1)
		n.PushPointer(PointerEvent{Kind: EventPress, Contacts: []Contact{{ID: 7, X: 1, Y: 1}, {ID: 8, X: 50, Y: 50}}})

		// Second finger moves alone: ignored.
		assert.False(t, n.PushPointer(PointerEvent{Kind: EventMove, Contacts: []Contact{{ID: 8, X: 60, Y: 60}}}))
		// Second finger lifts: ignored.
		assert.False(t, n.PushPointer(PointerEvent{Kind: EventRelease, Contacts: []Contact{{ID: 8, X: 60, Y: 60}}}))

		assert.True(t, n.PushPointer(PointerEvent{Kind: EventMove, Contacts: []Contact{{ID: 8, X: 61, Y: 61}, {ID: 7, X: 3, Y: 4}}}))
		assert.Equal(t, PointerState{X: 3, Y: 4, Grabbing: true, Valid: true}, n.Current())

		assert.True(t, n.PushPointer(PointerEvent{Kind: EventRelease, Contacts: []Contact{{ID: 7, X: 3, Y: 4}}}))
		assert.False(t, n.Current().Grabbing)
	})

	t.Run("gesture results ignored", func(t *testing.T) {
		n := NewNormalizer(ModePointer, -1)
		assert.False(t, n.PushGesture(gesture.Result{X: 1, Y: 1, Grabbing: true}, true))
		assert.Nil(t, n.Drain())
	})

	t.Run("release without press ignored", func(t *testing.T) {
		n := NewNormalizer(ModePointer, -1)
		assert.False(t, n.PushPointer(Mouse(EventRelease, 1, 1)))
	})

	t.Run("pointer held indefinitely", func(t *testing.T) {
		n := NewNormalizer(ModePointer, -1)
		n.PushPointer(Mouse(EventPress, 1, 1))
		n.Drain()
		for i := 0; i < 100; i++ {
			assert.Nil(t, n.Drain())
		}
		assert.True(t, n.Current().Grabbing)
	})
}

func TestNormalizer_GestureMode(t *testing.T) {
	t.Run("translates by offset", func(t *testing.T) {
		n := NewNormalizer(ModeGesture, -1)
		n.SetOffset(100, 50)

		require.True(t, n.PushGesture(gesture.Result{X: 300, Y: 250, Grabbing: true}, true))
		got := n.Drain()
		require.Len(t, got, 1)
		assert.Equal(t, PointerState{X: 200, Y: 200, Grabbing: true, Valid: true}, got[0])
	})

	t.Run("no hand is absent", func(t *testing.T) {
		n := NewNormalizer(ModeGesture, -1)
		n.PushGesture(gesture.Result{X: 1, Y: 1, Grabbing: true}, true)
		n.PushGesture(gesture.Result{}, false)

		got := n.Drain()
		require.Len(t, got, 2)
		assert.Equal(t, Absent, got[1])
	})

	t.Run("stale source reported absent after limit", func(t *testing.T) {
		n := NewNormalizer(ModeGesture, 1)
		n.PushGesture(gesture.Result{X: 1, Y: 1, Grabbing: true}, true)
		require.Len(t, n.Drain(), 1)

		// One frameless tick is tolerated.
		assert.Nil(t, n.Drain())
		// The second is not.
		got := n.Drain()
		require.Len(t, got, 1)
		assert.Equal(t, Absent, got[0])

		// Absent is reported once.
		assert.Nil(t, n.Drain())
	})

	t.Run("frame resets staleness", func(t *testing.T) {
		n := NewNormalizer(ModeGesture, 1)
		for i := 0; i < 5; i++ {
			n.PushGesture(gesture.Result{X: 1, Y: 1, Grabbing: true}, true)
			n.Drain()
			assert.Nil(t, n.Drain())
		}
		assert.True(t, n.Current().Valid)
	})

	t.Run("pointer events ignored", func(t *testing.T) {
		n := NewNormalizer(ModeGesture, -1)
		assert.False(t, n.PushPointer(Mouse(EventPress, 1, 1)))
	})
}

func TestNormalizer_Reset(t *testing.T) {
	n := NewNormalizer(ModePointer, -1)
	n.PushPointer(Mouse(EventPress, 1, 1))

	n.Reset(ModeGesture)
	assert.Equal(t, ModeGesture, n.Mode())
	assert.Equal(t, Absent, n.Current())
	assert.Nil(t, n.Drain())
	assert.False(t, n.PushPointer(Mouse(EventMove, 2, 2)))
}

func TestNormalizer_Coalesces(t *testing.T) {
	n := NewNormalizer(ModePointer, -1)
	n.PushPointer(Mouse(EventPress, 0, 0))
	for i := 1; i <= 10; i++ {
		n.PushPointer(Mouse(EventMove, float64(i), float64(i)))
	}
	got := n.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, 0.0, got[0].X)
	assert.Equal(t, 10.0, got[1].X)

	for i := 11; i <= 20; i++ {
		n.PushPointer(Mouse(EventMove, float64(i), float64(i)))
	}
	got = n.Drain()
	require.Len(t, got, 1, "moves after a drained edge collapse")
	assert.Equal(t, 20.0, got[0].X)
}
