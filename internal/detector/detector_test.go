package detector

import (
	"errors"
	"strings"
	"testing"

	"github.com/ayusman/guineaday/internal/gesture"
)

func TestBest(t *testing.T) {
	low := gesture.OpenPalmFrame()
	low.Score = 0.6
	high := gesture.FistFrame()
	high.Score = 0.9

	t.Run("empty input", func(t *testing.T) {
		if got := Best(nil); !got.Empty() {
			t.Errorf("Best(nil) = %+v, want empty", got)
		}
	})

	t.Run("highest score wins", func(t *testing.T) {
		got := Best([]gesture.Frame{low, high})
		if got.Score != 0.9 {
			t.Errorf("Best() score = %f, want 0.9", got.Score)
		}
	})

	t.Run("empty hands skipped", func(t *testing.T) {
		got := Best([]gesture.Frame{{Score: 1}, low})
		if got.Score != 0.6 {
			t.Errorf("Best() score = %f, want 0.6", got.Score)
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("hands", func(t *testing.T) {
		line := `{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0},{"x":0.3,"y":0.4,"z":0}],"handedness":"Left","score":0.8}]}` + "\n"
		hands, err := parseResponse([]byte(line))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		// Short hands are passed through untouched.
		if len(hands[0].Points) != 2 || hands[0].Points[1].Y != 0.4 {
			t.Errorf("unexpected points %+v", hands[0].Points)
		}
		if hands[0].Handedness != "Left" {
			t.Errorf("expected handedness Left, got %s", hands[0].Handedness)
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"error":"model missing"}`))
		if err == nil || !strings.Contains(err.Error(), "model missing") {
			t.Errorf("expected service error, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := parseResponse([]byte("not json")); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns no hands by default", func(t *testing.T) {
		mock := NewMockDetector()
		hands, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands(gesture.FistFrame(), gesture.OpenPalmFrame())

		hands, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		want := errors.New("detection failed")
		mock.SetHands(gesture.FistFrame())
		mock.SetError(want)

		hands, err := mock.Detect(nil)
		if err != want {
			t.Errorf("expected error %v, got %v", want, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}
