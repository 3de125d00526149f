package gesture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestNewPose(t *testing.T) {
	t.Run("empty frame is no hand", func(t *testing.T) {
		_, err := NewPose(Frame{})
		assert.ErrorIs(t, err, ErrNoHand)
	})

	t.Run("short frame is incomplete", func(t *testing.T) {
		_, err := NewPose(TruncatedFrame(OpenPalmFrame(), 18))
		assert.ErrorIs(t, err, ErrIncompleteFrame)
	})

	t.Run("non-finite point rejected", func(t *testing.T) {
		f := OpenPalmFrame()
		f.Points[RingTip].Y = math.NaN()
		_, err := NewPose(f)
		assert.ErrorIs(t, err, ErrInvalidPoint)
	})

	t.Run("unused landmark may be non-finite", func(t *testing.T) {
		f := OpenPalmFrame()
		f.Points[ThumbTip].X = math.Inf(1)
		_, err := NewPose(f)
		assert.NoError(t, err)
	})

	t.Run("extra points are ignored", func(t *testing.T) {
		f := OpenPalmFrame()
		f.Points = append(f.Points, Point{X: 9, Y: 9})
		pose, err := NewPose(f)
		require.NoError(t, err)
		assert.Equal(t, f.Points[Wrist], pose.Wrist)
		assert.Equal(t, f.Points[PinkyTip], pose.Tips[Pinky])
	})
}

func TestPose_Curled(t *testing.T) {
	t.Run("open palm has no curled fingers", func(t *testing.T) {
		pose, err := NewPose(OpenPalmFrame())
		require.NoError(t, err)
		assert.Equal(t, 0, pose.CurledCount(DefaultCurlSlack))
	})

	t.Run("fist has four curled fingers", func(t *testing.T) {
		pose, err := NewPose(FistFrame())
		require.NoError(t, err)
		assert.Equal(t, 4, pose.CurledCount(DefaultCurlSlack))
	})

	t.Run("slack moves the threshold", func(t *testing.T) {
		var pose Pose
		pose.Bases[Index] = Point{Y: 0.60}
		// Tip above the base, but within slack.
		pose.Tips[Index] = Point{Y: 0.57}

		assert.True(t, pose.Curled(Index, 0.05))
		assert.False(t, pose.Curled(Index, 0.01))
	})
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(ClassifierConfig{ScreenWidth: 1000, ScreenHeight: 500})

	t.Run("open palm is not grabbing", func(t *testing.T) {
		res, ok := c.Classify(OpenPalmFrame())
		require.True(t, ok)
		assert.False(t, res.Grabbing)
	})

	t.Run("fist is grabbing", func(t *testing.T) {
		res, ok := c.Classify(FistFrame())
		require.True(t, ok)
		assert.True(t, res.Grabbing)
	})

	t.Run("palm center is mirrored and scaled", func(t *testing.T) {
		res, ok := c.Classify(MovedFrame(OpenPalmFrame(), -0.3, 0))
		require.True(t, ok)
		// palm x = 0.2, mirrored 0.8 * 1000
		assert.InDelta(t, 800, res.X, epsilon)
		assert.InDelta(t, 0.73*500, res.Y, epsilon)
	})

	t.Run("eighteen landmarks is no hand", func(t *testing.T) {
		_, ok := c.Classify(TruncatedFrame(FistFrame(), 18))
		assert.False(t, ok)
	})

	t.Run("no hand", func(t *testing.T) {
		_, ok := c.Classify(Frame{})
		assert.False(t, ok)
	})
}

func TestClassifier_CurlRequired(t *testing.T) {
	// Two curled fingers: index and middle.
	f := OpenPalmFrame()
	f.Points[IndexTip] = Point{X: 0.55, Y: 0.70}
	f.Points[MiddleTip] = Point{X: 0.50, Y: 0.69}

	tests := []struct {
		name     string
		required int
		want     bool
	}{
		{"two required", 2, true},
		{"three required", 3, false},
		{"one required", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(ClassifierConfig{CurlRequired: tt.required})
			res, ok := c.Classify(f)
			require.True(t, ok)
			assert.Equal(t, tt.want, res.Grabbing)
		})
	}
}

func TestNewClassifier_Defaults(t *testing.T) {
	c := NewClassifier(ClassifierConfig{CurlSlack: DefaultCurlSlack})
	assert.Equal(t, DefaultClassifierConfig(), c.cfg)

	c.SetScreen(0, 300)
	assert.Equal(t, 1280.0, c.cfg.ScreenWidth)
	assert.Equal(t, 300.0, c.cfg.ScreenHeight)
}

func TestNewClassifier_ZeroSlack(t *testing.T) {
	c := NewClassifier(ClassifierConfig{CurlSlack: 0})
	assert.Zero(t, c.cfg.CurlSlack)

	// Tip 0.03 above its base: curled with the default slack, not with none.
	f := FistFrame()
	f.Points[IndexTip] = Point{X: 0.55, Y: f.Points[IndexMCP].Y - 0.03}
	f.Points[MiddleTip] = Point{X: 0.50, Y: f.Points[MiddleMCP].Y - 0.03}
	f.Points[RingTip] = Point{X: 0.45, Y: f.Points[RingMCP].Y - 0.03}
	f.Points[PinkyTip] = Point{X: 0.40, Y: f.Points[PinkyMCP].Y - 0.03}

	res, ok := c.Classify(f)
	require.True(t, ok)
	assert.False(t, res.Grabbing)

	res, ok = NewClassifier(DefaultClassifierConfig()).Classify(f)
	require.True(t, ok)
	assert.True(t, res.Grabbing)
}
