package gesture

// Default classifier settings.
const (
	DefaultCurlSlack    = 0.05
	DefaultCurlRequired = 2
)

// ClassifierConfig holds the tunables of the grab classifier.
type ClassifierConfig struct {
	// CurlSlack is subtracted from a finger base's Y before comparing the tip.
	CurlSlack float64
	// CurlRequired is how many of the four fingers must curl to count as a grab.
	CurlRequired int
	// ScreenWidth and ScreenHeight scale normalized palm coordinates to screen space.
	ScreenWidth  float64
	ScreenHeight float64
}

// DefaultClassifierConfig returns the stock classifier settings.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		CurlSlack:    DefaultCurlSlack,
		CurlRequired: DefaultCurlRequired,
		ScreenWidth:  1280,
		ScreenHeight: 720,
	}
}

// Result is the classified output of one frame.
type Result struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Grabbing bool    `json:"grabbing"`
}

// Classifier maps a frame to a screen position and grab flag.
// It is stateless: no smoothing is applied between frames.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a Classifier. A non-positive curl count or screen
// size falls back to the default; CurlSlack is used as given, zero included.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	def := DefaultClassifierConfig()
	if cfg.CurlRequired <= 0 {
		cfg.CurlRequired = def.CurlRequired
	}
	if cfg.ScreenWidth <= 0 {
		cfg.ScreenWidth = def.ScreenWidth
	}
	if cfg.ScreenHeight <= 0 {
		cfg.ScreenHeight = def.ScreenHeight
	}
	return &Classifier{cfg: cfg}
}

// SetScreen updates the screen size used for scaling.
func (c *Classifier) SetScreen(width, height float64) {
	if width > 0 {
		c.cfg.ScreenWidth = width
	}
	if height > 0 {
		c.cfg.ScreenHeight = height
	}
}

// Classify returns the palm position and grab flag, or false when the frame
// has no usable hand. Malformed frames are reported the same as no hand.
func (c *Classifier) Classify(f Frame) (Result, bool) {
	pose, err := NewPose(f)
	if err != nil {
		return Result{}, false
	}

	palm := pose.Palm()
	return Result{
		// Mirror horizontally so moving the hand right moves the cursor right.
		X:        (1 - palm.X) * c.cfg.ScreenWidth,
		Y:        palm.Y * c.cfg.ScreenHeight,
		Grabbing: pose.CurledCount(c.cfg.CurlSlack) >= c.cfg.CurlRequired,
	}, true
}
