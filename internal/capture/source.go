package capture

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/guineaday/internal/detector"
	"github.com/ayusman/guineaday/internal/gesture"
)

// SourceConfig tunes a CameraSource.
type SourceConfig struct {
	IdleFPS         int
	ActiveFPS       int
	MotionThreshold float64
	// IdleAfter is how long without motion before dropping to IdleFPS.
	// It also bounds how long a detection result is reused.
	IdleAfter time.Duration
	// Preview keeps a JPEG of the latest frame for Preview.
	Preview bool
}

// DefaultSourceConfig returns the rates used by the desktop app.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		IdleFPS:         DefaultIdleFPS,
		ActiveFPS:       DefaultActiveFPS,
		MotionThreshold: DefaultMotion,
		IdleAfter:       2 * time.Second,
		Preview:         true,
	}
}

// CameraSource is a gesture.Source backed by a camera and a hand detector.
// Hand detection only runs when the picture moved; otherwise the previous
// result is handed out again. The camera drops to a low frame rate when
// the scene has been still for a while.
type CameraSource struct {
	camera   Camera
	detector detector.Detector
	motion   *MotionDetector
	cfg      SourceConfig
	log      *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	running    bool
	done       chan struct{}
	active     bool
	lastMotion time.Time
	lastDetect time.Time
	detected   bool
	last       gesture.Frame
	preview    []byte
}

var _ gesture.Source = (*CameraSource)(nil)

// NewCameraSource wires a camera to a detector. A nil logger discards output.
func NewCameraSource(camera Camera, det detector.Detector, cfg SourceConfig, log *zap.Logger) *CameraSource {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = DefaultIdleFPS
	}
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = DefaultActiveFPS
	}
	return &CameraSource{
		camera:   camera,
		detector: det,
		motion:   NewMotionDetector(cfg.MotionThreshold),
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Start opens the camera.
func (s *CameraSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.camera.Open(); err != nil {
		return err
	}
	s.camera.SetFPS(s.cfg.IdleFPS)
	s.motion.Reset()

	s.running = true
	s.done = make(chan struct{})
	s.active = false
	s.detected = false
	s.last = gesture.Frame{}
	s.log.Info("camera source started", zap.Int("fps", s.cfg.IdleFPS))
	return nil
}

// Stop closes the camera and the detector.
func (s *CameraSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.done)
	s.preview = nil
	s.mu.Unlock()

	s.motion.Close()
	err := s.camera.Close()
	if derr := s.detector.Close(); err == nil {
		err = derr
	}
	s.log.Info("camera source stopped")
	return err
}

// Next reads one camera frame and returns the hand in it.
func (s *CameraSource) Next(ctx context.Context) (gesture.Frame, error) {
	s.mu.Lock()
	running, done := s.running, s.done
	s.mu.Unlock()

	if !running {
		return gesture.Frame{}, gesture.ErrNotStarted
	}
	select {
	case <-ctx.Done():
		return gesture.Frame{}, ctx.Err()
	case <-done:
		return gesture.Frame{}, gesture.ErrSourceStopped
	default:
	}

	mat, err := s.camera.ReadFrame()
	if err != nil {
		select {
		case <-done:
			return gesture.Frame{}, gesture.ErrSourceStopped
		default:
		}
		return gesture.Frame{}, err
	}
	defer mat.Close()

	if s.cfg.Preview {
		s.keepPreview(mat)
	}

	moved, changed := s.motion.Detect(mat)
	if f, ok := s.reuse(moved, changed); ok {
		return f, nil
	}

	hands, err := s.detector.Detect(mat)
	if err != nil {
		return gesture.Frame{}, err
	}
	best := detector.Best(hands)

	s.mu.Lock()
	s.last = best
	s.detected = true
	s.lastDetect = s.now()
	s.mu.Unlock()
	return best, nil
}

// reuse updates the frame-rate state and returns the previous result when
// the scene is still and that result is fresh enough.
func (s *CameraSource) reuse(moved bool, changed float64) (gesture.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if moved {
		s.lastMotion = now
		if !s.active {
			s.active = true
			s.camera.SetFPS(s.cfg.ActiveFPS)
			s.log.Debug("camera active", zap.Float64("changed", changed))
		}
		return gesture.Frame{}, false
	}

	if s.active && now.Sub(s.lastMotion) > s.cfg.IdleAfter {
		s.active = false
		s.camera.SetFPS(s.cfg.IdleFPS)
		s.log.Debug("camera idle")
	}
	if s.detected && now.Sub(s.lastDetect) <= s.cfg.IdleAfter {
		return s.last, true
	}
	return gesture.Frame{}, false
}

func (s *CameraSource) keepPreview(mat *gocv.Mat) {
	buf, err := gocv.IMEncode(".jpg", *mat)
	if err != nil {
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	s.mu.Lock()
	s.preview = data
	s.mu.Unlock()
}

// Preview returns a JPEG of the most recent frame, or nil.
func (s *CameraSource) Preview() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// Active reports whether the camera is running at the active rate.
func (s *CameraSource) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
