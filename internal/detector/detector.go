// Package detector finds hands in camera frames and reports their landmarks.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/guineaday/internal/gesture"
)

// Detector finds hand landmarks in a video frame.
type Detector interface {
	// Detect returns one frame per hand found, best score first.
	// An empty slice means no hand.
	Detect(frame *gocv.Mat) ([]gesture.Frame, error)
	// Close releases any resources held by the detector.
	Close() error
}

// Config holds options passed to the landmark model.
type Config struct {
	MaxHands        int
	MinConfidence   float64
	MinTrackingConf float64
	// IdleTimeout stops the model process after this long without frames.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config tracking a single hand.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}

// Best returns the highest-scoring hand, or an empty frame.
func Best(hands []gesture.Frame) gesture.Frame {
	var best gesture.Frame
	for _, h := range hands {
		if h.Empty() {
			continue
		}
		if best.Empty() || h.Score > best.Score {
			best = h
		}
	}
	return best
}
