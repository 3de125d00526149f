// Package gesture turns hand-landmark frames into a grab signal and a screen position.
package gesture

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a normalized landmark. X and Y are in [0, 1] image space; Z is ignored.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Frame is one sample from the upstream landmark producer.
// A frame with no points means no hand was detected.
type Frame struct {
	Points     []Point `json:"points"`
	Handedness string  `json:"handedness,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// Empty reports whether the frame carries no hand.
func (f Frame) Empty() bool {
	return len(f.Points) == 0
}
