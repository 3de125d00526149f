package gesture

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoHand is returned when a frame carries no landmarks.
	ErrNoHand = errors.New("no hand in frame")
	// ErrIncompleteFrame is returned when a frame has fewer than NumLandmarks points.
	ErrIncompleteFrame = errors.New("incomplete landmark frame")
	// ErrInvalidPoint is returned when a consumed landmark is not a finite number.
	ErrInvalidPoint = errors.New("invalid landmark point")
)

// Finger indexes into Pose.Bases and Pose.Tips.
const (
	Index = iota
	Middle
	Ring
	Pinky
	numFingers
)

var (
	fingerBases = [numFingers]int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	fingerTips  = [numFingers]int{IndexTip, MiddleTip, RingTip, PinkyTip}
)

// Pose holds only the landmarks the classifier consumes.
type Pose struct {
	Wrist Point
	Bases [numFingers]Point
	Tips  [numFingers]Point
}

// NewPose validates a frame and extracts the wrist, finger bases and fingertips.
func NewPose(f Frame) (Pose, error) {
	if f.Empty() {
		return Pose{}, ErrNoHand
	}
	if len(f.Points) < NumLandmarks {
		return Pose{}, fmt.Errorf("%w: got %d points, need %d", ErrIncompleteFrame, len(f.Points), NumLandmarks)
	}

	var p Pose
	var err error
	if p.Wrist, err = pick(f.Points, Wrist); err != nil {
		return Pose{}, err
	}
	for i := 0; i < numFingers; i++ {
		if p.Bases[i], err = pick(f.Points, fingerBases[i]); err != nil {
			return Pose{}, err
		}
		if p.Tips[i], err = pick(f.Points, fingerTips[i]); err != nil {
			return Pose{}, err
		}
	}
	return p, nil
}

func pick(points []Point, idx int) (Point, error) {
	pt := points[idx]
	if !finite(pt.X) || !finite(pt.Y) {
		return Point{}, fmt.Errorf("%w: landmark %d", ErrInvalidPoint, idx)
	}
	return pt, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Palm returns the midpoint of the wrist and the middle finger base.
func (p Pose) Palm() Point {
	mid := p.Bases[Middle]
	return Point{
		X: (p.Wrist.X + mid.X) / 2,
		Y: (p.Wrist.Y + mid.Y) / 2,
	}
}

// Curled reports whether the given finger's tip sits below its base minus slack.
// Image Y grows downward, so "below" means a larger Y.
func (p Pose) Curled(finger int, slack float64) bool {
	return p.Tips[finger].Y > p.Bases[finger].Y-slack
}

// CurledCount returns how many of the four non-thumb fingers are curled.
func (p Pose) CurledCount(slack float64) int {
	n := 0
	for i := 0; i < numFingers; i++ {
		if p.Curled(i, slack) {
			n++
		}
	}
	return n
}
