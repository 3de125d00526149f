package gesture

// OpenPalmFrame returns a right hand with all fingers extended upward.
// The palm center sits at (0.5, 0.73) in normalized image space.
func OpenPalmFrame() Frame {
	points := make([]Point, NumLandmarks)

	points[Wrist] = Point{X: 0.5, Y: 0.8}

	points[ThumbCMC] = Point{X: 0.55, Y: 0.75, Z: 0.02}
	points[ThumbMCP] = Point{X: 0.62, Y: 0.70, Z: 0.03}
	points[ThumbIP] = Point{X: 0.68, Y: 0.65, Z: 0.03}
	points[ThumbTip] = Point{X: 0.73, Y: 0.60, Z: 0.03}

	points[IndexMCP] = Point{X: 0.55, Y: 0.68}
	points[IndexPIP] = Point{X: 0.57, Y: 0.55}
	points[IndexDIP] = Point{X: 0.58, Y: 0.45}
	points[IndexTip] = Point{X: 0.58, Y: 0.35}

	points[MiddleMCP] = Point{X: 0.50, Y: 0.66}
	points[MiddlePIP] = Point{X: 0.50, Y: 0.52}
	points[MiddleDIP] = Point{X: 0.50, Y: 0.40}
	points[MiddleTip] = Point{X: 0.50, Y: 0.28}

	points[RingMCP] = Point{X: 0.45, Y: 0.68}
	points[RingPIP] = Point{X: 0.43, Y: 0.55}
	points[RingDIP] = Point{X: 0.42, Y: 0.45}
	points[RingTip] = Point{X: 0.42, Y: 0.35}

	points[PinkyMCP] = Point{X: 0.40, Y: 0.70}
	points[PinkyPIP] = Point{X: 0.37, Y: 0.60}
	points[PinkyDIP] = Point{X: 0.35, Y: 0.50}
	points[PinkyTip] = Point{X: 0.34, Y: 0.42}

	return Frame{Points: points, Handedness: "Right", Score: 0.95}
}

// FistFrame returns a right hand with all four fingers curled toward the palm.
// The palm center matches OpenPalmFrame.
func FistFrame() Frame {
	f := OpenPalmFrame()
	p := f.Points

	p[IndexPIP] = Point{X: 0.55, Y: 0.66, Z: -0.05}
	p[IndexDIP] = Point{X: 0.54, Y: 0.69, Z: -0.04}
	p[IndexTip] = Point{X: 0.53, Y: 0.71, Z: -0.02}

	p[MiddlePIP] = Point{X: 0.50, Y: 0.64, Z: -0.05}
	p[MiddleDIP] = Point{X: 0.49, Y: 0.67, Z: -0.04}
	p[MiddleTip] = Point{X: 0.48, Y: 0.70, Z: -0.02}

	p[RingPIP] = Point{X: 0.45, Y: 0.66, Z: -0.05}
	p[RingDIP] = Point{X: 0.44, Y: 0.69, Z: -0.04}
	p[RingTip] = Point{X: 0.43, Y: 0.71, Z: -0.02}

	p[PinkyPIP] = Point{X: 0.40, Y: 0.68, Z: -0.05}
	p[PinkyDIP] = Point{X: 0.39, Y: 0.71, Z: -0.04}
	p[PinkyTip] = Point{X: 0.38, Y: 0.73, Z: -0.02}

	return f
}

// MovedFrame returns a copy of f translated by (dx, dy) in normalized units.
func MovedFrame(f Frame, dx, dy float64) Frame {
	out := Frame{
		Points:     make([]Point, len(f.Points)),
		Handedness: f.Handedness,
		Score:      f.Score,
	}
	for i, pt := range f.Points {
		out.Points[i] = Point{X: pt.X + dx, Y: pt.Y + dy, Z: pt.Z}
	}
	return out
}

// TruncatedFrame returns f with only its first n points.
func TruncatedFrame(f Frame, n int) Frame {
	if n > len(f.Points) {
		n = len(f.Points)
	}
	out := f
	out.Points = append([]Point(nil), f.Points[:n]...)
	return out
}
