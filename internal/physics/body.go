// Package physics runs the idle motion of free-floating bodies inside a
// rectangular container.
package physics

import "math"

// Vec2 is a 2D vector in container distance units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(o.X-v.X, o.Y-v.Y) }

// State is the interaction state of a body.
type State int

const (
	Free State = iota
	Grabbed
)

func (s State) String() string {
	if s == Grabbed {
		return "grabbed"
	}
	return "free"
}

// Body is a draggable, simulated entity. Pos is its top-left corner and Size
// the side of its square bounding box.
type Body struct {
	ID    int
	Label string
	Pos   Vec2
	Vel   Vec2
	Size  float64
	State State
}

// Center returns the center of the body's bounding box.
func (b *Body) Center() Vec2 {
	return Vec2{b.Pos.X + b.Size/2, b.Pos.Y + b.Size/2}
}

// Contains reports whether p lies inside the bounding box, edges included.
func (b *Body) Contains(p Vec2) bool {
	return p.X >= b.Pos.X && p.X <= b.Pos.X+b.Size &&
		p.Y >= b.Pos.Y && p.Y <= b.Pos.Y+b.Size
}

// Bounds is the size of the container.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both extents are positive and finite.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0 &&
		!math.IsInf(b.Width, 0) && !math.IsInf(b.Height, 0)
}

// limit returns the largest coordinate a body of the given size may take
// along an extent. It never goes below zero.
func limit(extent, size float64) float64 {
	return math.Max(0, extent-size)
}

// ClampSpeed rescales v uniformly so its length does not exceed max.
func ClampSpeed(v Vec2, max float64) Vec2 {
	speed := v.Len()
	if speed > max && speed > 0 {
		return v.Scale(max / speed)
	}
	return v
}
