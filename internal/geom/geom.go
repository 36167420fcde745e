package geom

import "math"

// Vec3 is a point in layer space. Z is carried through but unused by layout.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z,omitempty" yaml:"z,omitempty"`
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Lerp interpolates between v and o by p in [0,1].
func (v Vec3) Lerp(o Vec3, p float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*p,
		Y: v.Y + (o.Y-v.Y)*p,
		Z: v.Z + (o.Z-v.Z)*p,
	}
}

// Rect is an axis-aligned rectangle anchored at its upper-left corner.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// RectFromCenter builds a rectangle of the given size centered on c.
func RectFromCenter(cx, cy, w, h float64) Rect {
	return Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of r.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Aspect returns width/height, or 1 for a degenerate rectangle.
func (r Rect) Aspect() float64 {
	if r.Height <= 0 || r.Width <= 0 {
		return 1
	}
	return r.Width / r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Size returns r's dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Origin returns the upper-left corner.
func (r Rect) Origin() Vec3 {
	return Vec3{X: r.X, Y: r.Y}
}

// Local returns r translated so that its origin is at zero.
func (r Rect) Local() Rect {
	return Rect{Width: r.Width, Height: r.Height}
}

// ApproxEqual compares two rectangles within eps on every edge.
func (r Rect) ApproxEqual(o Rect, eps float64) bool {
	return math.Abs(r.X-o.X) <= eps &&
		math.Abs(r.Y-o.Y) <= eps &&
		math.Abs(r.Width-o.Width) <= eps &&
		math.Abs(r.Height-o.Height) <= eps
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Aspect returns width/height, or 1 for a degenerate size.
func (s Size) Aspect() float64 {
	if s.Height <= 0 || s.Width <= 0 {
		return 1
	}
	return s.Width / s.Height
}
