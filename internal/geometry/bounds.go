package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Bounds accumulates an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	Min, Max r2.Vec
	set      bool
}

// Empty reports whether nothing has been added.
func (b Bounds) Empty() bool { return !b.set }

// Add grows the box to include p.
func (b Bounds) Add(p r2.Vec) Bounds {
	if !b.set {
		return Bounds{Min: p, Max: p, set: true}
	}
	b.Min = r2.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y)}
	b.Max = r2.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y)}
	return b
}

// AddRect grows the box to include the rectangle with top-left (x, y).
func (b Bounds) AddRect(x, y, w, h float64) Bounds {
	return b.Add(r2.Vec{X: x, Y: y}).Add(r2.Vec{X: x + w, Y: y + h})
}

// Union merges two boxes.
func (b Bounds) Union(o Bounds) Bounds {
	if !o.set {
		return b
	}
	return b.Add(o.Min).Add(o.Max)
}

// Pad grows the box by p on every side. Padding an empty box keeps it empty.
func (b Bounds) Pad(p float64) Bounds {
	if !b.set {
		return b
	}
	b.Min = r2.Sub(b.Min, r2.Vec{X: p, Y: p})
	b.Max = r2.Add(b.Max, r2.Vec{X: p, Y: p})
	return b
}

func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Center returns the midpoint of the box.
func (b Bounds) Center() r2.Vec {
	return Lerp(b.Min, b.Max, 0.5)
}

// Contains reports whether p lies inside the box.
func (b Bounds) Contains(p r2.Vec) bool {
	return b.set && p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// ContainsBounds reports whether o lies entirely inside b.
func (b Bounds) ContainsBounds(o Bounds) bool {
	return b.set && o.set && b.Contains(o.Min) && b.Contains(o.Max)
}
