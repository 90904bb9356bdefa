// Package geometry resolves where connectors attach to shapes and carries the
// small box arithmetic shared by layout, rendering and the viewport.
//
// Coordinates are screen-oriented: +x to the right, +y down.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Side names the face of a shape a connector attaches to.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Rect is an axis-aligned shape described by its center and half extents.
type Rect struct {
	Center r2.Vec
	HalfW  float64
	HalfH  float64
}

// RectAt builds a Rect from a center point and full width and height.
func RectAt(cx, cy, w, h float64) Rect {
	return Rect{Center: r2.Vec{X: cx, Y: cy}, HalfW: w / 2, HalfH: h / 2}
}

// Contains reports whether p lies inside or on the rectangle.
func (r Rect) Contains(p r2.Vec) bool {
	return math.Abs(p.X-r.Center.X) <= r.HalfW && math.Abs(p.Y-r.Center.Y) <= r.HalfH
}

// Dock is an attachment point on a shape boundary.
type Dock struct {
	Point r2.Vec
	Side  Side
}

// DockRect returns where the ray from the rectangle's center toward target
// crosses the rectangle grown by padding on every side. A target at the
// center yields the center itself on the Top side.
func DockRect(r Rect, target r2.Vec, padding float64) Dock {
	hw := r.HalfW + padding
	hh := r.HalfH + padding
	d := r2.Sub(target, r.Center)
	if d.X == 0 && d.Y == 0 {
		return Dock{Point: r.Center, Side: Top}
	}

	tx := math.Inf(1)
	if d.X != 0 {
		tx = hw / math.Abs(d.X)
	}
	ty := math.Inf(1)
	if d.Y != 0 {
		ty = hh / math.Abs(d.Y)
	}

	var side Side
	t := tx
	if tx <= ty {
		side = Right
		if d.X < 0 {
			side = Left
		}
	} else {
		t = ty
		side = Bottom
		if d.Y < 0 {
			side = Top
		}
	}
	return Dock{Point: r2.Add(r.Center, r2.Scale(t, d)), Side: side}
}

// DockCircle returns the point on a circle boundary facing target.
func DockCircle(center r2.Vec, radius float64, target r2.Vec) Dock {
	d := r2.Sub(target, center)
	n := r2.Norm(d)
	if n == 0 {
		return Dock{Point: center, Side: Top}
	}
	side := Bottom
	switch {
	case math.Abs(d.X) >= math.Abs(d.Y) && d.X >= 0:
		side = Right
	case math.Abs(d.X) >= math.Abs(d.Y):
		side = Left
	case d.Y < 0:
		side = Top
	}
	return Dock{Point: r2.Add(center, r2.Scale(radius/n, d)), Side: side}
}

// Perp returns the left-hand unit perpendicular (-y, x) of a unit vector.
func Perp(u r2.Vec) r2.Vec {
	return r2.Vec{X: -u.Y, Y: u.X}
}

// Lerp interpolates between a and b.
func Lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}
