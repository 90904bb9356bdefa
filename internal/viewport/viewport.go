// Package viewport maps document coordinates to screen coordinates:
// screen = document*Scale + (X, Y).
package viewport

import (
	"math"

	"github.com/archsketch/engine/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Options bounds the transform.
type Options struct {
	MinScale    float64 `koanf:"min_scale"`
	MaxScale    float64 `koanf:"max_scale"`
	MaxFitScale float64 `koanf:"max_fit_scale"` // fit never zooms in past this
	FitFraction float64 `koanf:"fit_fraction"`  // share of the viewport fit may use
}

// DefaultOptions returns the editor's zoom limits.
func DefaultOptions() Options {
	return Options{MinScale: 0.1, MaxScale: 4, MaxFitScale: 1, FitFraction: 0.9}
}

// Transform is a uniform scale followed by a translation.
type Transform struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Identity is the unit transform.
func Identity() Transform { return Transform{Scale: 1} }

// ToScreen maps a document point to the screen.
func (t Transform) ToScreen(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*t.Scale + t.X, Y: p.Y*t.Scale + t.Y}
}

// ToDocument maps a screen point to the document.
func (t Transform) ToDocument(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - t.X) / t.Scale, Y: (p.Y - t.Y) / t.Scale}
}

// Pan shifts the view by a screen-space delta.
func (t Transform) Pan(delta r2.Vec) Transform {
	t.X += delta.X
	t.Y += delta.Y
	return t
}

// Clamp limits the scale to the configured range.
func (o Options) Clamp(scale float64) float64 {
	if math.IsNaN(scale) || scale <= 0 {
		return o.MinScale
	}
	return math.Min(o.MaxScale, math.Max(o.MinScale, scale))
}

// ZoomAt scales by factor while keeping the screen point pivot fixed. The
// resulting scale is clamped.
func (o Options) ZoomAt(t Transform, factor float64, pivot r2.Vec) Transform {
	doc := t.ToDocument(pivot)
	scale := o.Clamp(t.Scale * factor)
	return Transform{
		Scale: scale,
		X:     pivot.X - doc.X*scale,
		Y:     pivot.Y - doc.Y*scale,
	}
}

// SetScale sets an absolute zoom level around pivot.
func (o Options) SetScale(t Transform, scale float64, pivot r2.Vec) Transform {
	if t.Scale == 0 {
		t.Scale = 1
	}
	return o.ZoomAt(t, scale/t.Scale, pivot)
}

// Fit returns the transform that centers content in a w x h viewport. It
// depends only on its arguments, so fitting twice yields the same result.
// Empty content gives the identity.
func (o Options) Fit(content geometry.Bounds, w, h float64) Transform {
	if content.Empty() || w <= 0 || h <= 0 {
		return Identity()
	}
	scale := o.MaxFitScale
	if cw := content.Width(); cw > 0 {
		scale = math.Min(scale, w*o.FitFraction/cw)
	}
	if ch := content.Height(); ch > 0 {
		scale = math.Min(scale, h*o.FitFraction/ch)
	}
	scale = o.Clamp(scale)
	c := content.Center()
	return Transform{
		Scale: scale,
		X:     w/2 - c.X*scale,
		Y:     h/2 - c.Y*scale,
	}
}
