package render

import (
	"github.com/archsketch/engine/internal/diagram"
	"gonum.org/v1/gonum/spatial/r2"
)

// marker is an arrowhead outline in local coordinates: the tip sits at the
// origin and the shape points along +x.
type marker struct {
	points []r2.Vec // polygon or polyline vertices
	closed bool
	filled bool
	circle bool // points[0] is the center, radius is size/2
	size   float64
}

func markerSize(strokeWidth float64) float64 {
	return 4 + 3*strokeWidth
}

func arrowhead(kind diagram.Arrowhead, strokeWidth float64) marker {
	s := markerSize(strokeWidth)
	switch kind {
	case diagram.ArrowOpen:
		return marker{points: []r2.Vec{{X: -s, Y: -s / 2}, {}, {X: -s, Y: s / 2}}, size: s}
	case diagram.ArrowDiamond:
		return marker{
			points: []r2.Vec{{}, {X: -s / 2, Y: -s / 3}, {X: -s, Y: 0}, {X: -s / 2, Y: s / 3}},
			closed: true, filled: true, size: s,
		}
	case diagram.ArrowCircle:
		return marker{points: []r2.Vec{{X: -s / 2}}, circle: true, filled: true, size: s}
	default:
		return marker{
			points: []r2.Vec{{}, {X: -s, Y: -s / 2}, {X: -s, Y: s / 2}},
			closed: true, filled: true, size: s,
		}
	}
}
