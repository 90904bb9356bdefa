// Package connector builds the drawable path of a link: docking, parallel and
// bidirectional offsets, the curve itself, the arrowhead angle and the label
// plate.
package connector

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Label is a text plate centered on Anchor.
type Label struct {
	Text   string
	Anchor r2.Vec
	Width  float64
	Height float64
}

// Path is the routed geometry of one link.
type Path struct {
	LinkID string
	Source string
	Target string

	// SourceDock and TargetDock are the unpadded boundary crossings toward
	// the opposite node, before any parallel offset.
	SourceDock geometry.Dock
	TargetDock geometry.Dock

	Start   r2.Vec    // padded and offset anchor at the source
	End     r2.Vec    // padded and offset anchor at the target
	Control [2]r2.Vec // cubic control points (curved links)
	Corners []r2.Vec  // bend points (elbow and orthogonal links)

	Offset     float64 // signed perpendicular shift applied to both anchors
	ArrowAngle float64 // degrees, direction of travel at End
	StartAngle float64 // degrees, direction of travel leaving Start, reversed
	Label      *Label
	Style      diagram.ResolvedLinkStyle
}

// RouteAll routes every link in d whose endpoints exist, in document order.
func RouteAll(d diagram.Document, opts Options) []Path {
	groups := Groups(d.Links)
	paths := make([]Path, 0, len(d.Links))
	for _, l := range d.Links {
		src, dst := d.NodeByID(l.Source), d.NodeByID(l.Target)
		if src == nil || dst == nil {
			continue
		}
		paths = append(paths, Route(src, dst, l, groups[l.ID], opts))
	}
	return paths
}

// Route computes the path of link l from src to dst.
func Route(src, dst *diagram.Node, l diagram.Link, g Group, opts Options) Path {
	style := l.Style.Resolve()
	p := Path{LinkID: l.ID, Source: l.Source, Target: l.Target, Style: style}
	if src.ID == dst.ID {
		p.loop(src, g, opts)
		p.placeLabel(l.Label, opts)
		return p
	}

	sc, dc := src.Center(), dst.Center()
	lo, hi := sc, dc
	if g.Reverse {
		lo, hi = dc, sc
	}
	// Unit vector along the canonical direction; coincident centers count as
	// distance 1 along +x.
	u := r2.Vec{X: 1}
	if d := r2.Sub(hi, lo); r2.Norm(d) > 0 {
		u = r2.Unit(d)
	}
	dir := u
	if g.Reverse {
		dir = r2.Scale(-1, u)
	}
	aimSrc, aimDst := dc, sc
	if sc == dc {
		aimSrc, aimDst = r2.Add(sc, dir), r2.Sub(dc, dir)
	}

	p.SourceDock = geometry.DockRect(src.Rect(), aimSrc, 0)
	p.TargetDock = geometry.DockRect(dst.Rect(), aimDst, 0)

	p.Offset = (float64(g.Index) - float64(g.Count-1)/2) * opts.ParallelSpacing
	if g.Bidirectional {
		p.Offset += opts.BidirectionalSpacing * g.Direction()
	}
	p.Offset += style.Offset * g.Direction()
	shift := r2.Scale(p.Offset, geometry.Perp(u))

	p.Start = r2.Add(geometry.DockRect(src.Rect(), aimSrc, opts.SourcePadding).Point, shift)
	p.End = r2.Add(geometry.DockRect(dst.Rect(), aimDst, opts.TargetPadding).Point, shift)

	chord := r2.Sub(p.End, p.Start)
	var bow r2.Vec
	if n := r2.Norm(chord); n > 0 {
		bow = r2.Scale(style.Curvature*n, geometry.Perp(r2.Unit(chord)))
	}
	p.Control[0] = r2.Add(geometry.Lerp(p.Start, p.End, 0.25), bow)
	p.Control[1] = r2.Add(geometry.Lerp(p.Start, p.End, 0.75), bow)

	switch style.Line {
	case diagram.LineElbow:
		p.Corners = []r2.Vec{{X: p.End.X, Y: p.Start.Y}}
	case diagram.LineOrthogonal:
		if math.Abs(chord.X) >= math.Abs(chord.Y) {
			mx := (p.Start.X + p.End.X) / 2
			p.Corners = []r2.Vec{{X: mx, Y: p.Start.Y}, {X: mx, Y: p.End.Y}}
		} else {
			my := (p.Start.Y + p.End.Y) / 2
			p.Corners = []r2.Vec{{X: p.Start.X, Y: my}, {X: p.End.X, Y: my}}
		}
	}

	p.angles(dir)
	p.placeLabel(l.Label, opts)
	return p
}

// loop routes a self-link as a curl off the top-right of the node.
func (p *Path) loop(n *diagram.Node, g Group, opts Options) {
	c := n.Center()
	out := r2.Unit(r2.Vec{X: 1, Y: -0.5})
	in := r2.Unit(r2.Vec{X: 0.5, Y: -1})
	reach := opts.LoopSize * (1 + 0.5*float64(g.Index))

	p.SourceDock = geometry.DockRect(n.Rect(), r2.Add(c, out), 0)
	p.TargetDock = geometry.DockRect(n.Rect(), r2.Add(c, in), 0)
	p.Start = geometry.DockRect(n.Rect(), r2.Add(c, out), opts.SourcePadding).Point
	p.End = geometry.DockRect(n.Rect(), r2.Add(c, in), opts.TargetPadding).Point
	p.Control[0] = r2.Add(p.Start, r2.Scale(reach, out))
	p.Control[1] = r2.Add(p.End, r2.Scale(reach, in))
	p.Style.Line = diagram.LineCurved
	p.angles(r2.Scale(-1, in))
}

// angles sets the arrow directions from the last and first legs, falling
// back to the chord and then to fallback when a leg has no length.
func (p *Path) angles(fallback r2.Vec) {
	pts := p.legs()
	chord := r2.Sub(p.End, p.Start)
	last := nonZero(r2.Sub(p.End, pts[len(pts)-2]), chord, fallback)
	first := nonZero(r2.Sub(p.Start, pts[1]), r2.Scale(-1, chord), r2.Scale(-1, fallback))
	p.ArrowAngle = degrees(last)
	p.StartAngle = degrees(first)
	if p.Style.HasAngle {
		p.ArrowAngle = p.Style.Angle
	}
}

func nonZero(vs ...r2.Vec) r2.Vec {
	for _, v := range vs {
		if r2.Norm(v) > 0 {
			return v
		}
	}
	return r2.Vec{X: 1}
}

// legs returns the control polygon: Start, intermediate points, End.
func (p *Path) legs() []r2.Vec {
	switch {
	case p.Style.Line == diagram.LineCurved:
		return []r2.Vec{p.Start, p.Control[0], p.Control[1], p.End}
	case len(p.Corners) > 0:
		pts := append([]r2.Vec{p.Start}, p.Corners...)
		return append(pts, p.End)
	default:
		return []r2.Vec{p.Start, p.End}
	}
}

// Polyline returns the vertices of a non-curved path.
func (p *Path) Polyline() []r2.Vec {
	if p.Style.Line == diagram.LineCurved {
		return nil
	}
	return p.legs()
}

// Midpoint returns the geometric middle of the drawn path.
func (p *Path) Midpoint() r2.Vec {
	if p.Style.Line == diagram.LineCurved {
		// Cubic Bezier at t = 0.5.
		sum := r2.Add(r2.Add(p.Start, p.End), r2.Scale(3, r2.Add(p.Control[0], p.Control[1])))
		return r2.Scale(1.0/8, sum)
	}
	pts := p.legs()
	var total float64
	for i := 1; i < len(pts); i++ {
		total += r2.Norm(r2.Sub(pts[i], pts[i-1]))
	}
	half := total / 2
	for i := 1; i < len(pts); i++ {
		seg := r2.Norm(r2.Sub(pts[i], pts[i-1]))
		if seg > 0 && half <= seg {
			return geometry.Lerp(pts[i-1], pts[i], half/seg)
		}
		half -= seg
	}
	return p.Start
}

func (p *Path) placeLabel(text string, opts Options) {
	if text == "" {
		return
	}
	mid := p.Midpoint()
	p.Label = &Label{
		Text:   text,
		Anchor: r2.Vec{X: mid.X, Y: mid.Y - opts.LabelLift},
		Width:  float64(utf8.RuneCountInString(text))*opts.CharWidth + 2*opts.PlatePadding,
		Height: opts.PlateHeight,
	}
}

// D returns the path in SVG path-data syntax.
func (p *Path) D() string {
	var b strings.Builder
	b.WriteString("M" + pt(p.Start))
	if p.Style.Line == diagram.LineCurved {
		b.WriteString(" C" + pt(p.Control[0]) + " " + pt(p.Control[1]) + " " + pt(p.End))
		return b.String()
	}
	for _, v := range p.legs()[1:] {
		b.WriteString(" L" + pt(v))
	}
	return b.String()
}

// Bounds returns a box enclosing the path, its control points and label.
func (p *Path) Bounds() geometry.Bounds {
	var b geometry.Bounds
	for _, v := range p.legs() {
		b = b.Add(v)
	}
	if p.Label != nil {
		b = b.AddRect(p.Label.Anchor.X-p.Label.Width/2, p.Label.Anchor.Y-p.Label.Height/2, p.Label.Width, p.Label.Height)
	}
	return b
}

func degrees(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

func pt(v r2.Vec) string {
	return num(v.X) + "," + num(v.Y)
}

func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
