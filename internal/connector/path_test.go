package connector

import (
	"math"
	"testing"

	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

func pairDoc(links ...diagram.Link) diagram.Document {
	return diagram.Document{
		Nodes: []diagram.Node{
			{ID: "A", X: 0, Y: 0, Width: 100, Height: 60},
			{ID: "B", X: 300, Y: 0, Width: 100, Height: 60},
		},
		Links: links,
	}
}

func approx(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestRouteHorizontalEndpoints(t *testing.T) {
	d := pairDoc(diagram.Link{ID: "ab", Source: "A", Target: "B"})

	paths := RouteAll(d, DefaultOptions())
	if len(paths) != 1 {
		t.Fatalf("paths = %d, want 1", len(paths))
	}
	p := paths[0]
	if !approx(p.SourceDock.Point, r2.Vec{X: 50}) || p.SourceDock.Side != geometry.Right {
		t.Errorf("SourceDock = %+v, want (50,0) right", p.SourceDock)
	}
	if !approx(p.TargetDock.Point, r2.Vec{X: 250}) || p.TargetDock.Side != geometry.Left {
		t.Errorf("TargetDock = %+v, want (250,0) left", p.TargetDock)
	}
	if !approx(p.Start, r2.Vec{X: 52}) || !approx(p.End, r2.Vec{X: 240}) {
		t.Errorf("padded anchors = %v -> %v, want (52,0) -> (240,0)", p.Start, p.End)
	}

	opts := DefaultOptions()
	opts.SourcePadding, opts.TargetPadding = 0, 0
	p = RouteAll(d, opts)[0]
	if !approx(p.Start, r2.Vec{X: 50}) || !approx(p.End, r2.Vec{X: 250}) {
		t.Errorf("unpadded anchors = %v -> %v, want (50,0) -> (250,0)", p.Start, p.End)
	}
}

func TestRouteBidirectionalPair(t *testing.T) {
	d := pairDoc(
		diagram.Link{ID: "ab", Source: "A", Target: "B"},
		diagram.Link{ID: "ba", Source: "B", Target: "A"},
	)
	paths := RouteAll(d, DefaultOptions())
	ab, ba := paths[0], paths[1]

	pts := []r2.Vec{ab.Start, ab.End, ba.Start, ba.End}
	for i := range pts {
		if pts[i].Y == 0 {
			t.Errorf("anchor %d = %v lies on the direct line", i, pts[i])
		}
		for j := i + 1; j < len(pts); j++ {
			if approx(pts[i], pts[j]) {
				t.Errorf("anchors %d and %d coincide at %v", i, j, pts[i])
			}
		}
	}
	if ab.Offset != -ba.Offset || ab.Offset == 0 {
		t.Errorf("offsets = %v, %v; want mirrored and non-zero", ab.Offset, ba.Offset)
	}
	if math.Signbit(ab.Start.Y) == math.Signbit(ba.End.Y) {
		t.Errorf("A-side anchors %v and %v are on the same side", ab.Start, ba.End)
	}
}

func TestRouteParallelSymmetric(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5} {
		var links []diagram.Link
		for i := 0; i < n; i++ {
			links = append(links, diagram.Link{ID: string(rune('a' + i)), Source: "A", Target: "B"})
		}
		paths := RouteAll(pairDoc(links...), DefaultOptions())
		var sum float64
		seen := make(map[float64]bool)
		for _, p := range paths {
			sum += p.Offset
			if seen[p.Offset] {
				t.Errorf("n=%d: duplicate offset %v", n, p.Offset)
			}
			seen[p.Offset] = true
			if math.Abs(p.Start.Y-p.Offset) > 1e-9 {
				t.Errorf("n=%d: start %v not shifted by %v", n, p.Start, p.Offset)
			}
		}
		if math.Abs(sum) > 1e-9 {
			t.Errorf("n=%d: offsets sum to %v, want 0", n, sum)
		}
	}
}

func TestRouteStraightControlsOnChord(t *testing.T) {
	opts := DefaultOptions()
	opts.SourcePadding, opts.TargetPadding = 0, 0
	d := pairDoc(diagram.Link{ID: "ab", Source: "A", Target: "B", Label: "sql",
		Style: diagram.LinkStyle{Line: diagram.LineStraight}})
	p := RouteAll(d, opts)[0]

	if !approx(p.Control[0], r2.Vec{X: 100}) || !approx(p.Control[1], r2.Vec{X: 200}) {
		t.Errorf("controls = %v, want (100,0) and (200,0)", p.Control)
	}
	if p.ArrowAngle != 0 {
		t.Errorf("ArrowAngle = %v, want 0", p.ArrowAngle)
	}
	if got, want := p.D(), "M50,0 L250,0"; got != want {
		t.Errorf("D() = %q, want %q", got, want)
	}
	if p.Label == nil {
		t.Fatal("label missing")
	}
	if !approx(p.Label.Anchor, r2.Vec{X: 150, Y: -opts.LabelLift}) {
		t.Errorf("label anchor = %v", p.Label.Anchor)
	}
	if want := 3*opts.CharWidth + 2*opts.PlatePadding; p.Label.Width != want {
		t.Errorf("plate width = %v, want %v", p.Label.Width, want)
	}
}

func TestRouteCurvedControls(t *testing.T) {
	opts := DefaultOptions()
	opts.SourcePadding, opts.TargetPadding = 0, 0
	p := RouteAll(pairDoc(diagram.Link{ID: "ab", Source: "A", Target: "B"}), opts)[0]

	// chord (50,0)->(250,0), bow = 0.2 * 200 along +y
	if !approx(p.Control[0], r2.Vec{X: 100, Y: 40}) || !approx(p.Control[1], r2.Vec{X: 200, Y: 40}) {
		t.Errorf("controls = %v", p.Control)
	}
	want := math.Atan2(-40, 50) * 180 / math.Pi
	if math.Abs(p.ArrowAngle-want) > 1e-9 {
		t.Errorf("ArrowAngle = %v, want %v", p.ArrowAngle, want)
	}
	if !approx(p.Midpoint(), r2.Vec{X: 150, Y: 30}) {
		t.Errorf("Midpoint = %v, want (150,30)", p.Midpoint())
	}
}

func TestRouteReverseAndCustomAngle(t *testing.T) {
	d := pairDoc(
		diagram.Link{ID: "ba", Source: "B", Target: "A", Style: diagram.LinkStyle{Line: diagram.LineStraight}},
		diagram.Link{ID: "ab", Source: "A", Target: "B", Style: diagram.LinkStyle{Line: diagram.LineStraight, Angle: diagram.Float(45)}},
	)
	paths := RouteAll(d, DefaultOptions())
	if math.Abs(math.Abs(paths[0].ArrowAngle)-180) > 1e-9 {
		t.Errorf("reverse ArrowAngle = %v, want 180", paths[0].ArrowAngle)
	}
	if paths[1].ArrowAngle != 45 {
		t.Errorf("custom ArrowAngle = %v, want 45", paths[1].ArrowAngle)
	}
}

func TestRouteElbowAndOrthogonal(t *testing.T) {
	d := diagram.Document{
		Nodes: []diagram.Node{
			{ID: "A", X: 0, Y: 0, Width: 20, Height: 20},
			{ID: "B", X: 200, Y: 100, Width: 20, Height: 20},
		},
		Links: []diagram.Link{
			{ID: "e", Source: "A", Target: "B", Style: diagram.LinkStyle{Line: diagram.LineElbow}},
		},
	}
	opts := DefaultOptions()
	p := RouteAll(d, opts)[0]
	if len(p.Corners) != 1 || p.Corners[0].X != p.End.X || p.Corners[0].Y != p.Start.Y {
		t.Errorf("elbow corners = %v", p.Corners)
	}
	if math.Abs(p.ArrowAngle-90) > 1e-9 {
		t.Errorf("elbow ArrowAngle = %v, want 90", p.ArrowAngle)
	}

	d.Links[0].Style.Line = diagram.LineOrthogonal
	p = RouteAll(d, opts)[0]
	if len(p.Corners) != 2 || p.Corners[0].X != p.Corners[1].X {
		t.Errorf("orthogonal corners = %v", p.Corners)
	}
	if len(p.Polyline()) != 4 {
		t.Errorf("Polyline = %v", p.Polyline())
	}
}

func TestRouteCoincidentNodes(t *testing.T) {
	d := diagram.Document{
		Nodes: []diagram.Node{
			{ID: "A", X: 10, Y: 10, Width: 100, Height: 60},
			{ID: "B", X: 10, Y: 10, Width: 100, Height: 60},
		},
		Links: []diagram.Link{{ID: "ab", Source: "A", Target: "B"}},
	}
	p := RouteAll(d, DefaultOptions())[0]
	if p.SourceDock.Side != geometry.Right || p.TargetDock.Side != geometry.Left {
		t.Errorf("sides = %v, %v; want right, left", p.SourceDock.Side, p.TargetDock.Side)
	}
	for _, v := range []float64{p.Start.X, p.Start.Y, p.End.X, p.End.Y, p.ArrowAngle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite geometry: %+v", p)
		}
	}
}

func TestRouteSelfLoop(t *testing.T) {
	d := pairDoc(diagram.Link{ID: "aa", Source: "A", Target: "A"})
	p := RouteAll(d, DefaultOptions())[0]
	if approx(p.Start, p.End) {
		t.Errorf("loop start and end coincide at %v", p.Start)
	}
	if p.Control[0].Y >= p.Start.Y {
		t.Errorf("loop should rise above the node, control %v", p.Control[0])
	}
}

func TestGroups(t *testing.T) {
	g := Groups([]diagram.Link{
		{ID: "1", Source: "b", Target: "a"},
		{ID: "2", Source: "a", Target: "b"},
		{ID: "3", Source: "b", Target: "a"},
		{ID: "4", Source: "a", Target: "c"},
	})
	if got := g["3"]; got.Index != 1 || got.Count != 2 || !got.Reverse || !got.Bidirectional {
		t.Errorf("group 3 = %+v", got)
	}
	if got := g["2"]; got.Reverse || !got.Bidirectional || got.Count != 1 {
		t.Errorf("group 2 = %+v", got)
	}
	if got := g["4"]; got.Bidirectional {
		t.Errorf("group 4 = %+v", got)
	}
}
