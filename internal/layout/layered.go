// Package layout positions structural nodes in vertical layers, left to
// right by layer index. The computation is a pure function of the node list
// and the spacing constants.
package layout

import (
	"slices"

	"github.com/archsketch/engine/internal/dependency"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Options holds the layout constants.
type Options struct {
	Diameter     float64  `koanf:"diameter"`
	Gap          float64  `koanf:"gap"`
	LayerSpacing float64  `koanf:"layer_spacing"`
	CanvasHeight float64  `koanf:"canvas_height"` // working canvas, far larger than any viewport
	Margin       float64  `koanf:"margin"`
	LabelOffset  float64  `koanf:"label_offset"`
	LabelTypes   []string `koanf:"label_types"` // node types placed above a layer rather than in it
}

// DefaultOptions returns the layout constants used by the editor.
func DefaultOptions() Options {
	return Options{
		Diameter:     40,
		Gap:          20,
		LayerSpacing: 200,
		CanvasHeight: 4000,
		Margin:       80,
		LabelOffset:  50,
		LabelTypes:   []string{"layer-label"},
	}
}

// Layer is one column of the result.
type Layer struct {
	Index   int
	X       float64
	Members []string
	Height  float64
}

// Result holds computed centers for members and labels.
type Result struct {
	Positions map[string]r2.Vec
	Layers    []Layer
	Width     float64
	Height    float64
	Diameter  float64

	members map[string]bool
}

// Layered computes positions for nodes carrying a layer index. Nodes without
// one are left out of the result.
func Layered(nodes []diagram.Node, opts Options) Result {
	res := Result{
		Positions: make(map[string]r2.Vec),
		Diameter:  opts.Diameter,
		members:   make(map[string]bool),
	}

	byLayer := make(map[int][]string)
	var labels []diagram.Node
	for _, n := range nodes {
		if n.Layer == nil {
			continue
		}
		if slices.Contains(opts.LabelTypes, n.Type) {
			labels = append(labels, n)
			continue
		}
		byLayer[*n.Layer] = append(byLayer[*n.Layer], n.ID)
	}
	indices := make([]int, 0, len(byLayer))
	for idx := range byLayer {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	firstY := make(map[int]float64)
	xOf := make(map[int]float64)
	for rank, idx := range indices {
		ids := byLayer[idx]
		n := float64(len(ids))
		h := n*opts.Diameter + (n-1)*opts.Gap
		x := opts.Margin + opts.Diameter/2 + float64(rank)*opts.LayerSpacing
		top := (opts.CanvasHeight - h) / 2
		for i, id := range ids {
			y := top + opts.Diameter/2 + float64(i)*(opts.Diameter+opts.Gap)
			res.Positions[id] = r2.Vec{X: x, Y: y}
			res.members[id] = true
		}
		firstY[idx] = top + opts.Diameter/2
		xOf[idx] = x
		res.Layers = append(res.Layers, Layer{Index: idx, X: x, Members: ids, Height: h})
		res.Height = max(res.Height, h)
	}
	if len(indices) > 0 {
		res.Width = 2*opts.Margin + float64(len(indices)-1)*opts.LayerSpacing + opts.Diameter
	}

	for _, l := range labels {
		x, ok := xOf[*l.Layer]
		if !ok {
			continue
		}
		res.Positions[l.ID] = r2.Vec{X: x, Y: firstY[*l.Layer] - opts.LabelOffset}
	}
	return res
}

// Apply returns d with computed positions; members become circles of the
// layout diameter.
func (r Result) Apply(d diagram.Document) diagram.Document {
	out := d.Clone()
	for i := range out.Nodes {
		n := &out.Nodes[i]
		p, ok := r.Positions[n.ID]
		if !ok {
			continue
		}
		n.X, n.Y = p.X, p.Y
		if r.members[n.ID] {
			n.Width, n.Height = r.Diameter, r.Diameter
		}
	}
	return out
}

// Endpoints docks a link on the circles of its laid-out endpoints.
func (r Result) Endpoints(l diagram.Link) (src, dst geometry.Dock, ok bool) {
	if !r.members[l.Source] || !r.members[l.Target] {
		return src, dst, false
	}
	a, b := r.Positions[l.Source], r.Positions[l.Target]
	radius := r.Diameter / 2
	return geometry.DockCircle(a, radius, b), geometry.DockCircle(b, radius, a), true
}

// Bounds returns the box enclosing every positioned member and label.
func (r Result) Bounds() geometry.Bounds {
	var b geometry.Bounds
	half := r.Diameter / 2
	for _, p := range r.Positions {
		b = b.AddRect(p.X-half, p.Y-half, r.Diameter, r.Diameter)
	}
	return b
}

// AssignLayers gives every structural node without a layer the depth of its
// dependency tier among the other unlayered nodes, so sources land left of
// their targets. Nodes that already carry a layer are left alone and their
// links never count toward a cycle.
func AssignLayers(d diagram.Document, opts Options) (diagram.Document, error) {
	gr := dependency.NewGraph()
	open := make(map[string]bool)
	for _, n := range d.Nodes {
		if n.Layer == nil && !slices.Contains(opts.LabelTypes, n.Type) {
			gr.AddNode(n.ID)
			open[n.ID] = true
		}
	}
	if len(open) == 0 {
		return d, nil
	}
	for _, l := range d.Links {
		if open[l.Source] && open[l.Target] {
			gr.AddEdge(l.Source, l.Target)
		}
	}
	_, tiers, err := gr.Resolve()
	if err != nil {
		return d, err
	}
	out := d.Clone()
	for depth, tier := range tiers {
		for _, id := range tier {
			out.NodeByID(id).Layer = diagram.Int(depth)
		}
	}
	return out, nil
}
