// Package dependency orders diagram elements so that every link source comes
// before its target, grouped into tiers of equal depth.
package dependency

import (
	"slices"
	"strings"

	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is a directed graph over element ids. Insertion order is kept so
// results are deterministic.
type Graph struct {
	g   *simple.DirectedGraph
	ids map[string]int64
	ord []string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{g: simple.NewDirectedGraph(), ids: make(map[string]int64)}
}

// AddNode adds id if it is not already present.
func (gr *Graph) AddNode(id string) {
	if _, ok := gr.ids[id]; ok {
		return
	}
	n := int64(len(gr.ord))
	gr.ids[id] = n
	gr.ord = append(gr.ord, id)
	gr.g.AddNode(simple.Node(n))
}

// AddEdge records that target depends on source. Edges touching unknown ids
// and self-edges are ignored.
func (gr *Graph) AddEdge(source, target string) {
	s, ok1 := gr.ids[source]
	t, ok2 := gr.ids[target]
	if !ok1 || !ok2 || s == t || gr.g.HasEdgeFromTo(s, t) {
		return
	}
	gr.g.SetEdge(gr.g.NewEdge(gr.g.Node(s), gr.g.Node(t)))
}

// Resolve returns:
// - ordered: ids in topological order (dependencies first)
// - tiers: ids grouped by depth (tier 0 = no deps, tier 1 = depend only on tier 0, etc.)
//
// Within a tier ids keep insertion order.
func (gr *Graph) Resolve() (ordered []string, tiers [][]string, err error) {
	if len(gr.ord) == 0 {
		return nil, nil, nil
	}

	inDegree := make([]int, len(gr.ord))
	for i := range gr.ord {
		inDegree[i] = gr.g.To(int64(i)).Len()
	}

	var queue []int64
	for i, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, int64(i))
		}
	}

	ordered = make([]string, 0, len(gr.ord))
	for len(queue) > 0 {
		tier := make([]string, len(queue))
		for i, u := range queue {
			tier[i] = gr.ord[u]
		}
		tiers = append(tiers, tier)
		var next []int64
		for _, u := range queue {
			ordered = append(ordered, gr.ord[u])
			succ := gr.g.From(u)
			for succ.Next() {
				v := succ.Node().ID()
				inDegree[v]--
				if inDegree[v] == 0 {
					next = append(next, v)
				}
			}
		}
		slices.Sort(next)
		queue = next
	}

	if len(ordered) != len(gr.ord) {
		return nil, nil, errors.New(errors.ErrCodeCycle, "dependency cycle detected among: %s", strings.Join(gr.cycleMembers(), ", "))
	}
	return ordered, tiers, nil
}

// cycleMembers lists ids that sit on a cycle, in insertion order.
func (gr *Graph) cycleMembers() []string {
	var ids []int64
	for _, scc := range topo.TarjanSCC(gr.g) {
		if len(scc) < 2 {
			continue
		}
		for _, n := range scc {
			ids = append(ids, n.ID())
		}
	}
	slices.Sort(ids)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = gr.ord[id]
	}
	return out
}

// Resolve orders the document's nodes by its links.
func Resolve(d *diagram.Document) (ordered []string, tiers [][]string, err error) {
	if d == nil || len(d.Nodes) == 0 {
		return nil, nil, nil
	}
	gr := NewGraph()
	for i := range d.Nodes {
		gr.AddNode(d.Nodes[i].ID)
	}
	for _, l := range d.Links {
		gr.AddEdge(l.Source, l.Target)
	}
	return gr.Resolve()
}
