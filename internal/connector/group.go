package connector

import "github.com/archsketch/engine/internal/diagram"

// Group places a link among the links sharing its node pair.
type Group struct {
	Index         int  // position among links on the same ordered pair
	Count         int  // number of links on the same ordered pair
	Reverse       bool // runs against the canonical (lower id -> higher id) direction
	Bidirectional bool // links exist in both directions between the pair
}

// Direction is +1 along the canonical direction and -1 against it.
func (g Group) Direction() float64 {
	if g.Reverse {
		return -1
	}
	return 1
}

type pair struct{ from, to string }

// Groups computes the Group of every link, keyed by link id. Index follows
// document order.
func Groups(links []diagram.Link) map[string]Group {
	ordered := make(map[pair][]string)
	for _, l := range links {
		k := pair{l.Source, l.Target}
		ordered[k] = append(ordered[k], l.ID)
	}
	out := make(map[string]Group, len(links))
	for k, ids := range ordered {
		reverse := k.from > k.to
		bidi := k.from != k.to && len(ordered[pair{k.to, k.from}]) > 0
		for i, id := range ids {
			out[id] = Group{Index: i, Count: len(ids), Reverse: reverse, Bidirectional: bidi}
		}
	}
	return out
}
