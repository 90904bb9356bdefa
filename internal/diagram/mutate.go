package diagram

import (
	"maps"
	"slices"

	"github.com/archsketch/engine/internal/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

// Clone returns a deep copy of d. Style pointers are shared; they are never
// written through.
func (d Document) Clone() Document {
	out := Document{
		Title:      d.Title,
		Nodes:      make([]Node, len(d.Nodes)),
		Links:      slices.Clone(d.Links),
		Containers: make([]Container, len(d.Containers)),
	}
	if out.Links == nil {
		out.Links = []Link{}
	}
	for i, n := range d.Nodes {
		n.Properties = maps.Clone(n.Properties)
		out.Nodes[i] = n
	}
	for i, c := range d.Containers {
		c.Children = slices.Clone(c.Children)
		c.Properties = maps.Clone(c.Properties)
		out.Containers[i] = c
	}
	return out
}

// normalize is the integrity pass run after every structural mutation:
// links with a missing endpoint are dropped and container children are
// pruned to existing nodes without duplicates.
func (d Document) normalize() Document {
	nodes := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		nodes[n.ID] = true
	}
	d.Links = slices.DeleteFunc(d.Links, func(l Link) bool {
		return !nodes[l.Source] || !nodes[l.Target]
	})
	for i := range d.Containers {
		seen := make(map[string]bool)
		d.Containers[i].Children = slices.DeleteFunc(d.Containers[i].Children, func(id string) bool {
			drop := !nodes[id] || seen[id]
			seen[id] = true
			return drop
		})
		if d.Containers[i].Children == nil {
			d.Containers[i].Children = []string{}
		}
	}
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Links == nil {
		d.Links = []Link{}
	}
	if d.Containers == nil {
		d.Containers = []Container{}
	}
	return d
}

// Normalize returns a copy of d after the integrity pass.
func (d Document) Normalize() Document { return d.Clone().normalize() }

// AddNode appends n. The id must be unused and the size positive.
func (d Document) AddNode(n Node) (Document, error) {
	if n.ID == "" || d.Has(n.ID) {
		return d, errors.New(errors.ErrCodeInvalidInput, "node id %q is empty or already used", n.ID)
	}
	if n.Width <= 0 || n.Height <= 0 {
		return d, errors.New(errors.ErrCodeInvalidInput, "node %s: size must be positive", n.ID)
	}
	out := d.Clone()
	n.Properties = maps.Clone(n.Properties)
	out.Nodes = append(out.Nodes, n)
	return out.normalize(), nil
}

// AddLink appends l. Both endpoints must name existing nodes.
func (d Document) AddLink(l Link) (Document, error) {
	if l.ID == "" || d.Has(l.ID) {
		return d, errors.New(errors.ErrCodeInvalidInput, "link id %q is empty or already used", l.ID)
	}
	if d.NodeByID(l.Source) == nil {
		return d, errors.New(errors.ErrCodeInvalidReference, "link %s: source node %q not found", l.ID, l.Source)
	}
	if d.NodeByID(l.Target) == nil {
		return d, errors.New(errors.ErrCodeInvalidReference, "link %s: target node %q not found", l.ID, l.Target)
	}
	out := d.Clone()
	out.Links = append(out.Links, l)
	return out.normalize(), nil
}

// AddContainer appends c. Unknown children are dropped by the integrity pass.
func (d Document) AddContainer(c Container) (Document, error) {
	if c.ID == "" || d.Has(c.ID) {
		return d, errors.New(errors.ErrCodeInvalidInput, "container id %q is empty or already used", c.ID)
	}
	if !c.Type.Known() {
		return d, errors.New(errors.ErrCodeInvalidInput, "container %s: unknown type %q", c.ID, c.Type)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return d, errors.New(errors.ErrCodeInvalidInput, "container %s: size must be positive", c.ID)
	}
	out := d.Clone()
	c.Children = slices.Clone(c.Children)
	c.Properties = maps.Clone(c.Properties)
	out.Containers = append(out.Containers, c)
	return out.normalize(), nil
}

// Remove deletes every node, link and container named in ids. Links touching
// a removed node go with it; a removed container's children stay.
func (d Document) Remove(ids ...string) Document {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := d.Clone()
	out.Nodes = slices.DeleteFunc(out.Nodes, func(n Node) bool { return drop[n.ID] })
	out.Links = slices.DeleteFunc(out.Links, func(l Link) bool { return drop[l.ID] })
	out.Containers = slices.DeleteFunc(out.Containers, func(c Container) bool { return drop[c.ID] })
	return out.normalize()
}

// Translate moves the named nodes and containers by delta. Children of a
// moved container move along with it, once.
func (d Document) Translate(ids []string, delta r2.Vec) Document {
	moveNode := make(map[string]bool)
	moveContainer := make(map[string]bool)
	for _, id := range ids {
		if d.NodeByID(id) != nil {
			moveNode[id] = true
		}
		if c := d.ContainerByID(id); c != nil {
			moveContainer[id] = true
			for _, ch := range c.Children {
				moveNode[ch] = true
			}
		}
	}
	out := d.Clone()
	for i := range out.Nodes {
		if moveNode[out.Nodes[i].ID] {
			out.Nodes[i].X += delta.X
			out.Nodes[i].Y += delta.Y
		}
	}
	for i := range out.Containers {
		if moveContainer[out.Containers[i].ID] {
			out.Containers[i].X += delta.X
			out.Containers[i].Y += delta.Y
		}
	}
	return out
}

// ResizeNode sets a node's size, keeping its center.
func (d Document) ResizeNode(id string, w, h float64) (Document, error) {
	if w <= 0 || h <= 0 {
		return d, errors.New(errors.ErrCodeInvalidInput, "node %s: size must be positive", id)
	}
	return d.updateNode(id, func(n *Node) {
		n.Width, n.Height = w, h
	})
}

// SetNodeBounds moves and resizes a node in one step.
func (d Document) SetNodeBounds(id string, cx, cy, w, h float64) (Document, error) {
	if w <= 0 || h <= 0 {
		return d, errors.New(errors.ErrCodeInvalidInput, "node %s: size must be positive", id)
	}
	return d.updateNode(id, func(n *Node) {
		n.X, n.Y, n.Width, n.Height = cx, cy, w, h
	})
}

// SetContainerBounds sets a container's rectangle.
func (d Document) SetContainerBounds(id string, x, y, w, h float64) (Document, error) {
	if w <= 0 || h <= 0 {
		return d, errors.New(errors.ErrCodeInvalidInput, "container %s: size must be positive", id)
	}
	return d.updateContainer(id, func(c *Container) {
		c.X, c.Y, c.Width, c.Height = x, y, w, h
	})
}

// SetNodeStyle replaces a node's style record.
func (d Document) SetNodeStyle(id string, s NodeStyle) (Document, error) {
	if !knownBorder(s.Border) {
		return d, errors.New(errors.ErrCodeInvalidInput, "unknown border style %q", s.Border)
	}
	if f, v, bad := badColor(s.colors()...); bad {
		return d, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", f, v)
	}
	return d.updateNode(id, func(n *Node) { n.Style = s })
}

// SetLinkStyle replaces a link's style record.
func (d Document) SetLinkStyle(id string, s LinkStyle) (Document, error) {
	if !knownArrowhead(s.Arrowhead) || !knownLine(s.Line) {
		return d, errors.New(errors.ErrCodeInvalidInput, "unknown arrowhead %q or line style %q", s.Arrowhead, s.Line)
	}
	if f, v, bad := badColor(s.colors()...); bad {
		return d, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", f, v)
	}
	i := slices.IndexFunc(d.Links, func(l Link) bool { return l.ID == id })
	if i < 0 {
		return d, errors.New(errors.ErrCodeNotFound, "link %q not found", id)
	}
	out := d.Clone()
	out.Links[i].Style = s
	return out, nil
}

// SetContainerStyle replaces a container's style record.
func (d Document) SetContainerStyle(id string, s ContainerStyle) (Document, error) {
	if !knownBorder(s.Border) {
		return d, errors.New(errors.ErrCodeInvalidInput, "unknown border style %q", s.Border)
	}
	if f, v, bad := badColor(s.colors()...); bad {
		return d, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", f, v)
	}
	return d.updateContainer(id, func(c *Container) { c.Style = s })
}

// SetLabel sets the label of whichever element carries id.
func (d Document) SetLabel(id, label string) (Document, error) {
	out := d.Clone()
	if i := slices.IndexFunc(out.Nodes, func(n Node) bool { return n.ID == id }); i >= 0 {
		out.Nodes[i].Label = label
		return out, nil
	}
	if i := slices.IndexFunc(out.Links, func(l Link) bool { return l.ID == id }); i >= 0 {
		out.Links[i].Label = label
		return out, nil
	}
	if i := slices.IndexFunc(out.Containers, func(c Container) bool { return c.ID == id }); i >= 0 {
		out.Containers[i].Label = label
		return out, nil
	}
	return d, errors.New(errors.ErrCodeNotFound, "element %q not found", id)
}

// SetTitle returns d with a new title.
func (d Document) SetTitle(title string) Document {
	out := d.Clone()
	out.Title = title
	return out
}

// SetLayer sets or clears a node's layer index.
func (d Document) SetLayer(id string, layer *int) (Document, error) {
	if layer != nil && *layer < 0 {
		return d, errors.New(errors.ErrCodeInvalidInput, "node %s: layer must not be negative", id)
	}
	return d.updateNode(id, func(n *Node) {
		if layer == nil {
			n.Layer = nil
			return
		}
		v := *layer
		n.Layer = &v
	})
}

// SetChildren replaces a container's child list.
func (d Document) SetChildren(id string, children []string) (Document, error) {
	out, err := d.updateContainer(id, func(c *Container) { c.Children = slices.Clone(children) })
	if err != nil {
		return d, err
	}
	return out.normalize(), nil
}

// Duplicate copies the named nodes and containers with fresh ids, offset by
// delta. Links are not copied. A copied container keeps only children that
// were copied with it, remapped to their copies. The new ids are returned in
// input order.
func (d Document) Duplicate(ids []string, delta r2.Vec, src IDSource) (Document, []string) {
	taken := make(map[string]bool)
	remap := make(map[string]string)
	out := d.Clone()
	var created []string
	for _, id := range ids {
		if _, done := remap[id]; done {
			continue
		}
		n := d.NodeByID(id)
		if n == nil {
			continue
		}
		cp := *n
		cp.ID = issue(src, NodePrefix, &d, taken)
		cp.X += delta.X
		cp.Y += delta.Y
		cp.Properties = maps.Clone(n.Properties)
		out.Nodes = append(out.Nodes, cp)
		remap[id] = cp.ID
		created = append(created, cp.ID)
	}
	for _, id := range ids {
		if _, done := remap[id]; done {
			continue
		}
		c := d.ContainerByID(id)
		if c == nil {
			continue
		}
		cp := *c
		cp.ID = issue(src, ContainerPrefix, &d, taken)
		cp.X += delta.X
		cp.Y += delta.Y
		cp.Properties = maps.Clone(c.Properties)
		cp.Children = []string{}
		for _, ch := range c.Children {
			if nid, ok := remap[ch]; ok {
				cp.Children = append(cp.Children, nid)
			}
		}
		out.Containers = append(out.Containers, cp)
		remap[id] = cp.ID
		created = append(created, cp.ID)
	}
	return out.normalize(), created
}

func (d Document) updateNode(id string, fn func(*Node)) (Document, error) {
	i := slices.IndexFunc(d.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return d, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	out := d.Clone()
	fn(&out.Nodes[i])
	return out, nil
}

func (d Document) updateContainer(id string, fn func(*Container)) (Document, error) {
	i := slices.IndexFunc(d.Containers, func(c Container) bool { return c.ID == id })
	if i < 0 {
		return d, errors.New(errors.ErrCodeNotFound, "container %q not found", id)
	}
	out := d.Clone()
	fn(&out.Containers[i])
	return out, nil
}
