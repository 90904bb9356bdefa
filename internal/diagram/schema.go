package diagram

import (
	"github.com/archsketch/engine/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Document is the root value of a diagram. It is treated as immutable: every
// mutation method returns a new Document and never writes through slices or
// maps shared with the receiver.
type Document struct {
	Title      string      `json:"title"`
	Nodes      []Node      `json:"nodes"`
	Links      []Link      `json:"links"`
	Containers []Container `json:"containers,omitempty"`
}

// Node is a labeled shape. X and Y are the CENTER of the shape.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Label      string         `json:"label"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Layer      *int           `json:"layer,omitempty"`
	Style      NodeStyle      `json:"style,omitzero"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Link is a directed connector between two nodes.
type Link struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Label  string    `json:"label,omitempty"`
	Style  LinkStyle `json:"style,omitzero"`
}

// ContainerType is the semantic subtype of a container.
type ContainerType string

const (
	ContainerTier   ContainerType = "tier"
	ContainerVNet   ContainerType = "vnet"
	ContainerRegion ContainerType = "region"
	ContainerAZ     ContainerType = "az"
	ContainerSubnet ContainerType = "subnet"
)

// Known reports whether t is one of the defined subtypes.
func (t ContainerType) Known() bool {
	switch t {
	case ContainerTier, ContainerVNet, ContainerRegion, ContainerAZ, ContainerSubnet:
		return true
	}
	return false
}

// Container is a labeled bounding region. X and Y are the TOP-LEFT corner.
// Children are weak references: removing a container never removes them.
type Container struct {
	ID         string         `json:"id"`
	Type       ContainerType  `json:"type"`
	Label      string         `json:"label"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Children   []string       `json:"children"`
	Style      ContainerStyle `json:"style,omitzero"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Center returns the node center as a vector.
func (n *Node) Center() r2.Vec { return r2.Vec{X: n.X, Y: n.Y} }

// Rect returns the node's shape for docking and hit-testing.
func (n *Node) Rect() geometry.Rect { return geometry.RectAt(n.X, n.Y, n.Width, n.Height) }

// Bounds returns the node's bounding box.
func (n *Node) Bounds() geometry.Bounds {
	return geometry.Bounds{}.AddRect(n.X-n.Width/2, n.Y-n.Height/2, n.Width, n.Height)
}

// Bounds returns the container's bounding box.
func (c *Container) Bounds() geometry.Bounds {
	return geometry.Bounds{}.AddRect(c.X, c.Y, c.Width, c.Height)
}

// HasChild reports whether id is listed as a child.
func (c *Container) HasChild(id string) bool {
	for _, ch := range c.Children {
		if ch == id {
			return true
		}
	}
	return false
}

// NodeByID returns the node with the given id, or nil. The result points into
// the document and must not be modified.
func (d *Document) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// LinkByID returns the link with the given id, or nil.
func (d *Document) LinkByID(id string) *Link {
	for i := range d.Links {
		if d.Links[i].ID == id {
			return &d.Links[i]
		}
	}
	return nil
}

// ContainerByID returns the container with the given id, or nil.
func (d *Document) ContainerByID(id string) *Container {
	for i := range d.Containers {
		if d.Containers[i].ID == id {
			return &d.Containers[i]
		}
	}
	return nil
}

// LinksWithTarget returns links whose target is the given node id.
func (d *Document) LinksWithTarget(targetID string) []Link {
	var out []Link
	for _, l := range d.Links {
		if l.Target == targetID {
			out = append(out, l)
		}
	}
	return out
}

// LinksWithSource returns links whose source is the given node id.
func (d *Document) LinksWithSource(sourceID string) []Link {
	var out []Link
	for _, l := range d.Links {
		if l.Source == sourceID {
			out = append(out, l)
		}
	}
	return out
}

// ContainersOf returns the containers listing nodeID as a child.
func (d *Document) ContainersOf(nodeID string) []*Container {
	var out []*Container
	for i := range d.Containers {
		if d.Containers[i].HasChild(nodeID) {
			out = append(out, &d.Containers[i])
		}
	}
	return out
}

// Has reports whether any node, link or container uses id.
func (d *Document) Has(id string) bool {
	return d.NodeByID(id) != nil || d.LinkByID(id) != nil || d.ContainerByID(id) != nil
}

// NodeAt returns the topmost node containing p. Later nodes draw on top.
func (d *Document) NodeAt(p r2.Vec) (string, bool) {
	for i := len(d.Nodes) - 1; i >= 0; i-- {
		if d.Nodes[i].Rect().Contains(p) {
			return d.Nodes[i].ID, true
		}
	}
	return "", false
}

// ContainerAt returns the topmost container containing p.
func (d *Document) ContainerAt(p r2.Vec) (string, bool) {
	for i := len(d.Containers) - 1; i >= 0; i-- {
		if d.Containers[i].Bounds().Contains(p) {
			return d.Containers[i].ID, true
		}
	}
	return "", false
}

// Bounds returns the box enclosing every node and container.
func (d *Document) Bounds() geometry.Bounds {
	var b geometry.Bounds
	for i := range d.Nodes {
		b = b.Union(d.Nodes[i].Bounds())
	}
	for i := range d.Containers {
		b = b.Union(d.Containers[i].Bounds())
	}
	return b
}

// GetStr gets a string property; empty if missing or not a string.
func GetStr(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetBool gets a bool property.
func GetBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

// GetInt gets an int property (from float64 JSON number).
func GetInt(m map[string]any, key string) int {
	if m == nil {
		return 0
	}
	switch n := m[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// GetStrMap returns a map of string -> string (e.g. tags).
func GetStrMap(m map[string]any, key string) map[string]string {
	if m == nil {
		return nil
	}
	raw, _ := m[key].(map[string]any)
	if raw == nil {
		return nil
	}
	out := make(map[string]string)
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
