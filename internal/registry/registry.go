package registry

import (
	"slices"
	"sync"

	"github.com/archsketch/engine/internal/result"
)

// RefMap maps element IDs to Terraform resource addresses (e.g. "n-3" -> "aws_vpc.n_3").
type RefMap map[string]string

// Resource is a diagram element bound for Terraform: a node, or a vnet or
// subnet container.
type Resource struct {
	ID         string
	Kind       string // node type or container subtype
	Label      string
	Properties map[string]any

	// Parent is the enclosing network element: the vnet around a subnet, or
	// the subnet holding a node. Empty when there is none.
	Parent string
	// Network is the vnet enclosing a node, directly or through its subnet.
	Network string
	// Zone is the availability zone inferred from an enclosing az container.
	Zone string
	// DependsOn lists the sources of links into the element.
	DependsOn []string
	// SecurityGroups lists firewall nodes linked into the element.
	SecurityGroups []string
}

// ResourceHandler is the interface each resource kind handler must implement.
type ResourceHandler interface {
	Kind() string
	TerraformType() string
	Validate(res *Resource) ([]result.Error, []result.Warning)
	GenerateHCL(res *Resource, refs RefMap) ([]byte, error)
}

// Default is the global handler registry.
var Default = New()

// Registry holds resource kind handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ResourceHandler
}

// New returns a new empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]ResourceHandler)}
}

// Register adds a handler under its kind.
func (r *Registry) Register(h ResourceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Kind()] = h
}

// Get returns the handler for the kind, or nil and false.
func (r *Registry) Get(kind string) (ResourceHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}

// ListSupportedTypes returns all registered kinds, sorted.
func (r *Registry) ListSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
