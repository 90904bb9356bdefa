// Package infra exports cloud-architecture diagrams as Terraform
// configuration. Nodes map to resources by type and vnet and subnet
// containers map to networks; nesting on the canvas supplies the parent
// references and links supply ordering.
package infra

import (
	"log/slog"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/archsketch/engine/internal/dependency"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"github.com/archsketch/engine/internal/geometry"
	"github.com/archsketch/engine/internal/handler"
	"github.com/archsketch/engine/internal/logger"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
)

// Exporter turns diagrams into Terraform files.
type Exporter struct {
	opts Options
	reg  *registry.Registry
	log  *slog.Logger
}

// New returns a new exporter with the given options.
func New(opts Options) *Exporter {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	if opts.MaxParallel > 32 {
		opts.MaxParallel = 32
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Exporter{
		opts: opts,
		reg:  registry.Default,
		log:  log,
	}
}

// Export validates the diagram, resolves dependencies, and generates Terraform files.
// Problems with the diagram are reported in the result; the error is only
// set for a nil document.
func (e *Exporter) Export(d *diagram.Document) (*result.ExportResult, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no document")
	}
	out := &result.ExportResult{Success: true, Resources: make(map[string]string)}

	// 1. Document-level validation
	for _, ve := range diagram.Validate(d) {
		out.Fail(result.Error{
			Type: ve.Type, Severity: ve.Severity, ElementID: ve.ElementID,
			Message: ve.Message, Suggestion: ve.Suggestion,
		})
	}
	if !out.Success {
		return out, nil
	}

	// 2. Collect resources and resolve dependency tiers
	resources := e.collect(d, out)
	byID := make(map[string]*registry.Resource, len(resources))
	gr := dependency.NewGraph()
	for _, r := range resources {
		byID[r.ID] = r
		gr.AddNode(r.ID)
	}
	for _, r := range resources {
		for _, src := range upstream(r) {
			gr.AddEdge(src, r.ID)
		}
	}
	_, tiers, err := gr.Resolve()
	if err != nil {
		out.Fail(result.Error{
			Type: "dependency_error", Message: errors.UserMessage(err),
			Suggestion: "Remove circular links between resources",
		})
		return out, nil
	}

	// 3. Generate tier by tier; within each tier run handlers in parallel
	refs := make(registry.RefMap)
	var blocks [][]byte
	for _, tier := range tiers {
		results := e.generateTier(tier, byID, refs)
		for _, id := range tier {
			res := results[id]
			for _, ve := range res.errs {
				out.Fail(ve)
			}
			for _, w := range res.warns {
				out.Warn(w)
			}
			if len(res.errs) == 0 && len(res.hcl) > 0 {
				blocks = append(blocks, res.hcl)
				refs[id] = res.addr
				out.Resources[id] = res.addr
			}
		}
	}
	if !out.Success {
		return out, nil
	}

	// 4. Build Terraform files
	region := e.region(d)
	addrs := make([]string, 0, len(out.Resources))
	for _, a := range out.Resources {
		addrs = append(addrs, a)
	}
	b := terraform.NewBuilder(e.opts.EmitTfvars)
	b.SetVersions(terraform.VersionsTF())
	b.SetVariables(terraform.VariablesTF(region))
	b.SetOutputs(terraform.OutputsTF(addrs))
	for _, block := range blocks {
		b.AddResource(block)
	}
	if e.opts.EmitTfvars {
		b.SetTfvars(terraform.Tfvars(region))
	}
	out.TerraformFiles = b.Build()
	e.log.Info("terraform export", "resources", len(blocks), "tiers", len(tiers), "warnings", len(out.Warnings))
	return out, nil
}

type generated struct {
	addr  string
	hcl   []byte
	errs  []result.Error
	warns []result.Warning
}

// generateTier runs the handlers of one tier, at most MaxParallel at a time.
// refs is only read here.
func (e *Exporter) generateTier(tier []string, byID map[string]*registry.Resource, refs registry.RefMap) map[string]generated {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, e.opts.MaxParallel)
	)
	results := make(map[string]generated, len(tier))
	for _, id := range tier {
		r := byID[id]
		h, ok := e.reg.Get(r.Kind)
		if !ok {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(r *registry.Resource, h registry.ResourceHandler) {
			defer wg.Done()
			defer func() { <-sem }()
			errs, warns := h.Validate(r)
			g := generated{errs: errs, warns: warns, addr: h.TerraformType() + "." + terraform.SanitizeName(r.ID)}
			if len(errs) == 0 {
				hcl, err := h.GenerateHCL(r, refs)
				if err != nil {
					g.errs = append(g.errs, result.Error{
						Type: "generation_error", Severity: "error", ElementID: r.ID,
						Message: err.Error(),
					})
				}
				g.hcl = hcl
			}
			mu.Lock()
			results[r.ID] = g
			mu.Unlock()
		}(r, h)
	}
	wg.Wait()
	return results
}

// collect builds the resources of d in document order: containers first,
// then nodes. Nodes of unsupported types are skipped with a warning.
func (e *Exporter) collect(d *diagram.Document, out *result.ExportResult) []*registry.Resource {
	var resources []*registry.Resource
	kindOf := make(map[string]string)

	for i := range d.Containers {
		c := &d.Containers[i]
		if c.Type != diagram.ContainerVNet && c.Type != diagram.ContainerSubnet {
			continue
		}
		r := &registry.Resource{ID: c.ID, Kind: string(c.Type), Label: c.Label, Properties: c.Properties}
		if c.Type == diagram.ContainerSubnet {
			box := c.Bounds()
			r.Parent = smallest(d, diagram.ContainerVNet, func(o geometry.Bounds) bool { return o.ContainsBounds(box) })
			r.Network = r.Parent
			if az := smallest(d, diagram.ContainerAZ, func(o geometry.Bounds) bool { return o.ContainsBounds(box) }); az != "" {
				r.Zone = zoneName(d.ContainerByID(az))
			}
		}
		resources = append(resources, r)
		kindOf[r.ID] = r.Kind
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		if _, ok := e.reg.Get(n.Type); !ok {
			out.Warn(result.Warning{
				Type: "unsupported_type", ElementID: n.ID,
				Message:    "node type " + strconv.Quote(n.Type) + " has no Terraform mapping and was skipped",
				Suggestion: "Use one of: " + strings.Join(e.reg.ListSupportedTypes(), ", "),
			})
			continue
		}
		r := &registry.Resource{ID: n.ID, Kind: n.Type, Label: n.Label, Properties: n.Properties}
		for _, c := range d.ContainersOf(n.ID) {
			if c.Type == diagram.ContainerSubnet {
				r.Parent = c.ID
				break
			}
		}
		center := n.Center()
		if r.Parent == "" {
			r.Parent = smallest(d, diagram.ContainerSubnet, func(o geometry.Bounds) bool { return o.Contains(center) })
		}
		if r.Parent != "" {
			box := d.ContainerByID(r.Parent).Bounds()
			r.Network = smallest(d, diagram.ContainerVNet, func(o geometry.Bounds) bool { return o.ContainsBounds(box) })
		} else {
			r.Network = smallest(d, diagram.ContainerVNet, func(o geometry.Bounds) bool { return o.Contains(center) })
		}
		resources = append(resources, r)
		kindOf[r.ID] = r.Kind
	}

	for _, r := range resources {
		for _, l := range d.LinksWithTarget(r.ID) {
			kind, ok := kindOf[l.Source]
			if !ok || l.Source == r.ID {
				continue
			}
			if kind == handler.KindFirewall && r.Kind != handler.KindFirewall {
				r.SecurityGroups = appendUnique(r.SecurityGroups, l.Source)
			} else {
				r.DependsOn = appendUnique(r.DependsOn, l.Source)
			}
		}
	}
	return resources
}

// upstream lists every resource r must be generated after.
func upstream(r *registry.Resource) []string {
	var ids []string
	for _, id := range []string{r.Parent, r.Network} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	ids = append(ids, r.SecurityGroups...)
	return append(ids, r.DependsOn...)
}

// smallest returns the id of the smallest container of type t whose bounds
// satisfy match.
func smallest(d *diagram.Document, t diagram.ContainerType, match func(geometry.Bounds) bool) string {
	best, bestArea := "", 0.0
	for i := range d.Containers {
		c := &d.Containers[i]
		if c.Type != t || !match(c.Bounds()) {
			continue
		}
		if area := c.Width * c.Height; best == "" || area < bestArea {
			best, bestArea = c.ID, area
		}
	}
	return best
}

// region returns the AWS region named by the first region container.
func (e *Exporter) region(d *diagram.Document) string {
	for i := range d.Containers {
		c := &d.Containers[i]
		if c.Type != diagram.ContainerRegion {
			continue
		}
		if r := diagram.GetStr(c.Properties, "region"); r != "" {
			return r
		}
	}
	if e.opts.Region != "" {
		return e.opts.Region
	}
	return terraform.DefaultRegion
}

func zoneName(c *diagram.Container) string {
	if z := diagram.GetStr(c.Properties, "zone"); z != "" {
		return z
	}
	return c.Label
}

func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
