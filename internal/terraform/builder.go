package terraform

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
)

// Builder collects resource blocks and template content for the final
// Terraform configuration.
type Builder struct {
	resources  [][]byte
	variables  []byte
	outputs    []byte
	versions   []byte
	tfvars     []byte
	emitTfvars bool
}

// NewBuilder returns a new Builder.
func NewBuilder(emitTfvars bool) *Builder {
	return &Builder{emitTfvars: emitTfvars}
}

// AddResource appends a resource block. Blocks keep their insertion order
// in main.tf.
func (b *Builder) AddResource(block []byte) {
	if len(block) == 0 {
		return
	}
	b.resources = append(b.resources, block)
}

func (b *Builder) SetVariables(content []byte) { b.variables = content }
func (b *Builder) SetOutputs(content []byte)   { b.outputs = content }
func (b *Builder) SetVersions(content []byte)  { b.versions = content }
func (b *Builder) SetTfvars(content []byte)    { b.tfvars = content }

// Build returns a map of filename -> content for all Terraform files.
func (b *Builder) Build() map[string][]byte {
	out := make(map[string][]byte)
	if len(b.versions) > 0 {
		out["versions.tf"] = b.versions
	}
	if len(b.variables) > 0 {
		out["variables.tf"] = b.variables
	}
	var main bytes.Buffer
	for i, r := range b.resources {
		if i > 0 {
			main.WriteString("\n")
		}
		main.Write(r)
	}
	if main.Len() > 0 {
		out["main.tf"] = main.Bytes()
	}
	if len(b.outputs) > 0 {
		out["outputs.tf"] = b.outputs
	}
	if b.emitTfvars && len(b.tfvars) > 0 {
		out["terraform.tfvars"] = b.tfvars
	}
	return out
}

// WriteDir writes files into dir, creating it if needed, and returns the
// written paths in name order.
func WriteDir(dir string, files map[string][]byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, files[name], 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
