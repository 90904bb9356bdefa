// Package handler maps diagram element kinds to Terraform resources. Each
// handler registers itself with registry.Default on import.
package handler

import (
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// RefMap is an alias for registry.RefMap so handlers can use refs without importing registry in every signature.
type RefMap = registry.RefMap

// requireStr reports a validation error when the string property is unset.
func requireStr(res *registry.Resource, key, suggestion string) []result.Error {
	if diagram.GetStr(res.Properties, key) != "" {
		return nil
	}
	return []result.Error{invalid(res, key+" is required", suggestion)}
}

func invalid(res *registry.Resource, msg, suggestion string) result.Error {
	return result.Error{
		Type: "validation_error", Severity: "error", ElementID: res.ID,
		Message: msg, Suggestion: suggestion,
	}
}

func warning(res *registry.Resource, msg, suggestion string) result.Warning {
	return result.Warning{
		Type: "best_practice", Severity: "warning", ElementID: res.ID,
		Message: msg, Suggestion: suggestion,
	}
}

// nameTags returns properties.tags with Name defaulting to the label.
func nameTags(res *registry.Resource) map[string]string {
	tags := diagram.GetStrMap(res.Properties, "tags")
	if res.Label != "" {
		if tags == nil {
			tags = make(map[string]string)
		}
		if _, has := tags["Name"]; !has {
			tags["Name"] = res.Label
		}
	}
	return tags
}

// setRef sets name = <ref of id>.<attr> when id has been generated.
func setRef(body *hclwrite.Body, name, id, attr string, refs RefMap) {
	if id == "" {
		return
	}
	if addr, ok := refs[id]; ok {
		terraform.SetReference(body, name, addr, attr)
	}
}

// addrs resolves ids that have been generated, dropping the rest.
func addrs(ids []string, refs RefMap) []string {
	var out []string
	for _, id := range ids {
		if addr, ok := refs[id]; ok {
			out = append(out, addr)
		}
	}
	return out
}

// finish appends tags and depends_on and encodes the block.
func finish(block *hclwrite.Block, res *registry.Resource, refs RefMap) []byte {
	body := block.Body()
	terraform.SetAttributeMap(body, "tags", nameTags(res))
	terraform.SetReferenceList(body, "depends_on", addrs(res.DependsOn, refs), "")
	return terraform.BlockToBytes(block)
}
