package terraform

import (
	"regexp"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeName converts an element id to a Terraform-safe resource name
// (e.g. n-1 -> n_1). Names must not start with a digit.
func SanitizeName(id string) string {
	name := unsafeName.ReplaceAllString(id, "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "r_" + name
	}
	return name
}

// ResourceBlock creates a resource "type" "name" { } block; body can be filled by the caller.
func ResourceBlock(resourceType, name string) *hclwrite.Block {
	return hclwrite.NewBlock("resource", []string{resourceType, name})
}

// SetAttributeStr sets a string attribute on a block body.
func SetAttributeStr(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

// SetAttributeBool sets a bool attribute.
func SetAttributeBool(body *hclwrite.Body, name string, value bool) {
	body.SetAttributeValue(name, cty.BoolVal(value))
}

// SetAttributeInt sets an int attribute.
func SetAttributeInt(body *hclwrite.Body, name string, value int) {
	body.SetAttributeValue(name, cty.NumberIntVal(int64(value)))
}

// SetAttributeMap sets a map(string) attribute (e.g. tags).
func SetAttributeMap(body *hclwrite.Body, name string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	ctyMap := make(map[string]cty.Value)
	for k, v := range m {
		ctyMap[k] = cty.StringVal(v)
	}
	body.SetAttributeValue(name, cty.MapVal(ctyMap))
}

// SetReference sets name = <addr>.<attr>, e.g. vpc_id = aws_vpc.c_1.id.
func SetReference(body *hclwrite.Body, name, addr, attr string) {
	body.SetAttributeTraversal(name, Traversal(addr, attr))
}

// SetReferenceList sets name = [<addr>.<attr>, ...]. An empty attr lists
// bare addresses, as depends_on requires. Nothing is written for no addrs.
func SetReferenceList(body *hclwrite.Body, name string, addrs []string, attr string) {
	if len(addrs) == 0 {
		return
	}
	addrs = slices.Clone(addrs)
	slices.Sort(addrs)
	tokens := make([]hclwrite.Tokens, len(addrs))
	for i, addr := range addrs {
		tokens[i] = hclwrite.TokensForTraversal(Traversal(addr, attr))
	}
	body.SetAttributeRaw(name, hclwrite.TokensForTuple(tokens))
}

// Traversal builds the hcl.Traversal for a resource address and optional
// attribute (e.g. aws_vpc.c_1.id).
func Traversal(addr, attr string) hcl.Traversal {
	var t hcl.Traversal
	for _, part := range strings.Split(addr, ".") {
		if len(t) == 0 {
			t = append(t, hcl.TraverseRoot{Name: part})
		} else {
			t = append(t, hcl.TraverseAttr{Name: part})
		}
	}
	if attr != "" {
		t = append(t, hcl.TraverseAttr{Name: attr})
	}
	return t
}

// BlockToBytes formats a block and returns its bytes (with newline).
func BlockToBytes(block *hclwrite.Block) []byte {
	f := hclwrite.NewEmptyFile()
	f.Body().AppendBlock(block)
	return f.Bytes()
}
