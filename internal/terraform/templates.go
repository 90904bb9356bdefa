package terraform

import (
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// DefaultRegion is used when the diagram names no region.
const DefaultRegion = "us-east-1"

// VersionsTF returns content for versions.tf (terraform block + aws provider).
func VersionsTF() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	tfBlock := body.AppendNewBlock("terraform", nil)
	tfBody := tfBlock.Body()
	tfBody.SetAttributeValue("required_version", cty.StringVal(">= 1.0"))
	reqProv := tfBody.AppendNewBlock("required_providers", nil)
	reqProv.Body().SetAttributeValue("aws", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("hashicorp/aws"),
		"version": cty.StringVal("~> 5.0"),
	}))

	body.AppendNewline()
	provBlock := body.AppendNewBlock("provider", []string{"aws"})
	provBlock.Body().SetAttributeTraversal("region", varTraversal("aws_region"))

	return f.Bytes()
}

// VariablesTF returns content for variables.tf.
func VariablesTF(region string) []byte {
	if region == "" {
		region = DefaultRegion
	}
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	regionBlock := body.AppendNewBlock("variable", []string{"aws_region"})
	regionBlock.Body().SetAttributeValue("description", cty.StringVal("AWS region"))
	regionBlock.Body().SetAttributeValue("type", cty.StringVal("string"))
	regionBlock.Body().SetAttributeValue("default", cty.StringVal(region))

	return f.Bytes()
}

// OutputsTF returns one "<name>_id" output per resource address, sorted by
// address. No addresses give no content.
func OutputsTF(addrs []string) []byte {
	if len(addrs) == 0 {
		return nil
	}
	addrs = slices.Clone(addrs)
	slices.Sort(addrs)
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, addr := range addrs {
		if i > 0 {
			body.AppendNewline()
		}
		out := body.AppendNewBlock("output", []string{outputName(addr)})
		out.Body().SetAttributeTraversal("value", Traversal(addr, "id"))
	}
	return f.Bytes()
}

// outputName turns aws_vpc.c_1 into c_1_id.
func outputName(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == '.' {
			return addr[i+1:] + "_id"
		}
	}
	return addr + "_id"
}

// Tfvars returns terraform.tfvars content for the region.
func Tfvars(region string) []byte {
	if region == "" {
		region = DefaultRegion
	}
	f := hclwrite.NewEmptyFile()
	f.Body().SetAttributeValue("aws_region", cty.StringVal(region))
	return f.Bytes()
}

// varTraversal builds hcl.Traversal for var.name (e.g. var.aws_region).
func varTraversal(name string) hcl.Traversal {
	return hcl.Traversal{
		hcl.TraverseRoot{Name: "var"},
		hcl.TraverseAttr{Name: name},
	}
}
