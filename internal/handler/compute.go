package handler

import (
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
)

type computeHandler struct{}

func init() {
	registry.Default.Register(&computeHandler{})
}

func (computeHandler) Kind() string          { return "compute" }
func (computeHandler) TerraformType() string { return "aws_instance" }

func (computeHandler) Validate(res *registry.Resource) ([]result.Error, []result.Warning) {
	errs := requireStr(res, "ami", "Set properties.ami")
	errs = append(errs, requireStr(res, "instance_type", "Set properties.instance_type (e.g. t3.micro)")...)
	var warns []result.Warning
	if res.Parent == "" {
		warns = append(warns, warning(res, "instance is not in a subnet", "Add the node to a subnet container"))
	}
	return errs, warns
}

func (h computeHandler) GenerateHCL(res *registry.Resource, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock(h.TerraformType(), terraform.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	terraform.SetAttributeStr(body, "ami", diagram.GetStr(p, "ami"))
	terraform.SetAttributeStr(body, "instance_type", diagram.GetStr(p, "instance_type"))
	terraform.SetAttributeStr(body, "key_name", diagram.GetStr(p, "key_name"))
	setRef(body, "subnet_id", res.Parent, "id", refs)
	terraform.SetReferenceList(body, "vpc_security_group_ids", addrs(res.SecurityGroups, refs), "id")

	return finish(block, res, refs), nil
}
