package handler

import (
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
)

type vnetHandler struct{}

func init() {
	registry.Default.Register(&vnetHandler{})
}

func (vnetHandler) Kind() string          { return string(diagram.ContainerVNet) }
func (vnetHandler) TerraformType() string { return "aws_vpc" }

func (vnetHandler) Validate(res *registry.Resource) ([]result.Error, []result.Warning) {
	return requireStr(res, "cidr_block", "Set properties.cidr_block (e.g. 10.0.0.0/16)"), nil
}

func (h vnetHandler) GenerateHCL(res *registry.Resource, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock(h.TerraformType(), terraform.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	terraform.SetAttributeStr(body, "cidr_block", diagram.GetStr(p, "cidr_block"))
	terraform.SetAttributeBool(body, "enable_dns_hostnames", diagram.GetBool(p, "enable_dns_hostnames"))
	terraform.SetAttributeBool(body, "enable_dns_support", diagram.GetBool(p, "enable_dns_support"))

	return finish(block, res, refs), nil
}
