package handler

import (
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
)

type subnetHandler struct{}

func init() {
	registry.Default.Register(&subnetHandler{})
}

func (subnetHandler) Kind() string          { return string(diagram.ContainerSubnet) }
func (subnetHandler) TerraformType() string { return "aws_subnet" }

func (subnetHandler) Validate(res *registry.Resource) ([]result.Error, []result.Warning) {
	errs := requireStr(res, "cidr_block", "Set properties.cidr_block")
	if res.Parent == "" {
		errs = append(errs, invalid(res, "subnet is not inside a vnet", "Draw the subnet inside a vnet container"))
	}
	return errs, nil
}

func (h subnetHandler) GenerateHCL(res *registry.Resource, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock(h.TerraformType(), terraform.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	setRef(body, "vpc_id", res.Parent, "id", refs)
	terraform.SetAttributeStr(body, "cidr_block", diagram.GetStr(p, "cidr_block"))
	zone := diagram.GetStr(p, "availability_zone")
	if zone == "" {
		zone = res.Zone
	}
	terraform.SetAttributeStr(body, "availability_zone", zone)
	if diagram.GetBool(p, "map_public_ip_on_launch") {
		terraform.SetAttributeBool(body, "map_public_ip_on_launch", true)
	}

	return finish(block, res, refs), nil
}
