package handler

import (
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// KindFirewall is the node type exported as a security group. Links out of
// a firewall attach it to their targets instead of ordering them.
const KindFirewall = "firewall"

type firewallHandler struct{}

func init() {
	registry.Default.Register(&firewallHandler{})
}

func (firewallHandler) Kind() string          { return KindFirewall }
func (firewallHandler) TerraformType() string { return "aws_security_group" }

func (firewallHandler) Validate(res *registry.Resource) ([]result.Error, []result.Warning) {
	var errs []result.Error
	if diagram.GetStr(res.Properties, "name") == "" && res.Label == "" {
		errs = append(errs, invalid(res, "name or label is required", "Set properties.name or the node label"))
	}
	var warns []result.Warning
	if res.Network == "" {
		warns = append(warns, warning(res, "security group is not inside a vnet", "Draw the node inside a vnet container"))
	}
	return errs, warns
}

func (h firewallHandler) GenerateHCL(res *registry.Resource, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock(h.TerraformType(), terraform.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	name := diagram.GetStr(p, "name")
	if name == "" {
		name = res.Label
	}
	terraform.SetAttributeStr(body, "name", name)
	terraform.SetAttributeStr(body, "description", diagram.GetStr(p, "description"))
	setRef(body, "vpc_id", res.Network, "id", refs)

	appendRules(body, "ingress", p["ingress"])
	if _, ok := p["egress"]; ok {
		appendRules(body, "egress", p["egress"])
	} else {
		eg := body.AppendNewBlock("egress", nil).Body()
		eg.SetAttributeValue("from_port", cty.NumberIntVal(0))
		eg.SetAttributeValue("to_port", cty.NumberIntVal(0))
		eg.SetAttributeValue("protocol", cty.StringVal("-1"))
		eg.SetAttributeValue("cidr_blocks", cty.ListVal([]cty.Value{cty.StringVal("0.0.0.0/0")}))
	}

	return finish(block, res, refs), nil
}

// appendRules writes one block per rule object in raw (a decoded JSON list).
func appendRules(body *hclwrite.Body, kind string, raw any) {
	rules, _ := raw.([]any)
	for _, r := range rules {
		rm, _ := r.(map[string]any)
		if rm == nil {
			continue
		}
		rb := body.AppendNewBlock(kind, nil).Body()
		if v, ok := rm["from_port"].(float64); ok {
			rb.SetAttributeValue("from_port", cty.NumberIntVal(int64(v)))
		}
		if v, ok := rm["to_port"].(float64); ok {
			rb.SetAttributeValue("to_port", cty.NumberIntVal(int64(v)))
		}
		if v, ok := rm["protocol"].(string); ok {
			rb.SetAttributeValue("protocol", cty.StringVal(v))
		}
		cidrs, _ := rm["cidr_blocks"].([]any)
		var list []cty.Value
		for _, c := range cidrs {
			if s, ok := c.(string); ok {
				list = append(list, cty.StringVal(s))
			}
		}
		if len(list) > 0 {
			rb.SetAttributeValue("cidr_blocks", cty.ListVal(list))
		}
	}
}
