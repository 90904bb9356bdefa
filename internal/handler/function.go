package handler

import (
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
	"github.com/zclconf/go-cty/cty"
)

type functionHandler struct{}

func init() {
	registry.Default.Register(&functionHandler{})
}

func (functionHandler) Kind() string          { return "function" }
func (functionHandler) TerraformType() string { return "aws_lambda_function" }

func (functionHandler) Validate(res *registry.Resource) ([]result.Error, []result.Warning) {
	errs := requireStr(res, "runtime", "Set properties.runtime (e.g. python3.12)")
	errs = append(errs, requireStr(res, "handler", "Set properties.handler (e.g. index.handler)")...)
	errs = append(errs, requireStr(res, "role", "Set properties.role to an IAM role ARN")...)
	return errs, nil
}

func (h functionHandler) GenerateHCL(res *registry.Resource, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock(h.TerraformType(), terraform.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	fnName := diagram.GetStr(p, "function_name")
	if fnName == "" {
		fnName = res.Label
	}
	if fnName == "" {
		fnName = terraform.SanitizeName(res.ID)
	}
	terraform.SetAttributeStr(body, "function_name", fnName)
	terraform.SetAttributeStr(body, "role", diagram.GetStr(p, "role"))
	terraform.SetAttributeStr(body, "runtime", diagram.GetStr(p, "runtime"))
	terraform.SetAttributeStr(body, "handler", diagram.GetStr(p, "handler"))
	terraform.SetAttributeStr(body, "filename", diagram.GetStr(p, "filename"))
	terraform.SetAttributeInt(body, "memory_size", orInt(diagram.GetInt(p, "memory_size"), 128))
	terraform.SetAttributeInt(body, "timeout", orInt(diagram.GetInt(p, "timeout"), 3))

	if env := diagram.GetStrMap(p, "environment_variables"); len(env) > 0 {
		vars := make(map[string]cty.Value, len(env))
		for k, v := range env {
			vars[k] = cty.StringVal(v)
		}
		envBlock := body.AppendNewBlock("environment", nil)
		envBlock.Body().SetAttributeValue("variables", cty.MapVal(vars))
	}

	if res.Parent != "" && len(res.SecurityGroups) > 0 {
		if subnet, ok := refs[res.Parent]; ok {
			vpc := body.AppendNewBlock("vpc_config", nil)
			terraform.SetReferenceList(vpc.Body(), "subnet_ids", []string{subnet}, "id")
			terraform.SetReferenceList(vpc.Body(), "security_group_ids", addrs(res.SecurityGroups, refs), "id")
		}
	}

	return finish(block, res, refs), nil
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
