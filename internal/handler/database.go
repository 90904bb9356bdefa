package handler

import (
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
	"github.com/zclconf/go-cty/cty"
)

type databaseHandler struct{}

func init() {
	registry.Default.Register(&databaseHandler{})
}

func (databaseHandler) Kind() string          { return "database" }
func (databaseHandler) TerraformType() string { return "aws_db_instance" }

func (databaseHandler) Validate(res *registry.Resource) ([]result.Error, []result.Warning) {
	errs := requireStr(res, "engine", "Set properties.engine (e.g. postgres)")
	errs = append(errs, requireStr(res, "instance_class", "Set properties.instance_class (e.g. db.t3.micro)")...)
	if diagram.GetInt(res.Properties, "allocated_storage") == 0 {
		errs = append(errs, invalid(res, "allocated_storage is required", "Set properties.allocated_storage (GB)"))
	}
	var warns []result.Warning
	if diagram.GetStr(res.Properties, "password") != "" {
		warns = append(warns, warning(res, "password is stored in plain text", "Use manage_master_user_password or a secret reference"))
	}
	return errs, warns
}

func (h databaseHandler) GenerateHCL(res *registry.Resource, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock(h.TerraformType(), terraform.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	terraform.SetAttributeStr(body, "engine", diagram.GetStr(p, "engine"))
	terraform.SetAttributeStr(body, "engine_version", diagram.GetStr(p, "engine_version"))
	terraform.SetAttributeStr(body, "instance_class", diagram.GetStr(p, "instance_class"))
	terraform.SetAttributeInt(body, "allocated_storage", diagram.GetInt(p, "allocated_storage"))
	terraform.SetAttributeStr(body, "storage_type", diagram.GetStr(p, "storage_type"))
	terraform.SetAttributeStr(body, "db_name", diagram.GetStr(p, "db_name"))
	terraform.SetAttributeStr(body, "username", diagram.GetStr(p, "username"))
	if pw := diagram.GetStr(p, "password"); pw != "" {
		body.SetAttributeValue("password", cty.StringVal(pw))
	}
	if diagram.GetBool(p, "skip_final_snapshot") {
		body.SetAttributeValue("skip_final_snapshot", cty.BoolVal(true))
	}
	if n := diagram.GetInt(p, "backup_retention_period"); n > 0 {
		terraform.SetAttributeInt(body, "backup_retention_period", n)
	}
	terraform.SetAttributeBool(body, "multi_az", diagram.GetBool(p, "multi_az"))
	terraform.SetReferenceList(body, "vpc_security_group_ids", addrs(res.SecurityGroups, refs), "id")

	return finish(block, res, refs), nil
}
