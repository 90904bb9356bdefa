package handler

import (
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/registry"
	"github.com/archsketch/engine/internal/result"
	"github.com/archsketch/engine/internal/terraform"
	"github.com/zclconf/go-cty/cty"
)

type bucketHandler struct{}

func init() {
	registry.Default.Register(&bucketHandler{})
}

func (bucketHandler) Kind() string          { return "bucket" }
func (bucketHandler) TerraformType() string { return "aws_s3_bucket" }

func (bucketHandler) Validate(res *registry.Resource) ([]result.Error, []result.Warning) {
	if diagram.GetStr(res.Properties, "bucket") == "" && res.Label == "" {
		return []result.Error{invalid(res, "bucket name or label is required", "Set properties.bucket or the node label")}, nil
	}
	return nil, nil
}

func (h bucketHandler) GenerateHCL(res *registry.Resource, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock(h.TerraformType(), terraform.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	bucketName := diagram.GetStr(p, "bucket")
	if bucketName == "" {
		bucketName = res.Label
	}
	terraform.SetAttributeStr(body, "bucket", bucketName)

	if diagram.GetBool(p, "versioning") {
		ver := body.AppendNewBlock("versioning", nil)
		ver.Body().SetAttributeValue("enabled", cty.BoolVal(true))
	}

	return finish(block, res, refs), nil
}
