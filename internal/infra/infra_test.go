package infra

import (
	"regexp"
	"strings"
	"testing"

	"github.com/archsketch/engine/internal/diagram"
	"github.com/google/go-cmp/cmp"
)

// network returns a vnet holding a subnet (inside an az) holding a web
// server that a firewall guards and a database that depends on it.
func network() *diagram.Document {
	return &diagram.Document{
		Title: "shop",
		Nodes: []diagram.Node{
			{ID: "web", Type: "compute", Label: "web", X: 100, Y: 100, Width: 60, Height: 40,
				Properties: map[string]any{"ami": "ami-123", "instance_type": "t3.micro"}},
			{ID: "db", Type: "database", Label: "db", X: 250, Y: 100, Width: 60, Height: 40,
				Properties: map[string]any{"engine": "postgres", "instance_class": "db.t3.micro", "allocated_storage": float64(20)}},
			{ID: "fw", Type: "firewall", Label: "web-sg", X: 100, Y: 250, Width: 60, Height: 40,
				Properties: map[string]any{"ingress": []any{
					map[string]any{"from_port": float64(443), "to_port": float64(443), "protocol": "tcp", "cidr_blocks": []any{"0.0.0.0/0"}},
				}}},
		},
		Links: []diagram.Link{
			{ID: "l1", Source: "fw", Target: "web"},
			{ID: "l2", Source: "web", Target: "db"},
		},
		Containers: []diagram.Container{
			{ID: "region", Type: diagram.ContainerRegion, Label: "eu", X: -100, Y: -100, Width: 600, Height: 600,
				Properties: map[string]any{"region": "eu-west-1"}},
			{ID: "vnet", Type: diagram.ContainerVNet, Label: "main", X: 0, Y: 0, Width: 400, Height: 400,
				Properties: map[string]any{"cidr_block": "10.0.0.0/16"}},
			{ID: "az", Type: diagram.ContainerAZ, Label: "eu-west-1a", X: 10, Y: 10, Width: 380, Height: 180},
			{ID: "sub", Type: diagram.ContainerSubnet, Label: "private", X: 20, Y: 20, Width: 360, Height: 160,
				Children: []string{"web"}, Properties: map[string]any{"cidr_block": "10.0.1.0/24"}},
		},
	}
}

func export(t *testing.T, d *diagram.Document, opts Options) map[string]string {
	t.Helper()
	res, err := New(opts).Export(d)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !res.Success {
		t.Fatalf("Export failed: %+v", res.Errors)
	}
	files := make(map[string]string, len(res.TerraformFiles))
	for name, b := range res.TerraformFiles {
		files[name] = string(b)
	}
	return files
}

func contains(t *testing.T, text, pattern string) {
	t.Helper()
	if !regexp.MustCompile(pattern).MatchString(text) {
		t.Errorf("missing %q in:\n%s", pattern, text)
	}
}

func TestExportWiresNetwork(t *testing.T) {
	files := export(t, network(), DefaultOptions())
	main := files["main.tf"]

	contains(t, main, `resource "aws_vpc" "vnet"`)
	contains(t, main, `resource "aws_subnet" "sub"`)
	contains(t, main, `vpc_id\s+= aws_vpc\.vnet\.id`)
	contains(t, main, `availability_zone\s+= "eu-west-1a"`)
	contains(t, main, `subnet_id\s+= aws_subnet\.sub\.id`)
	contains(t, main, `vpc_security_group_ids = \[\s*aws_security_group\.fw\.id\s*\]`)
	contains(t, main, `depends_on\s+= \[\s*aws_instance\.web\s*\]`)
	contains(t, main, `from_port\s+= 443`)
	contains(t, main, `Name = "web"`)

	contains(t, files["variables.tf"], `default\s+= "eu-west-1"`)
	contains(t, files["terraform.tfvars"], `aws_region = "eu-west-1"`)
	contains(t, files["versions.tf"], `region = var\.aws_region`)
	contains(t, files["outputs.tf"], `output "web_id"`)
}

func TestExportResourceOrder(t *testing.T) {
	main := export(t, network(), Options{MaxParallel: 1})["main.tf"]
	order := regexp.MustCompile(`resource "(\w+)" "(\w+)"`).FindAllStringSubmatch(main, -1)
	var got []string
	for _, m := range order {
		got = append(got, m[2])
	}
	// Tiers keep insertion order: containers before nodes.
	want := []string{"vnet", "sub", "fw", "web", "db"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resource order (-want +got):\n%s", diff)
	}
}

func TestExportResources(t *testing.T) {
	res, err := New(DefaultOptions()).Export(network())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"vnet": "aws_vpc.vnet",
		"sub":  "aws_subnet.sub",
		"web":  "aws_instance.web",
		"db":   "aws_db_instance.db",
		"fw":   "aws_security_group.fw",
	}
	if diff := cmp.Diff(want, res.Resources); diff != "" {
		t.Errorf("resources (-want +got):\n%s", diff)
	}
}

func TestExportWithoutTfvars(t *testing.T) {
	files := export(t, network(), Options{Region: "ap-south-1"})
	if _, ok := files["terraform.tfvars"]; ok {
		t.Error("terraform.tfvars written with EmitTfvars off")
	}
}

func TestExportRegionFallback(t *testing.T) {
	d := network()
	d.Containers = d.Containers[1:]

	files := export(t, d, Options{Region: "ap-south-1", EmitTfvars: true})
	contains(t, files["terraform.tfvars"], `"ap-south-1"`)

	files = export(t, d, DefaultOptions())
	contains(t, files["terraform.tfvars"], `"us-east-1"`)
}

func TestExportNodeInsideSubnetByPosition(t *testing.T) {
	d := network()
	d.Containers[3].Children = nil
	main := export(t, d, DefaultOptions())["main.tf"]
	contains(t, main, `subnet_id\s+= aws_subnet\.sub\.id`)
}

func TestExportUnsupportedType(t *testing.T) {
	d := network()
	d.Nodes = append(d.Nodes, diagram.Node{ID: "note", Type: `sticky "note"`, X: 450, Y: 450, Width: 10, Height: 10})
	res, err := New(DefaultOptions()).Export(d)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("unsupported type failed the export: %+v", res.Errors)
	}
	var found bool
	for _, w := range res.Warnings {
		if w.ElementID != "note" || w.Type != "unsupported_type" {
			continue
		}
		found = true
		if want := `node type "sticky \"note\"" has no Terraform mapping`; !strings.Contains(w.Message, want) {
			t.Errorf("message = %q, want it to contain %q", w.Message, want)
		}
		if !strings.Contains(w.Suggestion, "compute, ") && !strings.Contains(w.Suggestion, ", compute") {
			t.Errorf("suggestion = %q, want a comma-separated type list", w.Suggestion)
		}
	}
	if !found {
		t.Errorf("no unsupported_type warning in %+v", res.Warnings)
	}
}

func TestExportFailures(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(d *diagram.Document)
		errType string
		element string
	}{
		{
			name:    "missing property",
			edit:    func(d *diagram.Document) { delete(d.Nodes[0].Properties, "ami") },
			errType: "validation_error",
			element: "web",
		},
		{
			name: "subnet outside vnet",
			edit: func(d *diagram.Document) {
				d.Containers[3].X = 1000
				d.Containers[3].Children = nil
			},
			errType: "validation_error",
			element: "sub",
		},
		{
			name:    "invalid document",
			edit:    func(d *diagram.Document) { d.Links[0].Target = "ghost" },
			errType: "schema_error",
			element: "l1",
		},
		{
			name: "cycle",
			edit: func(d *diagram.Document) {
				d.Links = append(d.Links, diagram.Link{ID: "l3", Source: "db", Target: "web"})
			},
			errType: "dependency_error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := network()
			tt.edit(d)
			res, err := New(DefaultOptions()).Export(d)
			if err != nil {
				t.Fatal(err)
			}
			if res.Success {
				t.Fatal("export succeeded")
			}
			if res.TerraformFiles != nil {
				t.Error("files produced for a failed export")
			}
			for _, e := range res.Errors {
				if e.Type == tt.errType && e.ElementID == tt.element && e.Severity == "error" {
					return
				}
			}
			t.Errorf("no %s for %q in %+v", tt.errType, tt.element, res.Errors)
		})
	}
}

func TestExportNil(t *testing.T) {
	if _, err := New(DefaultOptions()).Export(nil); err == nil {
		t.Error("nil document accepted")
	}
}
