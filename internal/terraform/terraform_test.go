package terraform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"n-1":     "n_1",
		"web.app": "web_app",
		"1st":     "r_1st",
		"":        "r_",
		"ok_name": "ok_name",
		"a b/c":   "a_b_c",
	}
	for in, want := range tests {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReferences(t *testing.T) {
	block := ResourceBlock("aws_instance", "web")
	body := block.Body()
	SetReference(body, "subnet_id", "aws_subnet.a", "id")
	SetReferenceList(body, "depends_on", []string{"aws_vpc.z", "aws_db_instance.b"}, "")
	SetReferenceList(body, "empty", nil, "id")
	SetAttributeStr(body, "key_name", "")

	got := string(BlockToBytes(block))
	for _, want := range []string{
		`resource "aws_instance" "web" {`,
		"aws_subnet.a.id",
		"[aws_db_instance.b, aws_vpc.z]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	for _, absent := range []string{"empty", "key_name"} {
		if strings.Contains(got, absent) {
			t.Errorf("unexpected %q in:\n%s", absent, got)
		}
	}
}

func TestTraversal(t *testing.T) {
	got := string(hclwrite.TokensForTraversal(Traversal("aws_vpc.main", "id")).Bytes())
	if got != "aws_vpc.main.id" {
		t.Errorf("traversal = %q", got)
	}
}

func TestOutputsTF(t *testing.T) {
	if OutputsTF(nil) != nil {
		t.Error("outputs for no resources")
	}
	got := string(OutputsTF([]string{"aws_vpc.v", "aws_instance.web"}))
	iWeb, iV := strings.Index(got, `output "web_id"`), strings.Index(got, `output "v_id"`)
	if iWeb < 0 || iV < 0 || iWeb > iV {
		t.Errorf("outputs not sorted by address:\n%s", got)
	}
	if !strings.Contains(got, "aws_vpc.v.id") {
		t.Errorf("missing value traversal:\n%s", got)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(false)
	b.AddResource([]byte("a\n"))
	b.AddResource(nil)
	b.AddResource([]byte("b\n"))
	b.SetVersions(VersionsTF())
	b.SetTfvars(Tfvars(""))

	files := b.Build()
	if got := string(files["main.tf"]); got != "a\n\nb\n" {
		t.Errorf("main.tf = %q", got)
	}
	if _, ok := files["terraform.tfvars"]; ok {
		t.Error("tfvars emitted while disabled")
	}
	if _, ok := files["outputs.tf"]; ok {
		t.Error("empty outputs.tf emitted")
	}
	if !strings.Contains(string(files["versions.tf"]), "hashicorp/aws") {
		t.Error("versions.tf lacks the aws provider")
	}
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteDir(dir, map[string][]byte{
		"variables.tf": []byte("v"),
		"main.tf":      []byte("m"),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "main.tf"), filepath.Join(dir, "variables.tf")}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	b, err := os.ReadFile(paths[0])
	if err != nil || string(b) != "m" {
		t.Errorf("main.tf = %q, %v", b, err)
	}
}
