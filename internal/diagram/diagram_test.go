package diagram

import (
	"testing"

	"github.com/archsketch/engine/internal/errors"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"
)

func sample() Document {
	return Document{
		Title: "web stack",
		Nodes: []Node{
			{ID: "a", Type: "compute", Label: "A", X: 0, Y: 0, Width: 100, Height: 60},
			{ID: "b", Type: "database", Label: "B", X: 300, Y: 0, Width: 100, Height: 60, Layer: Int(1)},
			{ID: "c", Type: "bucket", Label: "C", X: 150, Y: 200, Width: 80, Height: 40,
				Style: NodeStyle{Border: BorderDotted, FillOpacity: Float(0.5)}},
		},
		Links: []Link{
			{ID: "ab", Source: "a", Target: "b", Label: "sql"},
			{ID: "ca", Source: "c", Target: "a", Style: LinkStyle{Arrowhead: ArrowDiamond, Line: LineElbow}},
		},
		Containers: []Container{
			{ID: "vpc", Type: ContainerVNet, Label: "VPC", X: -100, Y: -100, Width: 500, Height: 400, Children: []string{"a", "b"}},
		},
	}
}

func TestRemoveNodeCascadesLinks(t *testing.T) {
	d := sample()
	out := d.Remove("a")

	if out.NodeByID("a") != nil {
		t.Fatal("node a still present")
	}
	if len(out.Links) != 0 {
		t.Errorf("links = %v, want none", out.Links)
	}
	if got := out.ContainerByID("vpc").Children; !cmp.Equal(got, []string{"b"}) {
		t.Errorf("children = %v, want [b]", got)
	}
	if len(d.Links) != 2 || d.NodeByID("a") == nil {
		t.Error("original document was modified")
	}
}

func TestRemoveContainerKeepsChildren(t *testing.T) {
	out := sample().Remove("vpc")
	if len(out.Containers) != 0 {
		t.Fatalf("containers = %v", out.Containers)
	}
	if out.NodeByID("a") == nil || out.NodeByID("b") == nil {
		t.Error("children were removed with their container")
	}
	if len(out.Links) != 2 {
		t.Errorf("links = %d, want 2", len(out.Links))
	}
}

func TestAddLinkInvalidReference(t *testing.T) {
	d := sample()
	_, err := d.AddLink(Link{ID: "x", Source: "a", Target: "missing"})
	if !errors.Is(err, errors.ErrCodeInvalidReference) {
		t.Fatalf("err = %v, want INVALID_REFERENCE", err)
	}
	out, err := d.AddLink(Link{ID: "x", Source: "b", Target: "c"})
	if err != nil {
		t.Fatal(err)
	}
	if out.LinkByID("x") == nil || d.LinkByID("x") != nil {
		t.Error("AddLink must return a new document and leave the receiver alone")
	}
}

func TestAddNodeRejectsDuplicateID(t *testing.T) {
	_, err := sample().AddNode(Node{ID: "vpc", Width: 10, Height: 10})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestTranslateMovesContainerChildren(t *testing.T) {
	out := sample().Translate([]string{"vpc", "a"}, r2.Vec{X: 10, Y: 5})
	if a := out.NodeByID("a"); a.X != 10 || a.Y != 5 {
		t.Errorf("a = (%v,%v), want (10,5)", a.X, a.Y)
	}
	if b := out.NodeByID("b"); b.X != 310 {
		t.Errorf("b.X = %v, want 310", b.X)
	}
	if c := out.NodeByID("c"); c.X != 150 {
		t.Errorf("c moved: %v", c.X)
	}
	if v := out.ContainerByID("vpc"); v.X != -90 || v.Y != -95 {
		t.Errorf("vpc = (%v,%v)", v.X, v.Y)
	}
}

func TestDuplicate(t *testing.T) {
	seq := &Sequence{}
	out, ids := sample().Duplicate([]string{"a", "vpc", "zzz"}, r2.Vec{X: 20, Y: 20}, seq)

	if want := []string{"n-1", "c-2"}; !cmp.Equal(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	n := out.NodeByID("n-1")
	if n == nil || n.X != 20 || n.Y != 20 || n.Label != "A" {
		t.Errorf("copy = %+v", n)
	}
	c := out.ContainerByID("c-2")
	if c == nil || !cmp.Equal(c.Children, []string{"n-1"}) {
		t.Errorf("container copy = %+v", c)
	}
	if len(out.Links) != 2 {
		t.Errorf("links = %d, want 2 (duplicate creates none)", len(out.Links))
	}
}

func TestDuplicateSkipsTakenIDs(t *testing.T) {
	d := sample()
	d.Nodes = append(d.Nodes, Node{ID: "n-1", Width: 1, Height: 1})
	_, ids := d.Duplicate([]string{"a"}, r2.Vec{}, &Sequence{})
	if want := []string{"n-2"}; !cmp.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	d := sample()
	d.Nodes[0].Properties = map[string]any{"ami": "ami-123", "count": 2.0, "tags": map[string]any{"env": "prod"}}
	d.Containers[0].Style = ContainerStyle{BorderColor: "#0ea5e9", Fill: "aliceblue"}
	d.Links[0].Style = LinkStyle{Color: "#f00", Dash: "6 4"}
	data, err := Export(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Import(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// Properties are free-form JSON: empty maps are omitted on export and
// numbers decode as float64.
func TestImportNormalizesProperties(t *testing.T) {
	d := sample()
	d.Nodes[0].Properties = map[string]any{}
	d.Nodes[1].Properties = map[string]any{"port": 5432, "ratio": float32(0.5)}
	data, err := Export(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Import(data)
	if err != nil {
		t.Fatal(err)
	}
	if p := got.Nodes[0].Properties; p != nil {
		t.Errorf("empty properties = %#v, want nil", p)
	}
	if diff := cmp.Diff(map[string]any{"port": 5432.0, "ratio": 0.5}, got.Nodes[1].Properties); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestValidColor(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"#fff", true},
		{"#0EA5E9", true},
		{"none", true},
		{"steelblue", true},
		{"#ffff", false},
		{"#ggg", false},
		{"#ffffff00", false},
		{`#fff" onload="x`, false},
		{`red" onload="alert(1)`, false},
		{"url(https://example.com/x.svg#p)", false},
		{"red;stroke:blue", false},
	}
	for _, tt := range tests {
		if got := ValidColor(tt.in); got != tt.want {
			t.Errorf("ValidColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetStyleRejectsBadColor(t *testing.T) {
	d := sample()
	checks := map[string]error{}
	_, checks["node"] = d.SetNodeStyle("a", NodeStyle{BorderColor: "url(https://example.com/p)"})
	_, checks["link"] = d.SetLinkStyle("ab", LinkStyle{Color: `red" onload="x`})
	_, checks["container"] = d.SetContainerStyle("vpc", ContainerStyle{Fill: "#12"})
	for name, err := range checks {
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%s: err = %v, want INVALID_INPUT", name, err)
		}
	}
	if _, err := d.SetLinkStyle("ab", LinkStyle{Color: "#22c55e"}); err != nil {
		t.Errorf("valid color rejected: %v", err)
	}
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"missing nodes", `{"title":"t","links":[]}`},
		{"missing links", `{"title":"t","nodes":[]}`},
		{"missing title", `{"nodes":[],"links":[]}`},
		{"nodes wrong type", `{"title":"t","nodes":{},"links":[]}`},
		{"containers wrong type", `{"title":"t","nodes":[],"links":[],"containers":3}`},
		{"dangling link", `{"title":"t","nodes":[{"id":"a","width":1,"height":1}],"links":[{"id":"l","source":"a","target":"b"}]}`},
		{"zero size", `{"title":"t","nodes":[{"id":"a"}],"links":[]}`},
		{"bad arrowhead", `{"title":"t","nodes":[{"id":"a","width":1,"height":1}],"links":[{"id":"l","source":"a","target":"a","style":{"arrowhead":"star"}}]}`},
		{"bad container type", `{"title":"t","nodes":[],"links":[],"containers":[{"id":"c","type":"zone","width":1,"height":1,"children":[]}]}`},
		{"quote in link color", `{"title":"t","nodes":[{"id":"a","width":1,"height":1}],"links":[{"id":"l","source":"a","target":"a","style":{"color":"red\" onload=\"x"}}]}`},
		{"url border color", `{"title":"t","nodes":[{"id":"a","width":1,"height":1,"style":{"borderColor":"url(https://example.com/x.svg#p)"}}],"links":[]}`},
		{"bad container fill", `{"title":"t","nodes":[],"links":[],"containers":[{"id":"c","type":"tier","width":1,"height":1,"children":[],"style":{"fill":"#12345"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidDocument) {
				t.Errorf("err = %v, want INVALID_DOCUMENT", err)
			}
		})
	}
}

func TestImportNullContainers(t *testing.T) {
	d, err := Import([]byte(`{"title":"t","nodes":[],"links":[],"containers":null}`))
	if err != nil {
		t.Fatal(err)
	}
	if d.Containers == nil {
		t.Error("containers should normalize to an empty slice")
	}
}

func TestLinkStyleResolve(t *testing.T) {
	r := LinkStyle{}.Resolve()
	if r.Curvature != DefaultCurvature || r.Arrowhead != ArrowTriangle || r.Line != LineCurved {
		t.Errorf("defaults = %+v", r)
	}
	if !r.EndMarker || r.StartMarker {
		t.Errorf("markers = start %v end %v", r.StartMarker, r.EndMarker)
	}
	r = LinkStyle{Line: LineStraight, Curvature: Float(0.9), Dash: "6, 4", Angle: Float(45)}.Resolve()
	if r.Curvature != 0 {
		t.Errorf("straight curvature = %v, want 0", r.Curvature)
	}
	if !cmp.Equal(r.Dash, []float64{6, 4}) {
		t.Errorf("dash = %v", r.Dash)
	}
	if !r.HasAngle || r.Angle != 45 {
		t.Errorf("angle = %v/%v", r.Angle, r.HasAngle)
	}
}

func TestNodeAtTopmost(t *testing.T) {
	d := sample()
	d.Nodes = append(d.Nodes, Node{ID: "top", X: 0, Y: 0, Width: 20, Height: 20})
	if id, ok := d.NodeAt(r2.Vec{X: 5, Y: 5}); !ok || id != "top" {
		t.Errorf("NodeAt = %q, %v; want top", id, ok)
	}
	if _, ok := d.NodeAt(r2.Vec{X: 1000, Y: 1000}); ok {
		t.Error("NodeAt on empty space should miss")
	}
}
