package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diagram.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Export.Connector = want.Connector
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPriority(t *testing.T) {
	path := writeFile(t, `
[layout]
layer_spacing = 250
gap = 30

[export]
background = "#000000"

[connector]
target_padding = 6

[generate]
timeout = "5s"
`)
	t.Setenv("DIAGRAM_LAYOUT__GAP", "35")
	t.Setenv("DIAGRAM_HISTORY__SIZE", "20")
	t.Setenv("DIAGRAM_TERRAFORM__REGION", "eu-central-1")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("layout.layer_spacing", 200, "")
	fs.String("log.level", "info", "")
	if err := fs.Parse([]string{"--layout.layer_spacing=300"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(fs, path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"flag beats file", cfg.Layout.LayerSpacing, 300.0},
		{"env beats file", cfg.Layout.Gap, 35.0},
		{"file beats default", cfg.Export.Background, "#000000"},
		{"env only", cfg.History.Size, 20},
		{"unchanged flag keeps default", cfg.Log.Level, "info"},
		{"untouched default", cfg.Viewport.MaxScale, 4.0},
		{"duration", cfg.Generate.Timeout, 5 * time.Second},
		{"terraform region", cfg.Terraform.Region, "eu-central-1"},
		{"terraform default", cfg.Terraform.EmitTfvars, true},
		{"connector shared with export", cfg.Export.Connector.TargetPadding, 6.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadRejectsBadColor(t *testing.T) {
	t.Setenv("DIAGRAM_EXPORT__BACKGROUND", `#fff" onload="x`)
	if _, err := Load(nil, ""); err == nil {
		t.Error("expected error for malformed background color")
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("DIAGRAM_EXPORT__RASTER_SCALE"); got != "export.raster_scale" {
		t.Errorf("envKey = %q, want export.raster_scale", got)
	}
}
