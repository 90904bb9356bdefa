// Package config loads engine settings from defaults, a TOML file, the
// environment and command-line flags, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/archsketch/engine/internal/connector"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/infra"
	"github.com/archsketch/engine/internal/layout"
	"github.com/archsketch/engine/internal/render"
	"github.com/archsketch/engine/internal/viewport"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is read when no path is given and it exists.
const DefaultFile = "diagram.toml"

// EnvPrefix marks environment overrides. Sections are separated by a double
// underscore: DIAGRAM_LAYOUT__LAYER_SPACING=240.
const EnvPrefix = "DIAGRAM_"

// History configures the undo stack.
type History struct {
	Size int `koanf:"size"`
}

// Log configures logging.
type Log struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // console or json
}

// Generate configures the generation backend.
type Generate struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Config holds every section.
type Config struct {
	Connector connector.Options `koanf:"connector"`
	Layout    layout.Options    `koanf:"layout"`
	Viewport  viewport.Options  `koanf:"viewport"`
	History   History           `koanf:"history"`
	Export    render.Options    `koanf:"export"`
	Log       Log               `koanf:"log"`
	Generate  Generate          `koanf:"generate"`
	Terraform infra.Options     `koanf:"terraform"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Connector: connector.DefaultOptions(),
		Layout:    layout.DefaultOptions(),
		Viewport:  viewport.DefaultOptions(),
		History:   History{Size: 100},
		Export:    render.DefaultOptions(),
		Log:       Log{Level: "info", Format: "console"},
		Generate:  Generate{Timeout: 30 * time.Second},
		Terraform: infra.DefaultOptions(),
	}
}

// Load loads configuration from defaults, config file, environment variables
// and flags. Priority: Flags > Env > Config File > Defaults. An empty path
// reads DefaultFile if present; a named path must exist.
func Load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(mapProvider(defaults(Default())), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	switch {
	case path != "":
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			if err := k.Load(file.Provider(DefaultFile), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", DefaultFile, err)
			}
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Export.Connector = cfg.Connector
	for _, c := range [][2]string{
		{"export.background", cfg.Export.Background},
		{"export.node_fill", cfg.Export.NodeFill},
		{"export.text_color", cfg.Export.TextColor},
	} {
		if !diagram.ValidColor(c[1]) {
			return nil, fmt.Errorf("invalid color for %s: %q", c[0], c[1])
		}
	}
	return &cfg, nil
}

// envKey maps DIAGRAM_LAYOUT__LAYER_SPACING to layout.layer_spacing.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func defaults(c Config) map[string]any {
	return map[string]any{
		"connector": map[string]any{
			"source_padding":        c.Connector.SourcePadding,
			"target_padding":        c.Connector.TargetPadding,
			"parallel_spacing":      c.Connector.ParallelSpacing,
			"bidirectional_spacing": c.Connector.BidirectionalSpacing,
			"label_lift":            c.Connector.LabelLift,
			"char_width":            c.Connector.CharWidth,
			"plate_padding":         c.Connector.PlatePadding,
			"plate_height":          c.Connector.PlateHeight,
			"loop_size":             c.Connector.LoopSize,
		},
		"layout": map[string]any{
			"diameter":      c.Layout.Diameter,
			"gap":           c.Layout.Gap,
			"layer_spacing": c.Layout.LayerSpacing,
			"canvas_height": c.Layout.CanvasHeight,
			"margin":        c.Layout.Margin,
			"label_offset":  c.Layout.LabelOffset,
			"label_types":   c.Layout.LabelTypes,
		},
		"viewport": map[string]any{
			"min_scale":     c.Viewport.MinScale,
			"max_scale":     c.Viewport.MaxScale,
			"max_fit_scale": c.Viewport.MaxFitScale,
			"fit_fraction":  c.Viewport.FitFraction,
		},
		"history": map[string]any{
			"size": c.History.Size,
		},
		"export": map[string]any{
			"padding":      c.Export.Padding,
			"background":   c.Export.Background,
			"raster_scale": c.Export.RasterScale,
			"node_fill":    c.Export.NodeFill,
			"text_color":   c.Export.TextColor,
			"font_size":    c.Export.FontSize,
			"corner_round": c.Export.CornerRound,
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"generate": map[string]any{
			"timeout": c.Generate.Timeout.String(),
		},
		"terraform": map[string]any{
			"emit_tfvars":  c.Terraform.EmitTfvars,
			"max_parallel": c.Terraform.MaxParallel,
			"region":       c.Terraform.Region,
		},
	}
}

// Helper to use map as a provider
type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) {
	return p, nil
}

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
