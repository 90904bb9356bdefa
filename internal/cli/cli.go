// Package cli implements the diagramctl command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/archsketch/engine/internal/config"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/logger"
)

const appName = "diagramctl"

// CLI holds shared state for all commands.
type CLI struct {
	Out    io.Writer
	ErrOut io.Writer
	Logger *slog.Logger
	Config *config.Config

	cfgPath string
	verbose bool
}

// New creates a CLI writing results to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	cfg := config.Default()
	return &CLI{
		Out:    out,
		ErrOut: errOut,
		Logger: logger.Discard(),
		Config: &cfg,
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
// Configuration is loaded before any subcommand runs; common keys are also
// accepted as flags (e.g. --terraform.region).
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "diagramctl validates, lays out and exports architecture diagrams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), c.cfgPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			level := logger.ParseLevel(cfg.Log.Level)
			if c.verbose {
				level = slog.LevelDebug
			}
			if cfg.Log.Format == "json" {
				c.Logger = logger.NewJSON(c.ErrOut, level)
			} else {
				c.Logger = logger.NewConsole(c.ErrOut, level)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.cfgPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	pf.String("log.level", c.Config.Log.Level, "log level: debug, info, warn, error")
	pf.String("log.format", c.Config.Log.Format, "log format: console or json")
	pf.Float64("layout.layer_spacing", c.Config.Layout.LayerSpacing, "horizontal distance between layers")
	pf.Float64("export.padding", c.Config.Export.Padding, "padding around exported content")
	pf.String("export.background", c.Config.Export.Background, "export background color")
	pf.String("terraform.region", c.Config.Terraform.Region, "AWS region when the diagram names none")
	pf.Bool("terraform.emit_tfvars", c.Config.Terraform.EmitTfvars, "write terraform.tfvars")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.terraformCommand())
	root.AddCommand(c.inspectCommand())

	return root
}

// load reads and imports a document from path, or stdin for "-".
func (c *CLI) load(path string) (diagram.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return diagram.Document{}, fmt.Errorf("read input: %w", err)
	}
	doc, err := diagram.Import(data)
	if err != nil {
		return diagram.Document{}, err
	}
	c.Logger.Debug("loaded diagram", "path", path,
		"nodes", len(doc.Nodes), "links", len(doc.Links), "containers", len(doc.Containers))
	return doc, nil
}

// write sends the output of fn to path, or to c.Out when path is empty or "-".
func (c *CLI) write(path string, fn func(io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(c.Out)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.Logger.Info("wrote", "path", path)
	return nil
}
