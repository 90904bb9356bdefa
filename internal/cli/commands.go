package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/archsketch/engine/internal/dependency"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"github.com/archsketch/engine/internal/infra"
	"github.com/archsketch/engine/internal/render"
	"github.com/archsketch/engine/internal/session"
	"github.com/archsketch/engine/internal/terraform"
)

const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatJSON = "json"
)

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a diagram against the exchange format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load(args[0])
			if err != nil {
				var verrs diagram.ValidationErrors
				if stderrors.As(err, &verrs) {
					for _, ve := range verrs {
						printError(c.Out, ve.ElementID, ve.Message, ve.Suggestion)
					}
					return fmt.Errorf("%s: %d problem(s)", args[0], len(verrs))
				}
				return err
			}
			if _, _, err := dependency.Resolve(&doc); err != nil {
				printWarning(c.Out, "", errors.UserMessage(err))
			}
			printSuccess(c.Out, "%s: %d nodes, %d links, %d containers",
				args[0], len(doc.Nodes), len(doc.Links), len(doc.Containers))
			return nil
		},
	}
}

func (c *CLI) layoutCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Arrange nodes in layers and write the result",
		Long:  "Nodes without a layer get the depth of their link tier; every node is then placed in its layer column.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load(args[0])
			if err != nil {
				return err
			}
			s := c.newSession(doc)
			defer s.Close()
			if err := s.ApplyLayout(0, 0); err != nil {
				return err
			}
			data, err := diagram.Export(s.Document())
			if err != nil {
				return err
			}
			return c.write(output, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) exportCommand() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Render a diagram to SVG, PNG or normalized JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
					format = strings.ToLower(ext)
				}
			}
			doc, err := c.load(args[0])
			if err != nil {
				return err
			}
			opts := c.Config.Export
			switch format {
			case formatSVG:
				return c.write(output, func(w io.Writer) error { return render.SVG(w, doc, opts) })
			case formatPNG:
				if output == "" || output == "-" {
					return fmt.Errorf("png export needs --output")
				}
				return c.write(output, func(w io.Writer) error { return render.PNG(w, doc, opts) })
			case formatJSON:
				data, err := diagram.Export(doc)
				if err != nil {
					return err
				}
				return c.write(output, func(w io.Writer) error {
					_, err := w.Write(data)
					return err
				})
			default:
				return fmt.Errorf("unknown format %q (use svg, png or json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg, png, json")
	return cmd
}

func (c *CLI) terraformCommand() *cobra.Command {
	var (
		output  string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "terraform [file]",
		Short: "Generate Terraform configuration from a cloud architecture diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load(args[0])
			if err != nil {
				return err
			}
			opts := c.Config.Terraform
			opts.Logger = c.Logger
			res, err := infra.New(opts).Export(&doc)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(c.Out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				for _, e := range res.Errors {
					printError(c.Out, e.ElementID, e.Message, e.Suggestion)
				}
				for _, w := range res.Warnings {
					printWarning(c.Out, w.ElementID, w.Message)
				}
			}
			if !res.Success {
				return fmt.Errorf("terraform export failed with %d error(s)", len(res.Errors))
			}

			paths, err := terraform.WriteDir(output, res.TerraformFiles)
			if err != nil {
				return err
			}
			if !jsonOut {
				for _, p := range paths {
					printSuccess(c.Out, "wrote %s", p)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "output", "output directory for Terraform files")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the export result as JSON")
	return cmd
}

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "List the elements of a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, styleTitle.Render(doc.Title))
			fmt.Fprintln(c.Out, elementTable(doc))
			return nil
		},
	}
}

// elementTable lists nodes, containers and links with their geometry.
func elementTable(d diagram.Document) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("KIND", "ID", "TYPE", "LABEL", "POSITION", "SIZE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
	for _, n := range d.Nodes {
		typ := n.Type
		if n.Layer != nil {
			typ += " L" + strconv.Itoa(*n.Layer)
		}
		t.Row("node", n.ID, typ, n.Label, point(n.X, n.Y), size(n.Width, n.Height))
	}
	for _, ct := range d.Containers {
		t.Row("container", ct.ID, string(ct.Type), ct.Label, point(ct.X, ct.Y), size(ct.Width, ct.Height))
	}
	for _, l := range d.Links {
		t.Row("link", l.ID, l.Source+" → "+l.Target, l.Label, "", "")
	}
	return t.String()
}

func point(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64)
}

func size(w, h float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + "x" + strconv.FormatFloat(h, 'f', -1, 64)
}

func (c *CLI) newSession(doc diagram.Document) *session.Session {
	return session.New(doc, session.Options{
		Logger:      c.Logger,
		HistorySize: c.Config.History.Size,
		Viewport:    c.Config.Viewport,
		Layout:      c.Config.Layout,
	})
}
