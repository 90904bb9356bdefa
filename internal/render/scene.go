// Package render draws a document as a self-contained SVG snapshot or a
// supersampled PNG. Both exports share one Scene: the routed connector paths
// and the content bounds, computed once.
package render

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/archsketch/engine/internal/connector"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"github.com/archsketch/engine/internal/geometry"
)

// Options controls both export formats.
type Options struct {
	Padding     float64 `koanf:"padding"`
	Background  string  `koanf:"background"`
	RasterScale float64 `koanf:"raster_scale"`
	NodeFill    string  `koanf:"node_fill"`
	TextColor   string  `koanf:"text_color"`
	FontSize    float64 `koanf:"font_size"`
	CornerRound float64 `koanf:"corner_round"`

	Connector connector.Options `koanf:"-"`
}

// DefaultOptions returns the export defaults.
func DefaultOptions() Options {
	return Options{
		Padding:     24,
		Background:  "#ffffff",
		RasterScale: 2,
		NodeFill:    "#f8fafc",
		TextColor:   "#0f172a",
		FontSize:    12,
		CornerRound: 6,
		Connector:   connector.DefaultOptions(),
	}
}

// Scene is a document prepared for drawing.
type Scene struct {
	Title      string
	Containers []diagram.Container
	Nodes      []diagram.Node
	Paths      []connector.Path

	Content geometry.Bounds // every drawn element
	View    geometry.Bounds // Content plus padding
}

// Build routes the links of d and measures the content. A document with no
// nodes or containers cannot be rendered.
func Build(d diagram.Document, opts Options) (Scene, error) {
	if len(d.Nodes) == 0 && len(d.Containers) == 0 {
		return Scene{}, errors.New(errors.ErrCodeExportRender, "document has no content to render")
	}
	sc := Scene{
		Title:      d.Title,
		Containers: d.Containers,
		Nodes:      d.Nodes,
		Paths:      connector.RouteAll(d, opts.Connector),
	}
	var b geometry.Bounds
	for _, c := range sc.Containers {
		b = b.Union(c.Bounds())
	}
	for _, n := range sc.Nodes {
		b = b.Union(n.Bounds())
	}
	for i := range sc.Paths {
		b = b.Union(sc.Paths[i].Bounds())
	}
	if b.Width() <= 0 && b.Height() <= 0 {
		return Scene{}, errors.New(errors.ErrCodeExportRender, "content has zero extent")
	}
	sc.Content = b
	sc.View = b.Pad(opts.Padding)
	return sc, nil
}

// isDataImage reports whether ref is an inline image. Other references are
// never written, so exports stay self-contained.
func isDataImage(ref string) bool {
	return strings.HasPrefix(ref, "data:image/")
}

// decodeDataImage decodes a base64 data URI into an image.
func decodeDataImage(ref string) (image.Image, error) {
	if !isDataImage(ref) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not an inline image")
	}
	header, payload, ok := strings.Cut(ref, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "inline image is not base64")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode inline image")
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode inline image")
	}
	return img, nil
}
