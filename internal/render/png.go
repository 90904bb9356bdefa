package render

import (
	"image"
	"image/png"
	"io"
	"math"

	"github.com/archsketch/engine/internal/connector"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"gonum.org/v1/gonum/spatial/r2"
)

// PNG writes d as a PNG rasterized at opts.RasterScale pixels per unit.
func PNG(w io.Writer, d diagram.Document, opts Options) error {
	sc, err := Build(d, opts)
	if err != nil {
		return err
	}
	img, err := sc.Raster(opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeExportRender, err, "encode png")
	}
	return nil
}

// Raster draws the scene into an image covering the padded bounds.
func (sc Scene) Raster(opts Options) (image.Image, error) {
	scale := opts.RasterScale
	if scale <= 0 {
		scale = 1
	}
	width := int(math.Ceil(sc.View.Width() * scale))
	height := int(math.Ceil(sc.View.Height() * scale))
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeExportRender, "raster has no area")
	}

	face, err := fontFace(opts.FontSize)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	setColor(dc, opts.Background, 1)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-sc.View.Min.X, -sc.View.Min.Y)
	dc.SetFontFace(face)

	for _, c := range sc.Containers {
		drawContainerPNG(dc, c, opts)
	}
	for i := range sc.Paths {
		drawPathPNG(dc, &sc.Paths[i])
	}
	for _, n := range sc.Nodes {
		drawNodePNG(dc, n, opts)
	}
	for i := range sc.Paths {
		if l := sc.Paths[i].Label; l != nil {
			drawPlatePNG(dc, l, sc.Paths[i].Style.Color, opts)
		}
	}
	return dc.Image(), nil
}

func fontFace(size float64) (font.Face, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportRender, err, "parse font")
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// setColor sets a hex color with alpha. Unparseable colors draw black.
func setColor(dc *gg.Context, hex string, alpha float64) {
	c, err := colorful.Hex(hex)
	if err != nil {
		dc.SetRGBA(0, 0, 0, alpha)
		return
	}
	dc.SetRGBA(c.R, c.G, c.B, alpha)
}

func stroke(dc *gg.Context, color string, width float64, dash []float64) {
	setColor(dc, color, 1)
	dc.SetLineWidth(width)
	dc.SetDash(dash...)
	dc.Stroke()
	dc.SetDash()
}

func drawContainerPNG(dc *gg.Context, c diagram.Container, opts Options) {
	st := c.Style.Resolve()
	if st.Fill != "none" {
		dc.DrawRectangle(c.X, c.Y, c.Width, c.Height)
		setColor(dc, st.Fill, 1)
		dc.Fill()
	}
	dc.DrawRectangle(c.X, c.Y, c.Width, c.Height)
	stroke(dc, st.BorderColor, st.BorderWidth, diagram.BorderDash(st.Border, st.BorderWidth))
	if c.Label != "" {
		setColor(dc, st.BorderColor, 1)
		dc.DrawString(c.Label, c.X+8, c.Y+opts.FontSize+4)
	}
}

func drawNodePNG(dc *gg.Context, n diagram.Node, opts Options) {
	st := n.Style.Resolve()
	x, y := n.X-n.Width/2, n.Y-n.Height/2
	dc.DrawRoundedRectangle(x, y, n.Width, n.Height, opts.CornerRound)
	setColor(dc, opts.NodeFill, st.FillOpacity)
	dc.Fill()
	dc.DrawRoundedRectangle(x, y, n.Width, n.Height, opts.CornerRound)
	stroke(dc, st.BorderColor, st.BorderWidth, diagram.BorderDash(st.Border, st.BorderWidth))

	labelY := n.Y
	if isDataImage(st.Image) {
		if img, err := decodeDataImage(st.Image); err == nil {
			drawFitted(dc, img, x, y, n.Width, n.Height)
			labelY = n.Y + n.Height/2 + opts.FontSize
		}
	}
	if n.Label != "" {
		setColor(dc, opts.TextColor, 1)
		dc.DrawStringAnchored(n.Label, n.X, labelY, 0.5, 0.5)
	}
}

// drawFitted draws img scaled to fit the box, keeping its aspect ratio.
func drawFitted(dc *gg.Context, img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 {
		return
	}
	s := math.Min(w/iw, h/ih)
	dc.Push()
	dc.Translate(x+(w-iw*s)/2, y+(h-ih*s)/2)
	dc.Scale(s, s)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

func drawPathPNG(dc *gg.Context, p *connector.Path) {
	st := p.Style
	dc.MoveTo(p.Start.X, p.Start.Y)
	if st.Line == diagram.LineCurved {
		c0, c1 := p.Control[0], p.Control[1]
		dc.CubicTo(c0.X, c0.Y, c1.X, c1.Y, p.End.X, p.End.Y)
	} else {
		for _, v := range p.Polyline()[1:] {
			dc.LineTo(v.X, v.Y)
		}
	}
	stroke(dc, st.Color, st.StrokeWidth, st.Dash)

	if st.EndMarker {
		drawMarkerPNG(dc, p.End, p.ArrowAngle, st)
	}
	if st.StartMarker {
		drawMarkerPNG(dc, p.Start, p.StartAngle, st)
	}
}

func drawMarkerPNG(dc *gg.Context, at r2.Vec, angle float64, st diagram.ResolvedLinkStyle) {
	m := arrowhead(st.Arrowhead, st.StrokeWidth)
	dc.Push()
	defer dc.Pop()
	dc.Translate(at.X, at.Y)
	dc.Rotate(gg.Radians(angle))

	if m.circle {
		dc.DrawCircle(m.points[0].X, m.points[0].Y, m.size/2)
	} else {
		dc.NewSubPath()
		for i, v := range m.points {
			if i == 0 {
				dc.MoveTo(v.X, v.Y)
			} else {
				dc.LineTo(v.X, v.Y)
			}
		}
		if m.closed {
			dc.ClosePath()
		}
	}
	if m.filled {
		setColor(dc, st.Color, 1)
		dc.Fill()
		return
	}
	stroke(dc, st.Color, st.StrokeWidth, nil)
}

func drawPlatePNG(dc *gg.Context, l *connector.Label, border string, opts Options) {
	x, y := l.Anchor.X-l.Width/2, l.Anchor.Y-l.Height/2
	dc.DrawRoundedRectangle(x, y, l.Width, l.Height, 3)
	setColor(dc, opts.Background, 1)
	dc.Fill()
	dc.DrawRoundedRectangle(x, y, l.Width, l.Height, 3)
	stroke(dc, border, 1, nil)
	setColor(dc, opts.TextColor, 1)
	dc.DrawStringAnchored(l.Text, l.Anchor.X, l.Anchor.Y, 0.5, 0.5)
}
