package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/archsketch/engine/internal/connector"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

// SVG writes d as a standalone SVG document. Styles are inline and only
// data: images are embedded.
func SVG(w io.Writer, d diagram.Document, opts Options) error {
	sc, err := Build(d, opts)
	if err != nil {
		return err
	}
	return sc.WriteSVG(w, opts)
}

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG draws the scene with a viewBox of the padded content bounds.
func (sc Scene) WriteSVG(w io.Writer, opts Options) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	minX, minY := int(math.Floor(sc.View.Min.X)), int(math.Floor(sc.View.Min.Y))
	vw := int(math.Ceil(sc.View.Max.X)) - minX
	vh := int(math.Ceil(sc.View.Max.Y)) - minY
	canvas.Startview(vw, vh, minX, minY, vw, vh)
	if sc.Title != "" {
		canvas.Title(sc.Title)
	}
	canvas.Rect(minX, minY, vw, vh, "fill:"+opts.Background)

	for _, c := range sc.Containers {
		drawContainerSVG(canvas, c, opts)
	}
	for i := range sc.Paths {
		drawPathSVG(canvas, &sc.Paths[i])
	}
	for _, n := range sc.Nodes {
		drawNodeSVG(canvas, n, opts)
	}
	for i := range sc.Paths {
		if l := sc.Paths[i].Label; l != nil {
			drawPlateSVG(canvas, l, sc.Paths[i].Style.Color, opts)
		}
	}
	canvas.End()

	if ew.err != nil {
		return errors.Wrap(errors.ErrCodeExportRender, ew.err, "write svg")
	}
	return nil
}

func drawContainerSVG(canvas *svg.SVG, c diagram.Container, opts Options) {
	st := c.Style.Resolve()
	canvas.Rect(round(c.X), round(c.Y), round(c.Width), round(c.Height),
		"fill:"+st.Fill+";"+strokeStyle(st.BorderColor, st.BorderWidth, diagram.BorderDash(st.Border, st.BorderWidth)))
	if c.Label != "" {
		canvas.Text(round(c.X+8), round(c.Y+opts.FontSize+4), c.Label, textStyle(opts, st.BorderColor, "start"))
	}
}

func drawNodeSVG(canvas *svg.SVG, n diagram.Node, opts Options) {
	st := n.Style.Resolve()
	x, y := round(n.X-n.Width/2), round(n.Y-n.Height/2)
	w, h := round(n.Width), round(n.Height)
	r := round(opts.CornerRound)
	canvas.Roundrect(x, y, w, h, r, r,
		"fill:"+opts.NodeFill+";fill-opacity:"+num(st.FillOpacity)+";"+
			strokeStyle(st.BorderColor, st.BorderWidth, diagram.BorderDash(st.Border, st.BorderWidth)))

	labelY := n.Y + opts.FontSize/3
	if isDataImage(st.Image) {
		canvas.Image(x, y, w, h, st.Image, `preserveAspectRatio="xMidYMid meet"`)
		labelY = n.Y + n.Height/2 + opts.FontSize + 2
	}
	if n.Label != "" {
		canvas.Text(round(n.X), round(labelY), n.Label, textStyle(opts, opts.TextColor, "middle"))
	}
}

func drawPathSVG(canvas *svg.SVG, p *connector.Path) {
	st := p.Style
	canvas.Path(p.D(), "fill:none;"+strokeStyle(st.Color, st.StrokeWidth, st.Dash))
	if st.EndMarker {
		drawMarkerSVG(canvas, p.End, p.ArrowAngle, st)
	}
	if st.StartMarker {
		drawMarkerSVG(canvas, p.Start, p.StartAngle, st)
	}
}

func drawMarkerSVG(canvas *svg.SVG, at r2.Vec, angle float64, st diagram.ResolvedLinkStyle) {
	m := arrowhead(st.Arrowhead, st.StrokeWidth)
	canvas.Gtransform(fmt.Sprintf("translate(%s,%s) rotate(%s)", num(at.X), num(at.Y), num(angle)))
	fill := "fill:none;" + strokeStyle(st.Color, st.StrokeWidth, nil)
	if m.filled {
		fill = "fill:" + st.Color + ";stroke:none"
	}
	canvas.Path(markerD(m), fill)
	canvas.Gend()
}

// markerD returns the outline of m in SVG path-data syntax.
func markerD(m marker) string {
	var b strings.Builder
	if m.circle {
		c, r := m.points[0], m.size/2
		fmt.Fprintf(&b, "M%s,%s a%s,%s 0 1,0 %s,0 a%s,%s 0 1,0 %s,0",
			num(c.X-r), num(c.Y), num(r), num(r), num(2*r), num(r), num(r), num(-2*r))
		return b.String()
	}
	for i, v := range m.points {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		b.WriteString(num(v.X) + "," + num(v.Y))
	}
	if m.closed {
		b.WriteString(" Z")
	}
	return b.String()
}

func drawPlateSVG(canvas *svg.SVG, l *connector.Label, border string, opts Options) {
	x, y := round(l.Anchor.X-l.Width/2), round(l.Anchor.Y-l.Height/2)
	canvas.Roundrect(x, y, round(l.Width), round(l.Height), 3, 3,
		"fill:"+opts.Background+";"+strokeStyle(border, 1, nil))
	canvas.Text(round(l.Anchor.X), round(l.Anchor.Y+opts.FontSize/3), l.Text, textStyle(opts, opts.TextColor, "middle"))
}

func strokeStyle(color string, width float64, dash []float64) string {
	s := "stroke:" + color + ";stroke-width:" + num(width)
	if len(dash) > 0 {
		parts := make([]string, len(dash))
		for i, v := range dash {
			parts[i] = num(v)
		}
		s += ";stroke-dasharray:" + strings.Join(parts, ",")
	}
	return s
}

func textStyle(opts Options, color, anchor string) string {
	return "font-family:monospace;font-size:" + num(opts.FontSize) + "px;fill:" + color + ";text-anchor:" + anchor
}

func round(v float64) int { return int(math.Round(v)) }

func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
