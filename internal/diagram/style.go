package diagram

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// BorderStyle is the stroke pattern of a node or container outline.
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// Arrowhead is the marker drawn at a link end.
type Arrowhead string

const (
	ArrowTriangle Arrowhead = "triangle"
	ArrowOpen     Arrowhead = "open"
	ArrowDiamond  Arrowhead = "diamond"
	ArrowCircle   Arrowhead = "circle"
)

// LineStyle selects how a link is routed between its anchors.
type LineStyle string

const (
	LineStraight   LineStyle = "straight"
	LineCurved     LineStyle = "curved"
	LineElbow      LineStyle = "elbow"
	LineOrthogonal LineStyle = "orthogonal"
)

// Defaults applied when a style field is unset.
const (
	DefaultCurvature       = 0.2
	DefaultLinkWidth       = 2.0
	DefaultLinkColor       = "#475569"
	DefaultNodeBorderWidth = 1.5
	DefaultNodeBorderColor = "#334155"
	DefaultContainerWidth  = 1.0
	DefaultContainerColor  = "#94a3b8"
)

// NodeStyle holds optional per-node presentation fields. Unset fields are
// nil or empty and take defaults in Resolve.
type NodeStyle struct {
	Border      BorderStyle `json:"border,omitempty"`
	BorderWidth *float64    `json:"borderWidth,omitempty"`
	BorderColor string      `json:"borderColor,omitempty"`
	FillOpacity *float64    `json:"fillOpacity,omitempty"`
	Image       string      `json:"image,omitempty"`
}

// ResolvedNodeStyle is a NodeStyle with every field populated.
type ResolvedNodeStyle struct {
	Border      BorderStyle
	BorderWidth float64
	BorderColor string
	FillOpacity float64
	Image       string
}

// Resolve fills unset fields with defaults.
func (s NodeStyle) Resolve() ResolvedNodeStyle {
	return ResolvedNodeStyle{
		Border:      orBorder(s.Border, BorderSolid),
		BorderWidth: orFloat(s.BorderWidth, DefaultNodeBorderWidth),
		BorderColor: orString(s.BorderColor, DefaultNodeBorderColor),
		FillOpacity: clamp01(orFloat(s.FillOpacity, 1)),
		Image:       s.Image,
	}
}

// LinkStyle holds optional per-link presentation and routing fields.
type LinkStyle struct {
	Curvature   *float64  `json:"curvature,omitempty"`
	Offset      *float64  `json:"offset,omitempty"`
	Arrowhead   Arrowhead `json:"arrowhead,omitempty"`
	Line        LineStyle `json:"line,omitempty"`
	StartMarker *bool     `json:"startMarker,omitempty"`
	EndMarker   *bool     `json:"endMarker,omitempty"`
	StrokeWidth *float64  `json:"strokeWidth,omitempty"`
	Color       string    `json:"color,omitempty"`
	Dash        string    `json:"dash,omitempty"`
	Angle       *float64  `json:"angle,omitempty"`
}

// ResolvedLinkStyle is a LinkStyle with every field populated. Angle is only
// meaningful when HasAngle is set.
type ResolvedLinkStyle struct {
	Curvature   float64
	Offset      float64
	Arrowhead   Arrowhead
	Line        LineStyle
	StartMarker bool
	EndMarker   bool
	StrokeWidth float64
	Color       string
	Dash        []float64
	Angle       float64
	HasAngle    bool
}

// Resolve fills unset fields with defaults. Straight lines never bow.
func (s LinkStyle) Resolve() ResolvedLinkStyle {
	r := ResolvedLinkStyle{
		Curvature:   orFloat(s.Curvature, DefaultCurvature),
		Offset:      orFloat(s.Offset, 0),
		Arrowhead:   s.Arrowhead,
		Line:        s.Line,
		StartMarker: s.StartMarker != nil && *s.StartMarker,
		EndMarker:   s.EndMarker == nil || *s.EndMarker,
		StrokeWidth: orFloat(s.StrokeWidth, DefaultLinkWidth),
		Color:       orString(s.Color, DefaultLinkColor),
		Dash:        ParseDash(s.Dash),
	}
	if r.Arrowhead == "" {
		r.Arrowhead = ArrowTriangle
	}
	if r.Line == "" {
		r.Line = LineCurved
	}
	if r.Line == LineStraight {
		r.Curvature = 0
	}
	if s.Angle != nil {
		r.Angle, r.HasAngle = *s.Angle, true
	}
	return r
}

// ContainerStyle holds optional per-container presentation fields.
type ContainerStyle struct {
	Border      BorderStyle `json:"border,omitempty"`
	BorderWidth *float64    `json:"borderWidth,omitempty"`
	BorderColor string      `json:"borderColor,omitempty"`
	Fill        string      `json:"fill,omitempty"`
}

// ResolvedContainerStyle is a ContainerStyle with every field populated.
type ResolvedContainerStyle struct {
	Border      BorderStyle
	BorderWidth float64
	BorderColor string
	Fill        string
}

// Resolve fills unset fields with defaults.
func (s ContainerStyle) Resolve() ResolvedContainerStyle {
	return ResolvedContainerStyle{
		Border:      orBorder(s.Border, BorderDashed),
		BorderWidth: orFloat(s.BorderWidth, DefaultContainerWidth),
		BorderColor: orString(s.BorderColor, DefaultContainerColor),
		Fill:        orString(s.Fill, "none"),
	}
}

// BorderDash returns the dash pattern for a border style at the given width.
func BorderDash(b BorderStyle, width float64) []float64 {
	switch b {
	case BorderDashed:
		return []float64{4 * width, 3 * width}
	case BorderDotted:
		return []float64{width, 2 * width}
	default:
		return nil
	}
}

var dashSep = regexp.MustCompile(`[\s,]+`)

// ParseDash parses an SVG-style dash list ("6 4" or "6,4"). Malformed or
// non-positive entries yield no dash.
func ParseDash(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return nil
	}
	var out []float64
	for _, part := range dashSep.Split(s, -1) {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v <= 0 {
			return nil
		}
		out = append(out, v)
	}
	return out
}

func orFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func orString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orBorder(b, def BorderStyle) BorderStyle {
	if b == "" {
		return def
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func knownBorder(b BorderStyle) bool {
	switch b {
	case "", BorderSolid, BorderDashed, BorderDotted:
		return true
	}
	return false
}

var colorName = regexp.MustCompile(`^[A-Za-z]+$`)

// ValidColor accepts empty, a #rgb or #rrggbb hex color, or a bare color
// keyword such as "none" or "steelblue".
func ValidColor(s string) bool {
	if s == "" || colorName.MatchString(s) {
		return true
	}
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	_, err := colorful.Hex(s)
	return err == nil
}

// badColor returns the first invalid color among fields, keyed by field name.
func badColor(fields ...[2]string) (field, value string, ok bool) {
	for _, f := range fields {
		if !ValidColor(f[1]) {
			return f[0], f[1], true
		}
	}
	return "", "", false
}

func (s NodeStyle) colors() [][2]string {
	return [][2]string{{"borderColor", s.BorderColor}}
}

func (s LinkStyle) colors() [][2]string {
	return [][2]string{{"color", s.Color}}
}

func (s ContainerStyle) colors() [][2]string {
	return [][2]string{{"borderColor", s.BorderColor}, {"fill", s.Fill}}
}

func knownArrowhead(a Arrowhead) bool {
	switch a {
	case "", ArrowTriangle, ArrowOpen, ArrowDiamond, ArrowCircle:
		return true
	}
	return false
}

func knownLine(l LineStyle) bool {
	switch l {
	case "", LineStraight, LineCurved, LineElbow, LineOrthogonal:
		return true
	}
	return false
}

// Float returns a pointer to v, for populating optional style fields.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
