package session

import (
	"math"

	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

type gestureKind int

const (
	gestureLink gestureKind = iota
	gestureMove
	gestureResize
	gesturePan
)

// gesture is the payload of a running pointer interaction.
type gesture struct {
	kind   gestureKind
	origin r2.Vec // document point where it began (last screen point for pan)
	base   diagram.Document
	panned r2.Vec // screen delta applied to the view so far

	// link drawing
	source  string
	pointer r2.Vec
	hover   string

	// resize
	target string
	handle Handle
	rect   [4]float64 // left, top, right, bottom at start
}

// LinkPreview is the transient state of a link being drawn.
type LinkPreview struct {
	Source  string
	Pointer r2.Vec // document coordinates
	Hover   string // node under the pointer, if any
}

// Preview returns the link being drawn, if any.
func (s *Session) Preview() (LinkPreview, bool) {
	if s.gesture == nil || s.gesture.kind != gestureLink {
		return LinkPreview{}, false
	}
	g := s.gesture
	return LinkPreview{Source: g.source, Pointer: g.pointer, Hover: g.hover}, true
}

// Gesturing reports whether a pointer gesture is running.
func (s *Session) Gesturing() bool { return s.gesture != nil }

func (s *Session) listen(onMove, onUp func(PointerEvent)) {
	s.releases = append(s.releases, s.events.OnPointerMove(onMove), s.events.OnPointerUp(onUp))
}

func (s *Session) release() {
	for _, r := range s.releases {
		r()
	}
	s.releases = nil
}

// endGesture drops gesture state and listeners, keeping the mode.
func (s *Session) endGesture() {
	s.release()
	s.gesture = nil
	s.live = nil
}

// cancelGesture undoes transient effects of the running gesture.
func (s *Session) cancelGesture() {
	g := s.gesture
	if g == nil {
		s.release()
		return
	}
	if g.kind == gesturePan {
		s.view = s.view.Pan(r2.Scale(-1, g.panned))
	}
	s.endGesture()
	if g.kind == gestureLink && s.mode.Kind == KindLinkDrawing {
		s.setMode(Mode{Kind: KindSelect})
	}
}

func (s *Session) begin(g *gesture) {
	s.cancelGesture()
	s.gesture = g
	s.listen(s.onMove, s.onUp)
}

func (s *Session) onMove(e PointerEvent) {
	g := s.gesture
	if g == nil {
		return
	}
	switch g.kind {
	case gestureLink:
		g.pointer = s.view.ToDocument(e.Vec())
		g.hover, _ = s.doc.NodeAt(g.pointer)
	case gestureMove:
		next := g.base.Translate(s.selection, r2.Sub(s.view.ToDocument(e.Vec()), g.origin))
		s.live = &next
	case gestureResize:
		if next, ok := s.resized(g, e); ok {
			s.live = &next
		}
	case gesturePan:
		d := r2.Sub(e.Vec(), g.origin)
		s.view = s.view.Pan(d)
		g.panned = r2.Add(g.panned, d)
		g.origin = e.Vec()
	}
}

func (s *Session) onUp(e PointerEvent) {
	g := s.gesture
	if g == nil {
		return
	}
	s.onMove(e)
	live := s.live
	s.endGesture()

	switch g.kind {
	case gestureLink:
		s.setMode(Mode{Kind: KindSelect})
		if g.hover == "" || g.hover == g.source {
			return
		}
		if _, err := s.AddLink(g.source, g.hover); err != nil {
			s.log.Warn("link not created", "source", g.source, "target", g.hover, "error", err)
		}
	case gestureMove:
		if live != nil && r2.Sub(s.view.ToDocument(e.Vec()), g.origin) != (r2.Vec{}) {
			s.commit(*live, "move")
		}
	case gestureResize:
		if live != nil {
			s.commit(*live, "resize")
		}
	}
}

// BeginLink starts dragging a link out of source at a screen point. The
// link is created on release over a different node.
func (s *Session) BeginLink(source string, at PointerEvent) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	if s.mode.Kind != KindSelect {
		return errors.New(errors.ErrCodeInvalidInput, "links are drawn from select mode, not %s", s.mode)
	}
	if s.doc.NodeByID(source) == nil {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", source)
	}
	p := s.view.ToDocument(at.Vec())
	s.begin(&gesture{kind: gestureLink, source: source, pointer: p, origin: p})
	s.gesture.hover, _ = s.doc.NodeAt(p)
	s.setMode(Mode{Kind: KindLinkDrawing, Target: source})
	return nil
}

// BeginMove starts dragging the selection. The document updates live and
// one history entry is recorded on release.
func (s *Session) BeginMove(at PointerEvent) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	if s.mode.Kind != KindSelect {
		return errors.New(errors.ErrCodeInvalidInput, "cannot move in %s mode", s.mode)
	}
	if len(s.selection) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nothing selected")
	}
	s.begin(&gesture{kind: gestureMove, origin: s.view.ToDocument(at.Vec()), base: s.doc})
	return nil
}

// BeginResize starts dragging a handle of the node in resize mode.
func (s *Session) BeginResize(h Handle, at PointerEvent) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	if s.mode.Kind != KindResize {
		return errors.New(errors.ErrCodeInvalidInput, "not in resize mode")
	}
	n := s.doc.NodeByID(s.mode.Target)
	if n == nil {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", s.mode.Target)
	}
	s.begin(&gesture{
		kind:   gestureResize,
		origin: s.view.ToDocument(at.Vec()),
		base:   s.doc,
		target: n.ID,
		handle: h,
		rect:   [4]float64{n.X - n.Width/2, n.Y - n.Height/2, n.X + n.Width/2, n.Y + n.Height/2},
	})
	return nil
}

// BeginPan starts dragging the viewport. Allowed in pan and view-only modes.
func (s *Session) BeginPan(at PointerEvent) error {
	if s.mode.Kind != KindPan && s.mode.Kind != KindViewOnly {
		return errors.New(errors.ErrCodeInvalidInput, "cannot pan in %s mode", s.mode)
	}
	s.begin(&gesture{kind: gesturePan, origin: at.Vec()})
	return nil
}

// resized computes the live document for a resize drag. Dragged edges stop
// short of making the node smaller than the minimum size.
func (s *Session) resized(g *gesture, e PointerEvent) (diagram.Document, bool) {
	d := r2.Sub(s.view.ToDocument(e.Vec()), g.origin)
	l, t, r, b := g.rect[0], g.rect[1], g.rect[2], g.rect[3]
	left, right, top, bottom := g.handle.edges()
	minSize := s.opts.MinNodeSize
	if left {
		l = math.Min(l+d.X, r-minSize)
	}
	if right {
		r = math.Max(r+d.X, l+minSize)
	}
	if top {
		t = math.Min(t+d.Y, b-minSize)
	}
	if bottom {
		b = math.Max(b+d.Y, t+minSize)
	}
	next, err := g.base.SetNodeBounds(g.target, (l+r)/2, (t+b)/2, r-l, b-t)
	if err != nil {
		return diagram.Document{}, false
	}
	return next, true
}
