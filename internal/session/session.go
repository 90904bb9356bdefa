// Package session is the edit-state machine of the editor: interaction
// mode, selection, pointer gestures, viewport and a linear undo history over
// the document.
//
// A Session is driven from a single event loop and is not safe for
// concurrent use.
package session

import (
	"context"
	"log/slog"
	"slices"

	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"github.com/archsketch/engine/internal/generate"
	"github.com/archsketch/engine/internal/layout"
	"github.com/archsketch/engine/internal/logger"
	"github.com/archsketch/engine/internal/viewport"
	"gonum.org/v1/gonum/spatial/r2"
)

// Options configures a Session. Zero fields take defaults.
type Options struct {
	IDs      diagram.IDSource
	Events   EventSource
	Logger   *slog.Logger
	OnChange func(diagram.Document) // called after every commit, undo and redo

	HistorySize     int
	NodeSize        r2.Vec
	ContainerSize   r2.Vec
	ContainerType   diagram.ContainerType
	DuplicateOffset r2.Vec
	MinNodeSize     float64

	Viewport viewport.Options
	Layout   layout.Options
}

func (o Options) withDefaults() Options {
	if o.IDs == nil {
		o.IDs = diagram.UUIDSource{}
	}
	if o.Events == nil {
		o.Events = NewDispatcher()
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	if o.NodeSize == (r2.Vec{}) {
		o.NodeSize = r2.Vec{X: 120, Y: 60}
	}
	if o.ContainerSize == (r2.Vec{}) {
		o.ContainerSize = r2.Vec{X: 320, Y: 200}
	}
	if o.ContainerType == "" {
		o.ContainerType = diagram.ContainerTier
	}
	if o.DuplicateOffset == (r2.Vec{}) {
		o.DuplicateOffset = r2.Vec{X: 20, Y: 20}
	}
	if o.MinNodeSize <= 0 {
		o.MinNodeSize = 10
	}
	if o.Viewport == (viewport.Options{}) {
		o.Viewport = viewport.DefaultOptions()
	}
	if o.Layout.Diameter == 0 {
		o.Layout = layout.DefaultOptions()
	}
	return o
}

// Session holds the document being edited and all ephemeral editor state.
type Session struct {
	opts    Options
	log     *slog.Logger
	events  EventSource
	history *History

	doc  diagram.Document  // committed state
	live *diagram.Document // transient state while a gesture runs

	mode      Mode
	selection []string
	view      viewport.Transform

	gesture  *gesture
	releases []func()
}

// New starts a session on doc, which becomes the first history entry.
func New(doc diagram.Document, opts Options) *Session {
	opts = opts.withDefaults()
	doc = doc.Normalize()
	return &Session{
		opts:    opts,
		log:     opts.Logger,
		events:  opts.Events,
		history: NewHistory(doc, opts.HistorySize),
		doc:     doc,
		mode:    Mode{Kind: KindSelect},
		view:    viewport.Identity(),
	}
}

// Document returns the document to draw, including uncommitted gesture edits.
func (s *Session) Document() diagram.Document {
	if s.live != nil {
		return *s.live
	}
	return s.doc
}

// Committed returns the last committed document.
func (s *Session) Committed() diagram.Document { return s.doc }

func (s *Session) Mode() Mode                   { return s.mode }
func (s *Session) View() viewport.Transform     { return s.view }
func (s *Session) History() *History            { return s.history }
func (s *Session) CanUndo() bool                { return s.mode.Kind != KindViewOnly && s.history.CanUndo() }
func (s *Session) CanRedo() bool                { return s.mode.Kind != KindViewOnly && s.history.CanRedo() }
func (s *Session) Selection() []string          { return slices.Clone(s.selection) }
func (s *Session) IsSelected(id string) bool    { return slices.Contains(s.selection, id) }
func (s *Session) SetView(t viewport.Transform) { s.view = t }

func (s *Session) readOnly() error {
	if s.mode.Kind == KindViewOnly {
		return errors.New(errors.ErrCodeReadOnly, "document is read-only in view mode")
	}
	return nil
}

func (s *Session) setMode(m Mode) {
	if m == s.mode {
		return
	}
	s.log.Debug("mode change", "from", s.mode.String(), "to", m.String())
	s.mode = m
}

// SetMode switches between the toolbar modes: select, add-node,
// add-container and pan. Any running gesture is cancelled.
func (s *Session) SetMode(k Kind) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	switch k {
	case KindSelect, KindAddNode, KindAddContainer, KindPan:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "mode %s cannot be entered directly", k)
	}
	s.cancelGesture()
	s.setMode(Mode{Kind: k})
	return nil
}

// ActivateNode handles a double interaction on a node: it enters resize mode
// for the node, or leaves it when the node is already being resized.
func (s *Session) ActivateNode(id string) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	if s.doc.NodeByID(id) == nil {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	s.cancelGesture()
	if s.mode.Kind == KindResize && s.mode.Target == id {
		s.setMode(Mode{Kind: KindSelect})
		return nil
	}
	s.selection = []string{id}
	s.setMode(Mode{Kind: KindResize, Target: id})
	return nil
}

// ToggleViewOnly enters or leaves view-only mode. Entering clears the
// selection and cancels any gesture; leaving returns to select.
func (s *Session) ToggleViewOnly() {
	s.cancelGesture()
	if s.mode.Kind == KindViewOnly {
		s.setMode(Mode{Kind: KindSelect})
		return
	}
	s.selection = nil
	s.setMode(Mode{Kind: KindViewOnly})
}

// Cancel discards any running gesture without a history entry and returns
// to select mode, leaving view-only as well.
func (s *Session) Cancel() {
	s.cancelGesture()
	s.setMode(Mode{Kind: KindSelect})
}

// Close releases every listener the session holds. The session must not be
// used for gestures afterwards.
func (s *Session) Close() {
	s.cancelGesture()
	s.release()
}

// Select replaces the selection with ids that exist in the document.
func (s *Session) Select(ids ...string) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	s.selection = s.selection[:0:0]
	for _, id := range ids {
		if s.doc.Has(id) && !slices.Contains(s.selection, id) {
			s.selection = append(s.selection, id)
		}
	}
	return nil
}

// ToggleSelect adds or removes id from the selection.
func (s *Session) ToggleSelect(id string) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	if i := slices.Index(s.selection, id); i >= 0 {
		s.selection = slices.Delete(slices.Clone(s.selection), i, i+1)
		return nil
	}
	if !s.doc.Has(id) {
		return errors.New(errors.ErrCodeNotFound, "element %q not found", id)
	}
	s.selection = append(slices.Clone(s.selection), id)
	return nil
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() { s.selection = nil }

// Click handles a primary press-and-release at a screen point: placing an
// element in the add modes, otherwise hit-testing for selection. Shift
// toggles instead of replacing.
func (s *Session) Click(e PointerEvent) error {
	p := s.view.ToDocument(e.Vec())
	switch s.mode.Kind {
	case KindViewOnly, KindPan:
		return nil
	case KindAddNode:
		_, err := s.AddNodeAt(p, "", "")
		return err
	case KindAddContainer:
		_, err := s.AddContainerAt(p, "")
		return err
	}
	id, ok := s.doc.NodeAt(p)
	if !ok {
		id, ok = s.doc.ContainerAt(p)
	}
	switch {
	case !ok && !e.Shift:
		s.ClearSelection()
		if s.mode.Kind == KindResize {
			s.setMode(Mode{Kind: KindSelect})
		}
		return nil
	case !ok:
		return nil
	case e.Shift:
		return s.ToggleSelect(id)
	default:
		return s.Select(id)
	}
}

// commit records next as a new history entry and notifies the host.
func (s *Session) commit(next diagram.Document, action string) {
	s.history.Push(next)
	s.doc = next
	s.pruneSelection()
	cur, total := s.history.Stats()
	s.log.Debug("commit", "action", action, "entry", cur, "entries", total)
	s.notify()
}

func (s *Session) notify() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(s.doc)
	}
}

func (s *Session) pruneSelection() {
	s.selection = slices.DeleteFunc(slices.Clone(s.selection), func(id string) bool { return !s.doc.Has(id) })
	if s.mode.Kind == KindResize && s.doc.NodeByID(s.mode.Target) == nil {
		s.setMode(Mode{Kind: KindSelect})
	}
}

// prepare is run before every mutation: it refuses in view-only and drops
// any uncommitted gesture state.
func (s *Session) prepare() error {
	if err := s.readOnly(); err != nil {
		return err
	}
	if s.gesture != nil {
		s.cancelGesture()
	}
	return nil
}

// AddNodeAt places a new node centered at p (document coordinates) and
// selects it. In add-node mode the session returns to select.
func (s *Session) AddNodeAt(p r2.Vec, typ, label string) (string, error) {
	if err := s.prepare(); err != nil {
		return "", err
	}
	id := s.doc.NewID(s.opts.IDs, diagram.NodePrefix)
	next, err := s.doc.AddNode(diagram.Node{
		ID: id, Type: typ, Label: label,
		X: p.X, Y: p.Y, Width: s.opts.NodeSize.X, Height: s.opts.NodeSize.Y,
	})
	if err != nil {
		return "", err
	}
	s.selection = []string{id}
	s.commit(next, "add node")
	if s.mode.Kind == KindAddNode {
		s.setMode(Mode{Kind: KindSelect})
	}
	return id, nil
}

// AddContainerAt places a new container centered at p. Nodes whose centers
// fall inside it become its children.
func (s *Session) AddContainerAt(p r2.Vec, label string) (string, error) {
	if err := s.prepare(); err != nil {
		return "", err
	}
	id := s.doc.NewID(s.opts.IDs, diagram.ContainerPrefix)
	c := diagram.Container{
		ID: id, Type: s.opts.ContainerType, Label: label,
		X: p.X - s.opts.ContainerSize.X/2, Y: p.Y - s.opts.ContainerSize.Y/2,
		Width: s.opts.ContainerSize.X, Height: s.opts.ContainerSize.Y,
		Children: []string{},
	}
	box := c.Bounds()
	for i := range s.doc.Nodes {
		if box.Contains(s.doc.Nodes[i].Center()) {
			c.Children = append(c.Children, s.doc.Nodes[i].ID)
		}
	}
	next, err := s.doc.AddContainer(c)
	if err != nil {
		return "", err
	}
	s.selection = []string{id}
	s.commit(next, "add container")
	if s.mode.Kind == KindAddContainer {
		s.setMode(Mode{Kind: KindSelect})
	}
	return id, nil
}

// AddLink connects source to target with a fresh link.
func (s *Session) AddLink(source, target string) (string, error) {
	if err := s.prepare(); err != nil {
		return "", err
	}
	id := s.doc.NewID(s.opts.IDs, diagram.LinkPrefix)
	next, err := s.doc.AddLink(diagram.Link{ID: id, Source: source, Target: target})
	if err != nil {
		return "", err
	}
	s.commit(next, "add link")
	return id, nil
}

// DeleteSelection removes the selected elements. Links of removed nodes go
// with them; children of removed containers stay.
func (s *Session) DeleteSelection() error {
	if err := s.prepare(); err != nil {
		return err
	}
	if len(s.selection) == 0 {
		return nil
	}
	s.commit(s.doc.Remove(s.selection...), "delete")
	return nil
}

// DuplicateSelection copies the selected nodes and containers, offset by the
// duplicate delta, and selects the copies.
func (s *Session) DuplicateSelection() ([]string, error) {
	if err := s.prepare(); err != nil {
		return nil, err
	}
	next, ids := s.doc.Duplicate(s.selection, s.opts.DuplicateOffset, s.opts.IDs)
	if len(ids) == 0 {
		return nil, nil
	}
	s.selection = ids
	s.commit(next, "duplicate")
	return ids, nil
}

// MoveSelection translates the selection by delta in document units.
func (s *Session) MoveSelection(delta r2.Vec) error {
	if err := s.prepare(); err != nil {
		return err
	}
	if len(s.selection) == 0 || delta == (r2.Vec{}) {
		return nil
	}
	s.commit(s.doc.Translate(s.selection, delta), "move")
	return nil
}

// ResizeNode sets a node's size around its center.
func (s *Session) ResizeNode(id string, w, h float64) error {
	return s.apply("resize", func(d diagram.Document) (diagram.Document, error) { return d.ResizeNode(id, w, h) })
}

func (s *Session) SetNodeStyle(id string, st diagram.NodeStyle) error {
	return s.apply("style node", func(d diagram.Document) (diagram.Document, error) { return d.SetNodeStyle(id, st) })
}

func (s *Session) SetLinkStyle(id string, st diagram.LinkStyle) error {
	return s.apply("style link", func(d diagram.Document) (diagram.Document, error) { return d.SetLinkStyle(id, st) })
}

func (s *Session) SetContainerStyle(id string, st diagram.ContainerStyle) error {
	return s.apply("style container", func(d diagram.Document) (diagram.Document, error) { return d.SetContainerStyle(id, st) })
}

func (s *Session) SetLabel(id, label string) error {
	return s.apply("label", func(d diagram.Document) (diagram.Document, error) { return d.SetLabel(id, label) })
}

func (s *Session) SetTitle(title string) error {
	return s.apply("title", func(d diagram.Document) (diagram.Document, error) { return d.SetTitle(title), nil })
}

func (s *Session) apply(action string, fn func(diagram.Document) (diagram.Document, error)) error {
	if err := s.prepare(); err != nil {
		return err
	}
	next, err := fn(s.doc)
	if err != nil {
		return err
	}
	s.commit(next, action)
	return nil
}

// Import replaces the document with an exchange-format payload. On failure
// the document and selection are left exactly as they were.
func (s *Session) Import(data []byte) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	doc, err := diagram.Import(data)
	if err != nil {
		s.log.Warn("import rejected", "error", err)
		return err
	}
	return s.replace(doc, "import")
}

// LoadGenerated asks svc for a document and commits it like an import.
func (s *Session) LoadGenerated(ctx context.Context, svc generate.Service, prompt string) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	doc, err := svc.Generate(ctx, generate.Request{Prompt: prompt})
	if err != nil {
		s.log.Warn("generation failed", "error", err)
		return err
	}
	if err := s.replace(doc, "generate"); err != nil {
		s.log.Warn("generated document rejected", "error", err)
		return err
	}
	return nil
}

// replace checks doc and makes it the current document with an empty
// selection. An invalid doc leaves the session untouched.
func (s *Session) replace(doc diagram.Document, action string) error {
	if errs := diagram.Validate(&doc); len(errs) > 0 {
		return errors.Wrap(errors.ErrCodeInvalidDocument, diagram.ValidationErrors(errs), "%s: document failed validation", action)
	}
	doc = doc.Normalize()
	s.cancelGesture()
	if s.mode.Kind != KindSelect {
		s.setMode(Mode{Kind: KindSelect})
	}
	s.selection = nil
	s.commit(doc, action)
	return nil
}

// ApplyLayout assigns missing layers from link order, runs the layered
// layout and fits the viewport to a w x h screen when both are positive.
func (s *Session) ApplyLayout(w, h float64) error {
	if err := s.prepare(); err != nil {
		return err
	}
	withLayers, err := layout.AssignLayers(s.doc, s.opts.Layout)
	if err != nil {
		return err
	}
	res := layout.Layered(withLayers.Nodes, s.opts.Layout)
	s.commit(res.Apply(withLayers), "layout")
	if w > 0 && h > 0 {
		s.view = s.opts.Viewport.Fit(res.Bounds(), w, h)
	}
	return nil
}

// Undo steps back one history entry.
func (s *Session) Undo() error {
	return s.step(s.history.Undo, "undo")
}

// Redo steps forward one history entry.
func (s *Session) Redo() error {
	return s.step(s.history.Redo, "redo")
}

func (s *Session) step(move func() (diagram.Document, bool), action string) error {
	if err := s.prepare(); err != nil {
		return err
	}
	doc, ok := move()
	if !ok {
		return nil
	}
	s.doc = doc
	s.pruneSelection()
	s.log.Debug(action)
	s.notify()
	return nil
}

// Zoom scales the view around a screen point. Allowed in every mode.
func (s *Session) Zoom(factor float64, at PointerEvent) {
	s.view = s.opts.Viewport.ZoomAt(s.view, factor, at.Vec())
}

// Fit frames the whole document in a w x h screen.
func (s *Session) Fit(w, h float64) {
	d := s.Document()
	s.view = s.opts.Viewport.Fit(d.Bounds(), w, h)
}
