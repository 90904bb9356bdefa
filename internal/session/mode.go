package session

// Kind is the interaction mode of a session.
type Kind int

const (
	KindSelect       Kind = iota // pick, move and delete elements
	KindAddNode                  // next click places a node
	KindAddContainer             // next click places a container
	KindPan                      // drags move the viewport
	KindResize                   // handles resize Mode.Target
	KindLinkDrawing              // dragging a link out of Mode.Target
	KindViewOnly                 // navigation only, document is read-only
)

// String returns the mode name for display
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindAddNode:
		return "add-node"
	case KindAddContainer:
		return "add-container"
	case KindPan:
		return "pan"
	case KindResize:
		return "resize"
	case KindLinkDrawing:
		return "link-drawing"
	case KindViewOnly:
		return "view-only"
	default:
		return "unknown"
	}
}

// Mode is a Kind plus the node it applies to, for resize and link-drawing.
type Mode struct {
	Kind   Kind
	Target string
}

func (m Mode) String() string {
	if m.Target != "" {
		return m.Kind.String() + "(" + m.Target + ")"
	}
	return m.Kind.String()
}

// Handle is a resize grip on a node's bounding box.
type Handle int

const (
	HandleN Handle = iota
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
	HandleNW
)

// edges reports which sides of the box a handle drags.
func (h Handle) edges() (left, right, top, bottom bool) {
	switch h {
	case HandleN:
		return false, false, true, false
	case HandleNE:
		return false, true, true, false
	case HandleE:
		return false, true, false, false
	case HandleSE:
		return false, true, false, true
	case HandleS:
		return false, false, false, true
	case HandleSW:
		return true, false, false, true
	case HandleW:
		return true, false, false, false
	default:
		return true, false, true, false
	}
}
