package session

import "strings"

// Key is a key press with modifiers.
type Key struct {
	Name  string // "Escape", "Delete", "Backspace" or a single character
	Ctrl  bool
	Shift bool
}

// HandleKey maps editor shortcuts onto session operations. Unbound keys are
// ignored.
func (s *Session) HandleKey(k Key) error {
	name := k.Name
	if len(name) == 1 {
		name = strings.ToLower(name)
	}
	switch {
	case name == "Escape":
		s.Cancel()
		return nil
	case name == "Delete" || name == "Backspace":
		return s.DeleteSelection()
	case k.Ctrl && name == "z" && k.Shift, k.Ctrl && name == "y":
		return s.Redo()
	case k.Ctrl && name == "z":
		return s.Undo()
	case k.Ctrl && name == "d":
		_, err := s.DuplicateSelection()
		return err
	case k.Ctrl:
		return nil
	case name == "p":
		s.ToggleViewOnly()
		return nil
	case name == "v":
		return s.SetMode(KindSelect)
	case name == "n":
		return s.SetMode(KindAddNode)
	case name == "c":
		return s.SetMode(KindAddContainer)
	case name == "h":
		return s.SetMode(KindPan)
	}
	return nil
}
