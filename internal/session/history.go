package session

import "github.com/archsketch/engine/internal/diagram"

// History is a linear list of document snapshots. Documents are immutable
// values, so snapshots are stored without copying.
type History struct {
	states  []diagram.Document
	current int // index of the state on screen
	max     int // maximum number of states to keep
}

// NewHistory creates a history whose first entry is initial.
func NewHistory(initial diagram.Document, max int) *History {
	if max <= 0 {
		max = 100
	}
	states := make([]diagram.Document, 0, min(max, 16))
	return &History{states: append(states, initial), max: max}
}

// Push records a new state. Anything after the current state is discarded;
// past capacity the oldest state is dropped.
func (h *History) Push(d diagram.Document) {
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}
	h.states = append(h.states, d)
	if len(h.states) > h.max {
		h.states = h.states[1:]
	} else {
		h.current++
	}
}

// CanUndo returns true if we can undo
func (h *History) CanUndo() bool { return h.current > 0 }

// CanRedo returns true if we can redo
func (h *History) CanRedo() bool { return h.current < len(h.states)-1 }

// Undo steps back one state.
func (h *History) Undo() (diagram.Document, bool) {
	if !h.CanUndo() {
		return h.Current(), false
	}
	h.current--
	return h.states[h.current], true
}

// Redo steps forward one state.
func (h *History) Redo() (diagram.Document, bool) {
	if !h.CanRedo() {
		return h.Current(), false
	}
	h.current++
	return h.states[h.current], true
}

// Current returns the state on screen.
func (h *History) Current() diagram.Document { return h.states[h.current] }

// Stats returns current position and total states
func (h *History) Stats() (current, total int) {
	return h.current + 1, len(h.states)
}
