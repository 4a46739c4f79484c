// ABOUTME: Bounded undo/redo history of playlist snapshots
// ABOUTME: Each snapshot records the track order and the active index

package player

import "melodyflow/playlist"

// DefaultHistorySize bounds each of the undo and redo stacks
const DefaultHistorySize = 50

// Snapshot is one restorable playlist state
type Snapshot struct {
	Tracks []playlist.Track
	Active int
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Tracks: append([]playlist.Track(nil), s.Tracks...),
		Active: s.Active,
	}
}

// History holds undo and redo stacks with a size limit
type History struct {
	undo    []Snapshot
	redo    []Snapshot
	maxSize int
}

// NewHistory creates a history keeping at most maxSize snapshots per stack
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}

	return &History{maxSize: maxSize}
}

// push appends to a stack, dropping the oldest entry past the limit
func (h *History) push(stack []Snapshot, s Snapshot) []Snapshot {
	stack = append(stack, s.clone())
	if len(stack) > h.maxSize {
		stack = stack[1:]
	}

	return stack
}

// Record saves the state before an edit and invalidates redo
func (h *History) Record(before Snapshot) {
	h.undo = h.push(h.undo, before)
	h.redo = nil
}

// Undo returns the previous state, saving current for redo
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}

	h.redo = h.push(h.redo, current)

	s := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	return s, true
}

// Redo returns the next state, saving current for undo
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}

	h.undo = h.push(h.undo, current)

	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	return s, true
}

// CanUndo reports whether an undo is available
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redo is available
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}
