package engine

import "github.com/linguameet/whiteboard/internal/document"

// history keeps document snapshots for undo and redo. Documents are
// copy-on-write values, so a snapshot is just the old value.
type history struct {
	limit int
	undo  []document.Document
	redo  []document.Document
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = 100
	}
	return &history{limit: limit}
}

// record stores prev as the state to return to and forgets the redo stack.
func (h *history) record(prev document.Document) {
	h.undo = append(h.undo, prev)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = h.redo[:0]
}

func (h *history) stepBack(current document.Document) (document.Document, bool) {
	if len(h.undo) == 0 {
		return current, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return prev, true
}

func (h *history) stepForward(current document.Document) (document.Document, bool) {
	if len(h.redo) == 0 {
		return current, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return next, true
}

func (h *history) reset() {
	h.undo = nil
	h.redo = nil
}

func (h *history) canUndo() bool { return len(h.undo) > 0 }
func (h *history) canRedo() bool { return len(h.redo) > 0 }
