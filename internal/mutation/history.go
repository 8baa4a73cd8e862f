package mutation

import "github.com/arbor-lang/arbor/internal/ast"

// Snapshot is a saved tree with the cursor that was on it.
type Snapshot struct {
	Root   *ast.Block
	Cursor ast.ID
}

// History keeps whole-tree snapshots for undo and redo.
//
// current points at the snapshot an undo would restore; -1 means there is
// nothing to undo. When the history is in step with the live tree, the slot
// after current holds the live tree, so redo returns the slot after that.
type History struct {
	snapshots []Snapshot
	current   int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{current: -1}
}

// LogNewMutation records root as the state before a new edit. Anything that
// could have been redone is discarded.
func (h *History) LogNewMutation(root *ast.Block, cursor ast.ID) {
	h.snapshots = append(h.snapshots[:h.current+1], Snapshot{Root: root, Cursor: cursor})
	h.current = len(h.snapshots) - 1
}

// Undo returns the state before the last edit. If the live tree is not
// already saved right after that state, it is saved there first so Redo can
// return to it.
func (h *History) Undo(live *ast.Block, cursor ast.ID) (Snapshot, bool) {
	if h.current < 0 {
		recordHistory("undo", false)
		return Snapshot{}, false
	}
	prev := h.snapshots[h.current]

	next := h.current + 1
	if next >= len(h.snapshots) || !sameTree(h.snapshots[next].Root, live) {
		h.LogNewMutation(live, cursor)
		h.current--
	}
	h.current--
	recordHistory("undo", true)
	return prev, true
}

// Redo returns the state an Undo left, if there is one. The snapshot stays in
// the history so repeated redos walk forward one state at a time.
func (h *History) Redo() (Snapshot, bool) {
	idx := h.current + 2
	if idx >= len(h.snapshots) {
		recordHistory("redo", false)
		return Snapshot{}, false
	}
	h.current++
	recordHistory("redo", true)
	return h.snapshots[idx], true
}

// CanUndo reports whether Undo would return anything.
func (h *History) CanUndo() bool { return h.current >= 0 }

// CanRedo reports whether Redo would return anything.
func (h *History) CanRedo() bool { return h.current+2 < len(h.snapshots) }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.snapshots) }

func sameTree(a, b *ast.Block) bool {
	return a == b || ast.Equal(a, b)
}
