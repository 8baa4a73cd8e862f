package mutation

import "errors"

// Sentinel errors for tree mutations.
var (
	// ErrEditingInsertion is returned when InsertCode is given an Editing
	// point, which marks a UI mode rather than a place in the tree.
	ErrEditingInsertion = errors.New("editing is not an insertion point")

	// ErrWrongNodeCount is returned when a single-slot insertion point is
	// given anything other than exactly one node.
	ErrWrongNodeCount = errors.New("wrong number of nodes for insertion point")
)
