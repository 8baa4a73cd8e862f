package editor

import "errors"

// Sentinel errors for editor sessions.
var (
	// ErrNoMenu is returned when an operation needs the insert menu but it is
	// not open.
	ErrNoMenu = errors.New("insert menu is not open")

	// ErrNoOption is returned when the insert menu has nothing to insert.
	ErrNoOption = errors.New("no option to insert")

	// ErrNotEditable is returned when text is set on a node that has no
	// editable text.
	ErrNotEditable = errors.New("node is not editable")
)
