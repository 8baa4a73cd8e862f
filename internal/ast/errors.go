package ast

import "errors"

var (
	// ErrNodeNotFound is returned when no node in the tree has the requested ID.
	ErrNodeNotFound = errors.New("node not found")

	// ErrParentNotFound is returned when the requested node has no parent.
	ErrParentNotFound = errors.New("parent not found")

	// ErrUnexpectedNode is returned when a node has the wrong kind for the
	// operation or slot it is used in.
	ErrUnexpectedNode = errors.New("unexpected node")
)
