package workspace

import "errors"

var (
	// ErrInvalidWorkspace is returned when a workspace file fails to decode or
	// validate.
	ErrInvalidWorkspace = errors.New("invalid workspace")

	// ErrUnknownName is returned when code names a type, function, field,
	// variant or variable that is not declared.
	ErrUnknownName = errors.New("unknown name")

	// ErrInvalidType is returned for a malformed type expression.
	ErrInvalidType = errors.New("invalid type expression")

	// ErrInvalidNode is returned when a node sets zero or several kinds.
	ErrInvalidNode = errors.New("invalid node")
)
