package types

import "errors"

var (
	// ErrDuplicateID is returned when a catalog entry reuses an existing ID.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrWrongParamCount is returned when a generic type is instantiated with
	// the wrong number of parameters.
	ErrWrongParamCount = errors.New("wrong number of type parameters")
)
