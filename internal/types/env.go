package types

import "github.com/google/uuid"

// Env is the read-only query interface over the environment catalogue:
// functions, structs, enums and typespecs known to the program.
type Env interface {
	FindFunction(id uuid.UUID) (*Function, bool)
	Functions() []*Function
	FindStruct(id uuid.UUID) (*Struct, bool)
	Structs() []*Struct
	FindStructField(id uuid.UUID) (*Field, bool)
	FindEnum(id uuid.UUID) (*Enum, bool)
	Enums() []*Enum
	FindTypeSpec(id uuid.UUID) (*TypeSpec, bool)
	TypeSpecs() []*TypeSpec
	IsGeneric(id uuid.UUID) bool
	// ArgType resolves an argument definition ID to its declared type.
	ArgType(argDefID uuid.UUID) (Type, bool)
	// CodeTakesArgs lists the arguments available inside the code block
	// rooted at rootID.
	CodeTakesArgs(rootID uuid.UUID) []ArgumentDefinition
	TypesMatch(a, b Type) bool
}

var _ Env = (*Catalog)(nil)
