package types

import (
	"strings"

	"github.com/google/uuid"
)

// Built-in typespec IDs. These are fixed so saved programs keep resolving.
var (
	NullID    = uuid.MustParse("daa07233-b887-4512-b06e-d6a53d415213")
	BooleanID = uuid.MustParse("d00d688f-0c9e-43af-a19f-ab02e46b4c2c")
	StringID  = uuid.MustParse("e0e8271e-5f94-4d00-bad9-46a2ce4d6568")
	NumberID  = uuid.MustParse("6dbe9096-4ff5-42f1-b2ff-36eacc3ced59")
	ListID    = uuid.MustParse("4c726a5e-d9c2-481b-bbe8-ca5319176aad")
	MapID     = uuid.MustParse("1f0e6c0a-7b55-4d3e-8a52-2c9a6f4b8e71")
	ErrorID   = uuid.MustParse("a6ad92ed-1b21-44fe-9ad0-e08326acd6f6")
	AnyID     = uuid.MustParse("8b83b98f-2b2c-42c3-b819-bb6b29972320")
)

// Type represents a reference to a typespec plus its ordered type parameters.
type Type struct {
	SpecID uuid.UUID
	Params []Type
}

// Of constructs a type from a typespec ID and parameters.
func Of(specID uuid.UUID, params ...Type) Type {
	return Type{SpecID: specID, Params: params}
}

func NullType() Type    { return Of(NullID) }
func BooleanType() Type { return Of(BooleanID) }
func StringType() Type  { return Of(StringID) }
func NumberType() Type  { return Of(NumberID) }
func ErrorType() Type   { return Of(ErrorID) }
func AnyType() Type     { return Of(AnyID) }

// ListOf returns List<elem>.
func ListOf(elem Type) Type { return Of(ListID, elem) }

// MapOf returns Map<key, value>.
func MapOf(key, value Type) Type { return Of(MapID, key, value) }

// IsZero reports whether t references no typespec at all.
func (t Type) IsZero() bool { return t.SpecID == uuid.Nil }

// Is reports whether t is an instance of the given typespec, ignoring parameters.
func (t Type) Is(specID uuid.UUID) bool { return t.SpecID == specID }

// ListElem returns the element type when t is a list.
func (t Type) ListElem() (Type, bool) {
	if t.SpecID != ListID || len(t.Params) != 1 {
		return Type{}, false
	}
	return t.Params[0], true
}

// MapTypes returns the key and value types when t is a map.
func (t Type) MapTypes() (Type, Type, bool) {
	if t.SpecID != MapID || len(t.Params) != 2 {
		return Type{}, Type{}, false
	}
	return t.Params[0], t.Params[1], true
}

// Equal reports exact structural equality. Any is not a wildcard here.
func (t Type) Equal(o Type) bool {
	if t.SpecID != o.SpecID || len(t.Params) != len(o.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

// Hash returns a deterministic ID for the type, stable across runs.
func (t Type) Hash() uuid.UUID {
	parts := []string{t.SpecID.String()}
	for _, p := range t.Params {
		parts = append(parts, p.Hash().String())
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, ":")))
}

// String returns a debug form built from typespec IDs.
func (t Type) String() string {
	if len(t.Params) == 0 {
		return t.SpecID.String()
	}
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return t.SpecID.String() + "<" + strings.Join(params, ", ") + ">"
}

// Clone returns a deep copy of t.
func (t Type) Clone() Type {
	if t.Params == nil {
		return Type{SpecID: t.SpecID}
	}
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Clone()
	}
	return Type{SpecID: t.SpecID, Params: params}
}

// MatchesSpec reports whether t is compatible with the given typespec ID.
// Any on either side matches everything.
func (t Type) MatchesSpec(specID uuid.UUID) bool {
	if t.SpecID == AnyID || specID == AnyID {
		return true
	}
	return t.SpecID == specID
}

// Match reports whether a value of type b can be used where a is expected.
// Any on either side matches, at every parameter depth.
func Match(a, b Type) bool {
	if a.SpecID == AnyID || b.SpecID == AnyID {
		return true
	}
	if a.SpecID != b.SpecID || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !Match(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}
