package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// TypeSpec describes a type constructor: a built-in, a struct, an enum or a
// generic parameter.
type TypeSpec struct {
	ID        uuid.UUID
	Name      string
	Symbol    string
	NumParams int
	Generic   bool
}

// Field is a struct field definition.
type Field struct {
	ID   uuid.UUID
	Name string
	Type Type
}

// Struct is a struct definition.
type Struct struct {
	ID     uuid.UUID
	Name   string
	Symbol string
	Fields []Field
}

// Field returns the field with the given ID.
func (s *Struct) Field(id uuid.UUID) (Field, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Variant is an enum variant. A nil Type means the variant carries the next
// type parameter of the enum.
type Variant struct {
	ID   uuid.UUID
	Name string
	Type *Type
}

// Enum is an enum definition.
type Enum struct {
	ID       uuid.UUID
	Name     string
	Symbol   string
	Variants []Variant
}

// NumParams is the number of generic variants, which is the arity of the
// enum's typespec.
func (e *Enum) NumParams() int {
	n := 0
	for _, v := range e.Variants {
		if v.Type == nil {
			n++
		}
	}
	return n
}

// VariantType pairs a variant with its concrete type.
type VariantType struct {
	Variant Variant
	Type    Type
}

// VariantTypes resolves every variant's type given the enum's type
// parameters. Generic variants consume params in declaration order.
func (e *Enum) VariantTypes(params []Type) ([]VariantType, error) {
	if len(params) != e.NumParams() {
		return nil, fmt.Errorf("enum %s takes %d params, got %d: %w", e.Name, e.NumParams(), len(params), ErrWrongParamCount)
	}
	out := make([]VariantType, 0, len(e.Variants))
	next := 0
	for _, v := range e.Variants {
		var typ Type
		if v.Type != nil {
			typ = *v.Type
		} else {
			typ = params[next]
			next++
		}
		out = append(out, VariantType{Variant: v, Type: typ})
	}
	return out, nil
}

// ArgumentDefinition is a declared function argument.
type ArgumentDefinition struct {
	ID   uuid.UUID
	Name string
	Type Type
}

// Function is a callable known to the environment. BodyID is the root block
// of a user-defined function, or uuid.Nil for builtins.
type Function struct {
	ID          uuid.UUID
	Name        string
	Description string
	Args        []ArgumentDefinition
	Returns     Type
	BodyID      uuid.UUID
}

// Catalog is an in-memory Env.
type Catalog struct {
	specs     map[uuid.UUID]*TypeSpec
	specOrder []uuid.UUID

	structs     map[uuid.UUID]*Struct
	structOrder []uuid.UUID

	enums     map[uuid.UUID]*Enum
	enumOrder []uuid.UUID

	functions map[uuid.UUID]*Function
	funcOrder []uuid.UUID

	fields map[uuid.UUID]*Field
	args   map[uuid.UUID]*ArgumentDefinition
}

// NewCatalog returns a catalog with the built-in typespecs registered.
func NewCatalog() *Catalog {
	c := &Catalog{
		specs:     make(map[uuid.UUID]*TypeSpec),
		structs:   make(map[uuid.UUID]*Struct),
		enums:     make(map[uuid.UUID]*Enum),
		functions: make(map[uuid.UUID]*Function),
		fields:    make(map[uuid.UUID]*Field),
		args:      make(map[uuid.UUID]*ArgumentDefinition),
	}
	for _, spec := range Builtins() {
		c.specs[spec.ID] = spec
		c.specOrder = append(c.specOrder, spec.ID)
	}
	return c
}

// Builtins returns fresh copies of the built-in typespecs.
func Builtins() []*TypeSpec {
	return []*TypeSpec{
		{ID: NullID, Name: "Null", Symbol: "∅"},
		{ID: BooleanID, Name: "Boolean", Symbol: "?"},
		{ID: StringID, Name: "String", Symbol: "\""},
		{ID: NumberID, Name: "Number", Symbol: "#"},
		{ID: ListID, Name: "List", Symbol: "[]", NumParams: 1},
		{ID: MapID, Name: "Map", Symbol: "{}", NumParams: 2},
		{ID: ErrorID, Name: "Error", Symbol: "!"},
		{ID: AnyID, Name: "Any", Symbol: "*"},
	}
}

func (c *Catalog) addSpec(spec *TypeSpec) error {
	if _, ok := c.specs[spec.ID]; ok {
		return fmt.Errorf("typespec %s (%s): %w", spec.Name, spec.ID, ErrDuplicateID)
	}
	c.specs[spec.ID] = spec
	c.specOrder = append(c.specOrder, spec.ID)
	return nil
}

// AddGeneric registers a generic parameter typespec.
func (c *Catalog) AddGeneric(id uuid.UUID, name string) error {
	return c.addSpec(&TypeSpec{ID: id, Name: name, Symbol: "T", Generic: true})
}

// AddStruct registers a struct and its typespec.
func (c *Catalog) AddStruct(s *Struct) error {
	if err := c.addSpec(&TypeSpec{ID: s.ID, Name: s.Name, Symbol: s.Symbol}); err != nil {
		return err
	}
	c.structs[s.ID] = s
	c.structOrder = append(c.structOrder, s.ID)
	for i := range s.Fields {
		c.fields[s.Fields[i].ID] = &s.Fields[i]
	}
	return nil
}

// AddEnum registers an enum and its typespec.
func (c *Catalog) AddEnum(e *Enum) error {
	if err := c.addSpec(&TypeSpec{ID: e.ID, Name: e.Name, Symbol: e.Symbol, NumParams: e.NumParams()}); err != nil {
		return err
	}
	c.enums[e.ID] = e
	c.enumOrder = append(c.enumOrder, e.ID)
	return nil
}

// AddFunction registers a function and its argument definitions.
func (c *Catalog) AddFunction(f *Function) error {
	if _, ok := c.functions[f.ID]; ok {
		return fmt.Errorf("function %s (%s): %w", f.Name, f.ID, ErrDuplicateID)
	}
	c.functions[f.ID] = f
	c.funcOrder = append(c.funcOrder, f.ID)
	for i := range f.Args {
		c.args[f.Args[i].ID] = &f.Args[i]
	}
	return nil
}

func (c *Catalog) FindFunction(id uuid.UUID) (*Function, bool) {
	f, ok := c.functions[id]
	return f, ok
}

func (c *Catalog) Functions() []*Function {
	out := make([]*Function, 0, len(c.funcOrder))
	for _, id := range c.funcOrder {
		out = append(out, c.functions[id])
	}
	return out
}

func (c *Catalog) FindStruct(id uuid.UUID) (*Struct, bool) {
	s, ok := c.structs[id]
	return s, ok
}

func (c *Catalog) Structs() []*Struct {
	out := make([]*Struct, 0, len(c.structOrder))
	for _, id := range c.structOrder {
		out = append(out, c.structs[id])
	}
	return out
}

func (c *Catalog) FindStructField(id uuid.UUID) (*Field, bool) {
	f, ok := c.fields[id]
	return f, ok
}

func (c *Catalog) FindEnum(id uuid.UUID) (*Enum, bool) {
	e, ok := c.enums[id]
	return e, ok
}

func (c *Catalog) Enums() []*Enum {
	out := make([]*Enum, 0, len(c.enumOrder))
	for _, id := range c.enumOrder {
		out = append(out, c.enums[id])
	}
	return out
}

func (c *Catalog) FindTypeSpec(id uuid.UUID) (*TypeSpec, bool) {
	s, ok := c.specs[id]
	return s, ok
}

func (c *Catalog) TypeSpecs() []*TypeSpec {
	out := make([]*TypeSpec, 0, len(c.specOrder))
	for _, id := range c.specOrder {
		out = append(out, c.specs[id])
	}
	return out
}

func (c *Catalog) IsGeneric(id uuid.UUID) bool {
	s, ok := c.specs[id]
	return ok && s.Generic
}

func (c *Catalog) ArgType(argDefID uuid.UUID) (Type, bool) {
	a, ok := c.args[argDefID]
	if !ok {
		return Type{}, false
	}
	return a.Type, true
}

func (c *Catalog) CodeTakesArgs(rootID uuid.UUID) []ArgumentDefinition {
	var out []ArgumentDefinition
	for _, id := range c.funcOrder {
		f := c.functions[id]
		if f.BodyID != uuid.Nil && f.BodyID == rootID {
			out = append(out, f.Args...)
		}
	}
	return out
}

func (c *Catalog) TypesMatch(a, b Type) bool {
	return Match(a, b)
}

// Format renders t with typespec names, e.g. List<String>.
func Format(env Env, t Type) string {
	name := t.SpecID.String()
	if spec, ok := env.FindTypeSpec(t.SpecID); ok {
		name = spec.Name
	}
	if len(t.Params) == 0 {
		return name
	}
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = Format(env, p)
	}
	return name + "<" + strings.Join(params, ", ") + ">"
}

// SortedFunctions returns env's functions ordered by ID string.
func SortedFunctions(env Env) []*Function {
	fns := env.Functions()
	sort.SliceStable(fns, func(i, j int) bool { return fns[i].ID.String() < fns[j].ID.String() })
	return fns
}
