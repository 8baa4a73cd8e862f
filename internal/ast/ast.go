package ast

import (
	"github.com/google/uuid"

	"github.com/arbor-lang/arbor/internal/types"
)

// ID identifies a node. It is minted once and survives every rewrite.
type ID = uuid.UUID

// NoID is the zero ID, used where a cursor or target is absent.
var NoID ID

// NewID mints a fresh random ID.
func NewID() ID { return uuid.New() }

// MatchVariableID derives the ID of the pseudo-local a match branch binds for
// its variant. It is deterministic so references survive rebuilds.
func MatchVariableID(matchID, variantID ID) ID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(matchID.String()+":"+variantID.String()))
}

// Kind names a node variant.
type Kind string

const (
	KindBlock              Kind = "Block"
	KindAssignment         Kind = "Assignment"
	KindFunctionCall       Kind = "FunctionCall"
	KindFunctionReference  Kind = "FunctionReference"
	KindArgument           Kind = "Argument"
	KindStructLiteral      Kind = "StructLiteral"
	KindStructLiteralField Kind = "StructLiteralField"
	KindVariableReference  Kind = "VariableReference"
	KindStringLiteral      Kind = "StringLiteral"
	KindNumberLiteral      Kind = "NumberLiteral"
	KindNullLiteral        Kind = "NullLiteral"
	KindListLiteral        Kind = "ListLiteral"
	KindMapLiteral         Kind = "MapLiteral"
	KindConditional        Kind = "Conditional"
	KindMatch              Kind = "Match"
	KindStructFieldGet     Kind = "StructFieldGet"
	KindListIndex          Kind = "ListIndex"
	KindPlaceholder        Kind = "Placeholder"
)

// Node represents any code node. The set of implementations is closed.
type Node interface {
	ID() ID
	Kind() Kind
	node()
}

type base struct {
	id ID
}

func (b base) ID() ID { return b.id }
func (base) node()    {}

// Block represents an ordered sequence of expressions forming a scope.
type Block struct {
	base
	Exprs []Node
}

// NewBlock constructs a block node.
func NewBlock(id ID, exprs ...Node) *Block {
	return &Block{base: base{id}, Exprs: exprs}
}

func (*Block) Kind() Kind { return KindBlock }

// Assignment binds Name to the value of Expr for later siblings.
type Assignment struct {
	base
	Name string
	Expr Node
}

// NewAssignment constructs an assignment node.
func NewAssignment(id ID, name string, expr Node) *Assignment {
	return &Assignment{base: base{id}, Name: name, Expr: expr}
}

func (*Assignment) Kind() Kind { return KindAssignment }

// FunctionCall represents a call of Func with one Argument per parameter.
type FunctionCall struct {
	base
	Func *FunctionReference
	Args []*Argument
}

// NewFunctionCall constructs a function call node.
func NewFunctionCall(id ID, fn *FunctionReference, args ...*Argument) *FunctionCall {
	return &FunctionCall{base: base{id}, Func: fn, Args: args}
}

func (*FunctionCall) Kind() Kind { return KindFunctionCall }

// FunctionReference points at a function in the environment.
type FunctionReference struct {
	base
	FunctionID ID
}

// NewFunctionReference constructs a function reference node.
func NewFunctionReference(id ID, functionID ID) *FunctionReference {
	return &FunctionReference{base: base{id}, FunctionID: functionID}
}

func (*FunctionReference) Kind() Kind { return KindFunctionReference }

// Argument is the slot for one argument definition. It always holds exactly
// one expression.
type Argument struct {
	base
	ArgDefID ID
	Expr     Node
}

// NewArgument constructs an argument slot.
func NewArgument(id ID, argDefID ID, expr Node) *Argument {
	return &Argument{base: base{id}, ArgDefID: argDefID, Expr: expr}
}

func (*Argument) Kind() Kind { return KindArgument }

// StructLiteral builds a value of the struct StructID.
type StructLiteral struct {
	base
	StructID ID
	Fields   []*StructLiteralField
}

// NewStructLiteral constructs a struct literal node.
func NewStructLiteral(id ID, structID ID, fields ...*StructLiteralField) *StructLiteral {
	return &StructLiteral{base: base{id}, StructID: structID, Fields: fields}
}

func (*StructLiteral) Kind() Kind { return KindStructLiteral }

// StructLiteralField is the slot for one struct field. It always holds
// exactly one expression.
type StructLiteralField struct {
	base
	FieldID ID
	Expr    Node
}

// NewStructLiteralField constructs a struct literal field slot.
func NewStructLiteralField(id ID, fieldID ID, expr Node) *StructLiteralField {
	return &StructLiteralField{base: base{id}, FieldID: fieldID, Expr: expr}
}

func (*StructLiteralField) Kind() Kind { return KindStructLiteralField }

// VariableReference points at an assignment, an argument definition or a
// match variant binding by ID.
type VariableReference struct {
	base
	AssignmentID ID
}

// NewVariableReference constructs a variable reference node.
func NewVariableReference(id ID, assignmentID ID) *VariableReference {
	return &VariableReference{base: base{id}, AssignmentID: assignmentID}
}

func (*VariableReference) Kind() Kind { return KindVariableReference }

// StringLiteral is a string constant.
type StringLiteral struct {
	base
	Value string
}

func NewStringLiteral(id ID, value string) *StringLiteral {
	return &StringLiteral{base: base{id}, Value: value}
}

func (*StringLiteral) Kind() Kind { return KindStringLiteral }

// NumberLiteral is an integer constant.
type NumberLiteral struct {
	base
	Value int64
}

func NewNumberLiteral(id ID, value int64) *NumberLiteral {
	return &NumberLiteral{base: base{id}, Value: value}
}

func (*NumberLiteral) Kind() Kind { return KindNumberLiteral }

// NullLiteral is the null constant.
type NullLiteral struct {
	base
}

func NewNullLiteral(id ID) *NullLiteral {
	return &NullLiteral{base: base{id}}
}

func (*NullLiteral) Kind() Kind { return KindNullLiteral }

// ListLiteral is an ordered list of elements of ElementType.
type ListLiteral struct {
	base
	ElementType types.Type
	Elements    []Node
}

// NewListLiteral constructs a list literal node.
func NewListLiteral(id ID, elementType types.Type, elements ...Node) *ListLiteral {
	return &ListLiteral{base: base{id}, ElementType: elementType, Elements: elements}
}

func (*ListLiteral) Kind() Kind { return KindListLiteral }

// MapLiteral is an empty map of KeyType to ValueType.
type MapLiteral struct {
	base
	KeyType   types.Type
	ValueType types.Type
}

// NewMapLiteral constructs a map literal node.
func NewMapLiteral(id ID, keyType, valueType types.Type) *MapLiteral {
	return &MapLiteral{base: base{id}, KeyType: keyType, ValueType: valueType}
}

func (*MapLiteral) Kind() Kind { return KindMapLiteral }

// Conditional evaluates TrueBranch when Condition holds, else ElseBranch if
// present.
type Conditional struct {
	base
	Condition  Node
	TrueBranch *Block
	ElseBranch *Block
}

// NewConditional constructs a conditional node. elseBranch may be nil.
func NewConditional(id ID, condition Node, trueBranch, elseBranch *Block) *Conditional {
	return &Conditional{base: base{id}, Condition: condition, TrueBranch: trueBranch, ElseBranch: elseBranch}
}

func (*Conditional) Kind() Kind { return KindConditional }

// MatchBranch is the body evaluated for one enum variant.
type MatchBranch struct {
	VariantID ID
	Body      *Block
}

// Match dispatches on the variant of Scrutinee. Branches are kept ordered by
// the string form of their variant ID.
type Match struct {
	base
	Scrutinee Node
	Branches  []MatchBranch
}

// NewMatch constructs a match node, ordering branches by variant ID.
func NewMatch(id ID, scrutinee Node, branches ...MatchBranch) *Match {
	sorted := append([]MatchBranch(nil), branches...)
	sortBranches(sorted)
	return &Match{base: base{id}, Scrutinee: scrutinee, Branches: sorted}
}

func (*Match) Kind() Kind { return KindMatch }

// Branch returns the body for the given variant.
func (m *Match) Branch(variantID ID) (*Block, bool) {
	for _, b := range m.Branches {
		if b.VariantID == variantID {
			return b.Body, true
		}
	}
	return nil, false
}

// StructFieldGet reads FieldID out of StructExpr.
type StructFieldGet struct {
	base
	StructExpr Node
	FieldID    ID
}

func NewStructFieldGet(id ID, structExpr Node, fieldID ID) *StructFieldGet {
	return &StructFieldGet{base: base{id}, StructExpr: structExpr, FieldID: fieldID}
}

func (*StructFieldGet) Kind() Kind { return KindStructFieldGet }

// ListIndex reads element IndexExpr out of ListExpr.
type ListIndex struct {
	base
	ListExpr  Node
	IndexExpr Node
}

func NewListIndex(id ID, listExpr, indexExpr Node) *ListIndex {
	return &ListIndex{base: base{id}, ListExpr: listExpr, IndexExpr: indexExpr}
}

func (*ListIndex) Kind() Kind { return KindListIndex }

// Placeholder is a typed hole marking incomplete code.
type Placeholder struct {
	base
	Description string
	Type        types.Type
}

func NewPlaceholder(id ID, description string, typ types.Type) *Placeholder {
	return &Placeholder{base: base{id}, Description: description, Type: typ}
}

func (*Placeholder) Kind() Kind { return KindPlaceholder }
