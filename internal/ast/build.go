package ast

import "github.com/arbor-lang/arbor/internal/types"

// The helpers below build fresh fragments with newly minted IDs. They are
// what the insert menu and the validator splice into trees.

// NewBlockOf builds a block around exprs.
func NewBlockOf(exprs ...Node) *Block {
	return NewBlock(NewID(), exprs...)
}

// NewHole builds a placeholder of typ.
func NewHole(description string, typ types.Type) *Placeholder {
	return NewPlaceholder(NewID(), description, typ)
}

func NewString(value string) *StringLiteral { return NewStringLiteral(NewID(), value) }
func NewNumber(value int64) *NumberLiteral  { return NewNumberLiteral(NewID(), value) }
func NewNull() *NullLiteral                 { return NewNullLiteral(NewID()) }

// NewEmptyList builds an empty list of elem.
func NewEmptyList(elem types.Type) *ListLiteral {
	return NewListLiteral(NewID(), elem)
}

// NewEmptyMap builds an empty map of key to value.
func NewEmptyMap(key, value types.Type) *MapLiteral {
	return NewMapLiteral(NewID(), key, value)
}

// NewReference builds a reference to an assignment, argument or match binding.
func NewReference(assignmentID ID) *VariableReference {
	return NewVariableReference(NewID(), assignmentID)
}

// NewNamedAssignment builds name = expr.
func NewNamedAssignment(name string, expr Node) *Assignment {
	return NewAssignment(NewID(), name, expr)
}

// NewStructWithPlaceholders builds a literal of s with one placeholder per
// field, described by the field name.
func NewStructWithPlaceholders(s *types.Struct) *StructLiteral {
	fields := make([]*StructLiteralField, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, NewStructLiteralField(NewID(), f.ID, NewHole(f.Name, f.Type)))
	}
	return NewStructLiteral(NewID(), s.ID, fields...)
}

// NewCall builds a call of fn with the given arguments.
func NewCall(functionID ID, args ...*Argument) *FunctionCall {
	return NewFunctionCall(NewID(), NewFunctionReference(NewID(), functionID), args...)
}

// NewCallWithPlaceholders builds a call of fn with a placeholder per argument.
func NewCallWithPlaceholders(fn *types.Function) *FunctionCall {
	args := make([]*Argument, 0, len(fn.Args))
	for _, def := range fn.Args {
		args = append(args, NewArgument(NewID(), def.ID, NewHole(def.Name, def.Type)))
	}
	return NewCall(fn.ID, args...)
}

// NewCallWithArgExprs builds a call of fn moving exprs into its arguments in
// order. Extra definitions or expressions are dropped.
func NewCallWithArgExprs(fn *types.Function, exprs []Node) *FunctionCall {
	n := min(len(fn.Args), len(exprs))
	args := make([]*Argument, 0, n)
	for i := 0; i < n; i++ {
		args = append(args, NewArgument(NewID(), fn.Args[i].ID, exprs[i]))
	}
	return NewCall(fn.ID, args...)
}

// NewCallWrapping builds a call of fn with wrapped placed in the argument
// argDefID and placeholders everywhere else.
func NewCallWrapping(fn *types.Function, argDefID ID, wrapped Node) *FunctionCall {
	args := make([]*Argument, 0, len(fn.Args))
	for _, def := range fn.Args {
		var expr Node
		if def.ID == argDefID {
			expr = wrapped
		} else {
			expr = NewHole(def.Name, def.Type)
		}
		args = append(args, NewArgument(NewID(), def.ID, expr))
	}
	return NewCall(fn.ID, args...)
}

// NewConditionalFor builds an if/else skeleton over cond, or over a Boolean
// placeholder when cond is nil. With a result type, each branch holds a
// typed placeholder; otherwise both branches are empty.
func NewConditionalFor(cond Node, result *types.Type) *Conditional {
	if cond == nil {
		cond = NewHole("Condition", types.BooleanType())
	}
	trueBranch, elseBranch := NewBlockOf(), NewBlockOf()
	if result != nil {
		trueBranch = NewBlockOf(NewHole("True branch", *result))
		elseBranch = NewBlockOf(NewHole("Else branch", *result))
	}
	return NewConditional(NewID(), cond, trueBranch, elseBranch)
}

// NewMatchFor builds a match over scrutinee with one placeholder branch per
// variant of e.
func NewMatchFor(e *types.Enum, enumType types.Type, scrutinee Node) (*Match, error) {
	vts, err := e.VariantTypes(enumType.Params)
	if err != nil {
		return nil, err
	}
	branches := make([]MatchBranch, 0, len(vts))
	for _, vt := range vts {
		branches = append(branches, MatchBranch{
			VariantID: vt.Variant.ID,
			Body:      NewBlockOf(NewHole(vt.Variant.Name, vt.Type)),
		})
	}
	return NewMatch(NewID(), scrutinee, branches...), nil
}

// NewFieldGet builds structExpr.field.
func NewFieldGet(structExpr Node, fieldID ID) *StructFieldGet {
	return NewStructFieldGet(NewID(), structExpr, fieldID)
}

// NewIndexInto builds listExpr[<Index placeholder>].
func NewIndexInto(listExpr Node) *ListIndex {
	return NewListIndex(NewID(), listExpr, NewHole("Index", types.NumberType()))
}
