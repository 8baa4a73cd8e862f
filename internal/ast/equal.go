package ast

// Equal reports whether a and b are structurally identical, IDs included.
// Nil and empty child lists compare equal.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ID() != b.ID() || a.Kind() != b.Kind() {
		return false
	}
	if !sameFields(a, b) {
		return false
	}
	ac, bc := Children(a), Children(b)
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// sameFields compares the non-child fields of two nodes of the same kind.
func sameFields(a, b Node) bool {
	switch x := a.(type) {
	case *Assignment:
		return x.Name == b.(*Assignment).Name
	case *FunctionReference:
		return x.FunctionID == b.(*FunctionReference).FunctionID
	case *Argument:
		return x.ArgDefID == b.(*Argument).ArgDefID
	case *StructLiteral:
		return x.StructID == b.(*StructLiteral).StructID
	case *StructLiteralField:
		return x.FieldID == b.(*StructLiteralField).FieldID
	case *VariableReference:
		return x.AssignmentID == b.(*VariableReference).AssignmentID
	case *StringLiteral:
		return x.Value == b.(*StringLiteral).Value
	case *NumberLiteral:
		return x.Value == b.(*NumberLiteral).Value
	case *ListLiteral:
		return x.ElementType.Equal(b.(*ListLiteral).ElementType)
	case *MapLiteral:
		y := b.(*MapLiteral)
		return x.KeyType.Equal(y.KeyType) && x.ValueType.Equal(y.ValueType)
	case *Conditional:
		return (x.ElseBranch == nil) == (b.(*Conditional).ElseBranch == nil)
	case *Match:
		y := b.(*Match)
		if len(x.Branches) != len(y.Branches) {
			return false
		}
		for i := range x.Branches {
			if x.Branches[i].VariantID != y.Branches[i].VariantID {
				return false
			}
		}
		return true
	case *StructFieldGet:
		return x.FieldID == b.(*StructFieldGet).FieldID
	case *Placeholder:
		y := b.(*Placeholder)
		return x.Description == y.Description && x.Type.Equal(y.Type)
	}
	return true
}
