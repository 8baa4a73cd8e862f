package ast

import "fmt"

// Rebuild returns a shallow copy of node with its children replaced. The
// copy keeps node's ID and non-child fields. children must match the shape
// Children(node) returns.
func Rebuild(node Node, children []Node) (Node, error) {
	switch n := node.(type) {
	case *Block:
		return &Block{base: n.base, Exprs: children}, nil

	case *Assignment:
		if len(children) != 1 {
			return nil, shapeError(n, 1, len(children))
		}
		return &Assignment{base: n.base, Name: n.Name, Expr: children[0]}, nil

	case *FunctionCall:
		if len(children) != len(n.Args)+1 {
			return nil, shapeError(n, len(n.Args)+1, len(children))
		}
		fn, ok := children[0].(*FunctionReference)
		if !ok {
			return nil, fmt.Errorf("function call %s: callee is %s: %w", n.ID(), children[0].Kind(), ErrUnexpectedNode)
		}
		args := make([]*Argument, 0, len(n.Args))
		for _, c := range children[1:] {
			arg, ok := c.(*Argument)
			if !ok {
				return nil, fmt.Errorf("function call %s: argument is %s: %w", n.ID(), c.Kind(), ErrUnexpectedNode)
			}
			args = append(args, arg)
		}
		return &FunctionCall{base: n.base, Func: fn, Args: args}, nil

	case *Argument:
		if len(children) != 1 {
			return nil, shapeError(n, 1, len(children))
		}
		return &Argument{base: n.base, ArgDefID: n.ArgDefID, Expr: children[0]}, nil

	case *StructLiteral:
		fields := make([]*StructLiteralField, 0, len(children))
		for _, c := range children {
			f, ok := c.(*StructLiteralField)
			if !ok {
				return nil, fmt.Errorf("struct literal %s: field is %s: %w", n.ID(), c.Kind(), ErrUnexpectedNode)
			}
			fields = append(fields, f)
		}
		return &StructLiteral{base: n.base, StructID: n.StructID, Fields: fields}, nil

	case *StructLiteralField:
		if len(children) != 1 {
			return nil, shapeError(n, 1, len(children))
		}
		return &StructLiteralField{base: n.base, FieldID: n.FieldID, Expr: children[0]}, nil

	case *ListLiteral:
		return &ListLiteral{base: n.base, ElementType: n.ElementType, Elements: children}, nil

	case *Conditional:
		want := 2
		if n.ElseBranch != nil {
			want = 3
		}
		if len(children) != want {
			return nil, shapeError(n, want, len(children))
		}
		blocks := make([]*Block, 0, 2)
		for _, c := range children[1:] {
			b, ok := c.(*Block)
			if !ok {
				return nil, fmt.Errorf("conditional %s: branch is %s: %w", n.ID(), c.Kind(), ErrUnexpectedNode)
			}
			blocks = append(blocks, b)
		}
		out := &Conditional{base: n.base, Condition: children[0], TrueBranch: blocks[0]}
		if len(blocks) == 2 {
			out.ElseBranch = blocks[1]
		}
		return out, nil

	case *Match:
		if len(children) != len(n.Branches)+1 {
			return nil, shapeError(n, len(n.Branches)+1, len(children))
		}
		branches := make([]MatchBranch, len(n.Branches))
		for i, b := range n.Branches {
			body, ok := children[i+1].(*Block)
			if !ok {
				return nil, fmt.Errorf("match %s: branch is %s: %w", n.ID(), children[i+1].Kind(), ErrUnexpectedNode)
			}
			branches[i] = MatchBranch{VariantID: b.VariantID, Body: body}
		}
		return &Match{base: n.base, Scrutinee: children[0], Branches: branches}, nil

	case *StructFieldGet:
		if len(children) != 1 {
			return nil, shapeError(n, 1, len(children))
		}
		return &StructFieldGet{base: n.base, StructExpr: children[0], FieldID: n.FieldID}, nil

	case *ListIndex:
		if len(children) != 2 {
			return nil, shapeError(n, 2, len(children))
		}
		return &ListIndex{base: n.base, ListExpr: children[0], IndexExpr: children[1]}, nil

	case *FunctionReference, *VariableReference, *StringLiteral, *NumberLiteral,
		*NullLiteral, *MapLiteral, *Placeholder:
		if len(children) != 0 {
			return nil, shapeError(n, 0, len(children))
		}
		return n, nil
	}
	return nil, fmt.Errorf("rebuild %T: %w", node, ErrUnexpectedNode)
}

func shapeError(n Node, want, got int) error {
	return fmt.Errorf("%s %s takes %d children, got %d: %w", n.Kind(), n.ID(), want, got, ErrUnexpectedNode)
}

// Replace returns a new root in which the node with the given ID is swapped
// for repl. Only the ancestors of the target are copied; every other subtree
// is shared with root.
func Replace(root Node, id ID, repl Node) (Node, error) {
	out, found, err := replace(root, id, repl)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("replace %s: %w", id, ErrNodeNotFound)
	}
	return out, nil
}

func replace(n Node, id ID, repl Node) (Node, bool, error) {
	if n.ID() == id {
		return repl, true, nil
	}
	children := Children(n)
	for i, child := range children {
		next, found, err := replace(child, id, repl)
		if err != nil {
			return nil, false, err
		}
		if !found {
			continue
		}
		children[i] = next
		out, err := Rebuild(n, children)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}
	return n, false, nil
}

// ReplaceBlock is Replace for trees rooted at a block.
func ReplaceBlock(root *Block, id ID, repl Node) (*Block, error) {
	out, err := Replace(root, id, repl)
	if err != nil {
		return nil, err
	}
	b, ok := out.(*Block)
	if !ok {
		return nil, fmt.Errorf("replacing root %s with %s: %w", root.ID(), out.Kind(), ErrUnexpectedNode)
	}
	return b, nil
}

// WithInserted returns a copy of b with nodes inserted at pos.
func (b *Block) WithInserted(pos int, nodes ...Node) *Block {
	return &Block{base: b.base, Exprs: insertAt(b.Exprs, pos, nodes)}
}

// WithoutIndex returns a copy of b without the expression at pos.
func (b *Block) WithoutIndex(pos int) *Block {
	return &Block{base: b.base, Exprs: removeAt(b.Exprs, pos)}
}

// WithInserted returns a copy of l with nodes inserted at pos.
func (l *ListLiteral) WithInserted(pos int, nodes ...Node) *ListLiteral {
	return &ListLiteral{base: l.base, ElementType: l.ElementType, Elements: insertAt(l.Elements, pos, nodes)}
}

// WithoutIndex returns a copy of l without the element at pos.
func (l *ListLiteral) WithoutIndex(pos int) *ListLiteral {
	return &ListLiteral{base: l.base, ElementType: l.ElementType, Elements: removeAt(l.Elements, pos)}
}

// WithExpr returns a copy of f holding expr.
func (f *StructLiteralField) WithExpr(expr Node) *StructLiteralField {
	return &StructLiteralField{base: f.base, FieldID: f.FieldID, Expr: expr}
}

// WithName returns a copy of a with a new name.
func (a *Assignment) WithName(name string) *Assignment {
	return &Assignment{base: a.base, Name: name, Expr: a.Expr}
}

// WithValue returns a copy of s holding value.
func (s *StringLiteral) WithValue(value string) *StringLiteral {
	return &StringLiteral{base: s.base, Value: value}
}

func insertAt(nodes []Node, pos int, add []Node) []Node {
	if pos < 0 {
		pos = 0
	}
	if pos > len(nodes) {
		pos = len(nodes)
	}
	out := make([]Node, 0, len(nodes)+len(add))
	out = append(out, nodes[:pos]...)
	out = append(out, add...)
	out = append(out, nodes[pos:]...)
	return out
}

func removeAt(nodes []Node, pos int) []Node {
	out := make([]Node, 0, len(nodes))
	out = append(out, nodes[:pos]...)
	return append(out, nodes[pos+1:]...)
}
