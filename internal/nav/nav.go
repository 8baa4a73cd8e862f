// Package nav moves a cursor around a code tree with the keyboard.
//
// Forward and Back walk the tree in depth-first order; Up and Down jump
// between the expressions of the enclosing block. All four only ever land on
// nodes IsNavigatable accepts, so the cursor never stops on containers such
// as whole blocks or function calls.
package nav

import (
	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/genie"
)

// Navigator computes cursor movements over one tree. A cursor of ast.NoID
// means nothing is selected.
type Navigator struct {
	g *genie.Genie
}

// New returns a Navigator over the tree g views.
func New(g *genie.Genie) *Navigator {
	return &Navigator{g: g}
}

// Up moves to the expression before the cursor's block expression, keeping
// the cursor's ordinal among navigatable nodes where possible. On the first
// expression of a block it stays within the same expression.
func (nv *Navigator) Up(cursor ast.ID) (ast.ID, bool) {
	if cursor == ast.NoID {
		return ast.NoID, false
	}
	return nv.vertical(cursor, -1)
}

// Down is Up in the other direction. On the last expression of a block it
// returns nothing. Without a cursor it behaves like Forward.
func (nv *Navigator) Down(cursor ast.ID) (ast.ID, bool) {
	if cursor == ast.NoID {
		return nv.Forward(cursor)
	}
	return nv.vertical(cursor, 1)
}

func (nv *Navigator) vertical(cursor ast.ID, step int) (ast.ID, bool) {
	exprID, ok := nv.g.ExpressionInBlockContaining(cursor)
	if !ok {
		return ast.NoID, false
	}
	expr, ok := nv.g.Lookup(exprID)
	if !ok {
		return ast.NoID, false
	}
	ordinal := nv.ordinalWithin(expr, cursor)

	parent, _ := nv.g.Parent(exprID)
	block := parent.(*ast.Block)
	pos := ast.IndexOf(block, exprID) + step
	if pos < 0 {
		pos = 0
	}
	if pos >= len(block.Exprs) {
		return ast.NoID, false
	}

	candidates := nv.navigatableWithin(block.Exprs[pos])
	if len(candidates) == 0 {
		return ast.NoID, false
	}
	if ordinal < len(candidates) {
		return candidates[ordinal].ID(), true
	}
	return candidates[len(candidates)-1].ID(), true
}

// ordinalWithin finds the cursor among the navigatable nodes of expr. A
// cursor on a container counts as its first navigatable descendant, and as
// the first node of expr when it has none.
func (nv *Navigator) ordinalWithin(expr ast.Node, cursor ast.ID) int {
	inCursor := make(map[ast.ID]bool)
	if node, ok := nv.g.Lookup(cursor); ok {
		ast.Walk(node, func(n ast.Node) bool {
			inCursor[n.ID()] = true
			return true
		})
	}
	for i, n := range nv.navigatableWithin(expr) {
		if inCursor[n.ID()] {
			return i
		}
	}
	return 0
}

// navigatableWithin returns node and its descendants, in depth-first order,
// filtered to navigatable ones.
func (nv *Navigator) navigatableWithin(node ast.Node) []ast.Node {
	var out []ast.Node
	ast.Walk(node, func(n ast.Node) bool {
		if nv.IsNavigatable(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Back moves to the previous navigatable node. Without a cursor there is
// nowhere to go back from.
func (nv *Navigator) Back(cursor ast.ID) (ast.ID, bool) {
	if cursor == ast.NoID {
		return ast.NoID, false
	}
	from := cursor
	for {
		prev, ok := nv.prevNode(from)
		if !ok {
			return ast.NoID, false
		}
		if nv.IsNavigatable(prev) {
			return prev.ID(), true
		}
		from = prev.ID()
	}
}

// Forward moves to the next navigatable node in depth-first order. Without a
// cursor it starts from the root.
func (nv *Navigator) Forward(cursor ast.ID) (ast.ID, bool) {
	from := cursor
	for {
		next, ok := nv.nextNode(from)
		if !ok {
			return ast.NoID, false
		}
		if nv.IsNavigatable(next) {
			return next.ID(), true
		}
		from = next.ID()
	}
}

// prevNode steps back one node: the deepest last descendant of the previous
// sibling, else the previous sibling itself, else the parent.
func (nv *Navigator) prevNode(id ast.ID) (ast.Node, bool) {
	parent, ok := nv.g.Parent(id)
	if !ok {
		return nil, false
	}
	siblings := ast.Children(parent)
	pos := ast.IndexOf(parent, id)
	if pos > 0 {
		prev := siblings[pos-1]
		if desc := ast.Descendants(prev); len(desc) > 0 {
			return desc[len(desc)-1], true
		}
		return prev, true
	}
	return parent, true
}

// nextNode steps forward one node in depth-first pre-order.
func (nv *Navigator) nextNode(id ast.ID) (ast.Node, bool) {
	if id == ast.NoID {
		return nv.g.Root(), true
	}
	node, ok := nv.g.Lookup(id)
	if !ok {
		return nil, false
	}
	if children := ast.Children(node); len(children) > 0 {
		return children[0], true
	}
	for {
		parent, ok := nv.g.Parent(id)
		if !ok {
			return nil, false
		}
		siblings := ast.Children(parent)
		if pos := ast.IndexOf(parent, id); pos+1 < len(siblings) {
			return siblings[pos+1], true
		}
		id = parent.ID()
	}
}

// IsNavigatable reports whether the cursor may stop on node. Containers are
// skipped so that movement lands on the pieces a user edits.
func (nv *Navigator) IsNavigatable(node ast.Node) bool {
	parent, _ := nv.g.Parent(node.ID())

	if _, ok := parent.(*ast.Assignment); ok {
		return true
	}

	switch node.(type) {
	case *ast.Block:
		return false
	case *ast.Assignment:
		return true
	case *ast.FunctionCall:
		return false
	case *ast.FunctionReference:
		return true
	case *ast.ListIndex, *ast.StructFieldGet:
		return true
	case *ast.Argument, *ast.StructLiteralField:
		return false
	case *ast.StringLiteral, *ast.NullLiteral, *ast.StructLiteral, *ast.ListLiteral,
		*ast.MapLiteral, *ast.NumberLiteral:
		return true
	}

	switch p := parent.(type) {
	case *ast.Argument, *ast.StructLiteralField, *ast.ListLiteral, *ast.Match, *ast.Conditional:
		return true
	case *ast.ListIndex:
		if p.IndexExpr.ID() == node.ID() {
			return true
		}
	case *ast.Block:
		switch node.(type) {
		case *ast.Placeholder, *ast.VariableReference:
			return true
		}
	}
	return false
}
