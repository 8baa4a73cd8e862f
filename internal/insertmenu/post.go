package insertmenu

import (
	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/genie"
	"github.com/arbor-lang/arbor/internal/mutation"
)

// Action is what the editor does after an insertion: select a node, or open
// the menu again at an insertion point.
type Action struct {
	Edit   bool
	Select ast.ID
	Point  mutation.InsertionPoint
}

func selectNode(id ast.ID) Action { return Action{Select: id} }

func editAt(point mutation.InsertionPoint) Action { return Action{Edit: true, Point: point} }

// PostInsertion decides where the cursor goes once inserted has been placed
// in the tree g views, so the user can keep filling in holes.
func PostInsertion(inserted ast.Node, g *genie.Genie) Action {
	switch n := inserted.(type) {
	case *ast.FunctionCall:
		for _, arg := range n.Args {
			if hole, ok := arg.Expr.(*ast.Placeholder); ok {
				return editAt(mutation.Replace(hole.ID()))
			}
		}
		return selectNode(n.ID())
	case *ast.StructLiteral:
		if len(n.Fields) > 0 {
			return editAt(mutation.StructLiteralField(n.Fields[0].ID()))
		}
		return selectNode(n.ID())
	}

	for _, child := range ast.Descendants(inserted) {
		if hole, ok := child.(*ast.Placeholder); ok {
			return editAt(mutation.Replace(hole.ID()))
		}
	}

	parent, _ := g.Parent(inserted.ID())
	switch slot := parent.(type) {
	case *ast.Argument:
		if call, ok := g.Parent(slot.ID()); ok {
			if next, ok := nextSlot(call, slot.ID()).(*ast.Argument); ok {
				if hole, ok := next.Expr.(*ast.Placeholder); ok {
					return editAt(mutation.Replace(hole.ID()))
				}
			}
		}
	case *ast.StructLiteralField:
		if lit, ok := g.Parent(slot.ID()); ok {
			if next, ok := nextSlot(lit, slot.ID()).(*ast.StructLiteralField); ok {
				if _, ok := next.Expr.(*ast.Placeholder); ok {
					return editAt(mutation.StructLiteralField(next.ID()))
				}
			}
		}
	}
	return selectNode(inserted.ID())
}

func nextSlot(parent ast.Node, id ast.ID) ast.Node {
	children := ast.Children(parent)
	pos := ast.IndexOf(parent, id)
	if pos < 0 || pos+1 >= len(children) {
		return nil
	}
	return children[pos+1]
}
