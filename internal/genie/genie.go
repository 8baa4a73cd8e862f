// Package genie answers structural and scoping questions about one code tree:
// where a node lives, what is in scope there, and what type an expression
// has.
package genie

import (
	"fmt"
	"sync"

	"github.com/arbor-lang/arbor/internal/ast"
)

// Genie is a read-only view over a single tree. It indexes the tree lazily on
// first lookup; the tree must not change while the Genie is in use.
type Genie struct {
	root *ast.Block

	once    sync.Once
	nodes   map[ast.ID]ast.Node
	parents map[ast.ID]ast.Node
}

// New creates a Genie over the tree rooted at root.
func New(root *ast.Block) *Genie {
	return &Genie{root: root}
}

// Root returns the root block.
func (g *Genie) Root() *ast.Block { return g.root }

func (g *Genie) index() {
	g.once.Do(func() {
		g.nodes = make(map[ast.ID]ast.Node)
		g.parents = make(map[ast.ID]ast.Node)
		ast.Walk(g.root, func(n ast.Node) bool {
			g.nodes[n.ID()] = n
			for _, child := range ast.Children(n) {
				g.parents[child.ID()] = n
			}
			return true
		})
	})
}

// Lookup returns the node with the given ID, if present.
func (g *Genie) Lookup(id ast.ID) (ast.Node, bool) {
	g.index()
	n, ok := g.nodes[id]
	return n, ok
}

// Parent returns the parent of the node with the given ID, if any.
func (g *Genie) Parent(id ast.ID) (ast.Node, bool) {
	g.index()
	p, ok := g.parents[id]
	return p, ok
}

// FindNode is Lookup for callers that treat absence as a broken invariant.
func (g *Genie) FindNode(id ast.ID) (ast.Node, error) {
	n, ok := g.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("find node %s: %w", id, ast.ErrNodeNotFound)
	}
	return n, nil
}

// FindParent is Parent for callers that treat absence as a broken invariant.
func (g *Genie) FindParent(id ast.ID) (ast.Node, error) {
	p, ok := g.Parent(id)
	if !ok {
		return nil, fmt.Errorf("find parent of %s: %w", id, ast.ErrParentNotFound)
	}
	return p, nil
}

// Ancestors returns the parents of id from the nearest to the root.
func (g *Genie) Ancestors(id ast.ID) []ast.Node {
	var out []ast.Node
	for {
		p, ok := g.Parent(id)
		if !ok {
			return out
		}
		out = append(out, p)
		id = p.ID()
	}
}

// ExpressionInBlockContaining climbs from id until it reaches a node whose
// parent is a block, and returns that node's ID. The root has none.
func (g *Genie) ExpressionInBlockContaining(id ast.ID) (ast.ID, bool) {
	for {
		p, ok := g.Parent(id)
		if !ok {
			return ast.NoID, false
		}
		if _, isBlock := p.(*ast.Block); isBlock {
			return id, true
		}
		id = p.ID()
	}
}

// IsBlockExpression reports whether id sits directly inside a block.
func (g *Genie) IsBlockExpression(id ast.ID) bool {
	p, ok := g.Parent(id)
	if !ok {
		return false
	}
	_, isBlock := p.(*ast.Block)
	return isBlock
}

// PositionInParent returns id's index among its parent's children.
func (g *Genie) PositionInParent(id ast.ID) (int, bool) {
	p, ok := g.Parent(id)
	if !ok {
		return 0, false
	}
	pos := ast.IndexOf(p, id)
	return pos, pos >= 0
}

// FindAssignmentsBefore returns the assignments visible just before id,
// nearest scope first. With inclusive, id's own block expression counts as
// preceding, which is what inserting after it needs.
func (g *Genie) FindAssignmentsBefore(id ast.ID, inclusive bool) []*ast.Assignment {
	expr, ok := g.ExpressionInBlockContaining(id)
	if !ok {
		return nil
	}
	parent, _ := g.Parent(expr)
	block := parent.(*ast.Block)
	pos := ast.IndexOf(block, expr)
	if inclusive {
		pos++
	}

	var out []*ast.Assignment
	for _, e := range block.Exprs[:pos] {
		if a, ok := e.(*ast.Assignment); ok {
			out = append(out, a)
		}
	}
	return append(out, g.FindAssignmentsBefore(block.ID(), false)...)
}

// References returns every variable reference pointing at assignmentID.
func (g *Genie) References(assignmentID ast.ID) []*ast.VariableReference {
	var out []*ast.VariableReference
	ast.Walk(g.root, func(n ast.Node) bool {
		if ref, ok := n.(*ast.VariableReference); ok && ref.AssignmentID == assignmentID {
			out = append(out, ref)
		}
		return true
	})
	return out
}

// AnyVariableReferencing reports whether anything references assignmentID.
func (g *Genie) AnyVariableReferencing(assignmentID ast.ID) bool {
	return len(g.References(assignmentID)) > 0
}
