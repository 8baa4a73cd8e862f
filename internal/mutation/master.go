// Package mutation rewrites code trees: inserting fragments at an insertion
// point, deleting nodes, extracting expressions into variables, and keeping
// the undo history of whole-tree snapshots.
//
// Every operation takes a root and returns a new one. The old root is never
// modified and shares every untouched subtree with the new root.
package mutation

import (
	"fmt"
	"log/slog"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/genie"
)

// Result is the outcome of a mutation that also moves the cursor. Cursor is
// ast.NoID when nothing should be selected. Editing asks the caller to open
// the editor on the cursor.
type Result struct {
	Root    *ast.Block
	Cursor  ast.ID
	Editing bool
}

// Master applies mutations to code trees.
type Master struct {
	logger *slog.Logger
}

// NewMaster creates a Master. A nil logger falls back to slog.Default().
func NewMaster(logger *slog.Logger) *Master {
	if logger == nil {
		logger = slog.Default()
	}
	return &Master{logger: logger}
}

// InsertCode places nodes at point and returns the new root. Block points
// take any number of nodes, inserted consecutively; every other point takes
// exactly one.
func (m *Master) InsertCode(nodes []ast.Node, point InsertionPoint, root *ast.Block) (*ast.Block, error) {
	out, err := m.insertCode(nodes, point, root)
	recordMutation(point.Kind.String(), err)
	if err != nil {
		m.logger.Debug("insert rejected", "point", point.String(), "nodes", len(nodes), "error", err)
		return nil, err
	}
	return out, nil
}

func (m *Master) insertCode(nodes []ast.Node, point InsertionPoint, root *ast.Block) (*ast.Block, error) {
	if point.Kind == KindEditing {
		return nil, ErrEditingInsertion
	}
	if !point.AcceptsMany() && len(nodes) != 1 {
		return nil, fmt.Errorf("%s takes one node, got %d: %w", point, len(nodes), ErrWrongNodeCount)
	}
	g := genie.New(root)

	switch point.Kind {
	case KindBeginningOfBlock:
		node, err := g.FindNode(point.ID)
		if err != nil {
			return nil, err
		}
		block, ok := node.(*ast.Block)
		if !ok {
			return nil, fmt.Errorf("insert at beginning of %s %s: %w", node.Kind(), point.ID, ast.ErrUnexpectedNode)
		}
		return ast.ReplaceBlock(root, block.ID(), block.WithInserted(0, nodes...))

	case KindBefore, KindAfter:
		parent, err := g.FindParent(point.ID)
		if err != nil {
			return nil, err
		}
		block, ok := parent.(*ast.Block)
		if !ok {
			return nil, fmt.Errorf("insert %s: parent is %s: %w", point, parent.Kind(), ast.ErrUnexpectedNode)
		}
		pos := ast.IndexOf(block, point.ID)
		if point.Kind == KindAfter {
			pos++
		}
		return ast.ReplaceBlock(root, block.ID(), block.WithInserted(pos, nodes...))

	case KindStructLiteralField:
		node, err := g.FindNode(point.ID)
		if err != nil {
			return nil, err
		}
		field, ok := node.(*ast.StructLiteralField)
		if !ok {
			return nil, fmt.Errorf("insert %s: target is %s: %w", point, node.Kind(), ast.ErrUnexpectedNode)
		}
		return ast.ReplaceBlock(root, field.ID(), field.WithExpr(nodes[0]))

	case KindListLiteralElement:
		node, err := g.FindNode(point.ID)
		if err != nil {
			return nil, err
		}
		list, ok := node.(*ast.ListLiteral)
		if !ok {
			return nil, fmt.Errorf("insert %s: target is %s: %w", point, node.Kind(), ast.ErrUnexpectedNode)
		}
		return ast.ReplaceBlock(root, list.ID(), list.WithInserted(point.Pos, nodes[0]))

	case KindReplace, KindWrap:
		return ast.ReplaceBlock(root, point.ID, nodes[0])
	}
	return nil, fmt.Errorf("insert at %s: %w", point, ast.ErrUnexpectedNode)
}

// DeleteCode removes the node with the given ID. Only block expressions and
// list elements can be removed; for anything else, or for an ID that is no
// longer in the tree, ok is false and root and cursor come back unchanged.
func (m *Master) DeleteCode(id ast.ID, root *ast.Block, cursor ast.ID) (Result, bool) {
	unchanged := Result{Root: root, Cursor: cursor}
	g := genie.New(root)
	parent, ok := g.Parent(id)
	if !ok {
		return unchanged, false
	}

	var (
		repl      ast.Node
		newCursor ast.ID
	)
	switch p := parent.(type) {
	case *ast.Block:
		pos := ast.IndexOf(p, id)
		next := p.WithoutIndex(pos)
		newCursor = neighbour(next.Exprs, pos)
		repl = next

	case *ast.ListLiteral:
		pos := ast.IndexOf(p, id)
		next := p.WithoutIndex(pos)
		newCursor = neighbour(next.Elements, pos)
		if newCursor == ast.NoID {
			newCursor = p.ID()
		}
		repl = next

	default:
		return unchanged, false
	}

	newRoot, err := ast.ReplaceBlock(root, parent.ID(), repl)
	recordMutation("delete", err)
	if err != nil {
		m.logger.Debug("delete rejected", "id", id, "error", err)
		return unchanged, false
	}
	return Result{Root: newRoot, Cursor: newCursor}, true
}

// neighbour picks the node that took the deleted one's place, else the one
// before it.
func neighbour(nodes []ast.Node, pos int) ast.ID {
	if pos < len(nodes) {
		return nodes[pos].ID()
	}
	if pos > 0 && pos-1 < len(nodes) {
		return nodes[pos-1].ID()
	}
	return ast.NoID
}

// DeleteCodes deletes each ID in turn against the result of the previous
// deletion and returns the last successful result.
func (m *Master) DeleteCodes(ids []ast.ID, root *ast.Block, cursor ast.ID) (Result, bool) {
	last := Result{Root: root, Cursor: cursor}
	deleted := false
	for _, id := range ids {
		res, ok := m.DeleteCode(id, last.Root, last.Cursor)
		if !ok {
			continue
		}
		last, deleted = res, true
	}
	return last, deleted
}

// ExtractIntoVariable moves the node with the given ID into a new unnamed
// assignment placed before the block expression containing it, and leaves a
// reference to the assignment where the node was. The cursor lands on the
// new assignment so its name can be typed.
func (m *Master) ExtractIntoVariable(id ast.ID, root *ast.Block) (Result, error) {
	res, err := m.extract(id, root)
	recordMutation("extract", err)
	return res, err
}

func (m *Master) extract(id ast.ID, root *ast.Block) (Result, error) {
	g := genie.New(root)
	node, err := g.FindNode(id)
	if err != nil {
		return Result{}, err
	}
	exprID, ok := g.ExpressionInBlockContaining(id)
	if !ok {
		return Result{}, fmt.Errorf("extract %s: %w", id, ast.ErrParentNotFound)
	}
	parent, err := g.FindParent(exprID)
	if err != nil {
		return Result{}, err
	}
	block := parent.(*ast.Block)
	pos := ast.IndexOf(block, exprID)

	assignment := ast.NewNamedAssignment("", node)
	replaced, err := ast.ReplaceBlock(block, id, ast.NewReference(assignment.ID()))
	if err != nil {
		return Result{}, err
	}
	newRoot, err := ast.ReplaceBlock(root, block.ID(), replaced.WithInserted(pos, assignment))
	if err != nil {
		return Result{}, err
	}
	return Result{Root: newRoot, Cursor: assignment.ID(), Editing: true}, nil
}

// InsertionPointForReplace returns the point that overwrites the node with
// the given ID, if its position can hold a replacement.
func InsertionPointForReplace(id ast.ID, g *genie.Genie) (InsertionPoint, bool) {
	parent, ok := g.Parent(id)
	if !ok {
		return InsertionPoint{}, false
	}
	switch parent.(type) {
	case *ast.StructLiteralField:
		return StructLiteralField(parent.ID()), true
	case *ast.Argument, *ast.Assignment, *ast.Block, *ast.ListLiteral, *ast.ListIndex, *ast.Conditional:
		return Replace(id), true
	}
	return InsertionPoint{}, false
}
