package ast_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/types"
)

func sampleTree() (*ast.Block, *ast.Assignment, *ast.ListLiteral) {
	list := ast.NewListLiteral(ast.NewID(), types.NumberType(), ast.NewNumber(1), ast.NewNumber(2))
	assign := ast.NewNamedAssignment("xs", list)
	ref := ast.NewReference(assign.ID())
	root := ast.NewBlockOf(assign, ast.NewIndexInto(ref))
	return root, assign, list
}

func TestWalkIsPreOrder(t *testing.T) {
	root, assign, list := sampleTree()

	var kinds []ast.Kind
	ast.Walk(root, func(n ast.Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, []ast.Kind{
		ast.KindBlock,
		ast.KindAssignment,
		ast.KindListLiteral,
		ast.KindNumberLiteral,
		ast.KindNumberLiteral,
		ast.KindListIndex,
		ast.KindVariableReference,
		ast.KindPlaceholder,
	}, kinds)

	var visited int
	ast.Walk(root, func(n ast.Node) bool {
		visited++
		return n.ID() != assign.ID()
	})
	assert.Equal(t, 5, visited, "returning false prunes the assignment's subtree")

	parent, ok := ast.FindParent(root, list.ID())
	require.True(t, ok)
	assert.Equal(t, assign.ID(), parent.ID())

	_, ok = ast.FindParent(root, root.ID())
	assert.False(t, ok)
}

func TestReplaceCopiesOnlyThePath(t *testing.T) {
	root, assign, list := sampleTree()
	target := list.Elements[1]
	repl := ast.NewNumber(42)

	next, err := ast.ReplaceBlock(root, target.ID(), repl)
	require.NoError(t, err)

	assert.Same(t, root.Exprs[1], next.Exprs[1], "untouched sibling is shared")
	assert.NotSame(t, root.Exprs[0], next.Exprs[0])
	assert.Equal(t, assign.ID(), next.Exprs[0].ID(), "ids survive the rewrite")

	got, ok := ast.Find(next, repl.ID())
	require.True(t, ok)
	assert.Equal(t, int64(42), got.(*ast.NumberLiteral).Value)

	_, ok = ast.Find(root, repl.ID())
	assert.False(t, ok, "original tree is untouched")
}

func TestReplaceErrors(t *testing.T) {
	root, _, _ := sampleTree()

	_, err := ast.Replace(root, uuid.New(), ast.NewNull())
	assert.ErrorIs(t, err, ast.ErrNodeNotFound)

	call := ast.NewCallWithPlaceholders(&types.Function{
		ID:   uuid.New(),
		Args: []types.ArgumentDefinition{{ID: uuid.New(), Name: "a", Type: types.NumberType()}},
	})
	tree := ast.NewBlockOf(call)
	_, err = ast.Replace(tree, call.Args[0].ID(), ast.NewNull())
	assert.ErrorIs(t, err, ast.ErrUnexpectedNode, "an argument slot cannot hold a literal")
}

func TestEqual(t *testing.T) {
	root, _, _ := sampleTree()
	same, err := ast.ReplaceBlock(root, root.Exprs[1].ID(), root.Exprs[1])
	require.NoError(t, err)
	assert.True(t, ast.Equal(root, same))

	empty := ast.NewBlock(root.ID())
	assert.False(t, ast.Equal(empty, &ast.Block{Exprs: []ast.Node{}}), "ids differ")
	assert.True(t, ast.Equal(empty, ast.NewBlock(root.ID(), []ast.Node{}...)))

	other := ast.NewStringLiteral(ast.NewID(), "a")
	assert.False(t, ast.Equal(other, other.WithValue("b")))
}

func TestNewMatchOrdersBranches(t *testing.T) {
	a := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	m := ast.NewMatch(ast.NewID(), ast.NewNull(),
		ast.MatchBranch{VariantID: a, Body: ast.NewBlockOf()},
		ast.MatchBranch{VariantID: b, Body: ast.NewBlockOf()},
	)
	require.Len(t, m.Branches, 2)
	assert.Equal(t, b, m.Branches[0].VariantID)

	children := ast.Children(m)
	assert.Len(t, children, 3)
}

func TestMatchVariableIDIsDeterministic(t *testing.T) {
	m, v := uuid.New(), uuid.New()
	assert.Equal(t, ast.MatchVariableID(m, v), ast.MatchVariableID(m, v))
	assert.NotEqual(t, ast.MatchVariableID(m, v), ast.MatchVariableID(v, m))
}

func TestNewConditionalFor(t *testing.T) {
	num := types.NumberType()
	typed := ast.NewConditionalFor(nil, &num)
	require.NotNil(t, typed.ElseBranch)
	require.Len(t, typed.TrueBranch.Exprs, 1)
	assert.Equal(t, "True branch", typed.TrueBranch.Exprs[0].(*ast.Placeholder).Description)
	assert.True(t, typed.Condition.(*ast.Placeholder).Type.Equal(types.BooleanType()))

	flag := ast.NewHole("flag", types.BooleanType())
	untyped := ast.NewConditionalFor(flag, nil)
	assert.Same(t, flag, untyped.Condition)
	assert.Empty(t, untyped.TrueBranch.Exprs)
	assert.Empty(t, untyped.ElseBranch.Exprs)
}

func TestPrinter(t *testing.T) {
	env := types.NewCatalog()
	fn := &types.Function{
		ID:   uuid.New(),
		Name: "len",
		Args: []types.ArgumentDefinition{{ID: uuid.New(), Name: "list", Type: types.ListOf(types.AnyType())}},
	}
	require.NoError(t, env.AddFunction(fn))

	root, assign, _ := sampleTree()
	call := ast.NewCallWrapping(fn, fn.Args[0].ID, ast.NewReference(assign.ID()))
	root = root.WithInserted(len(root.Exprs), call)

	p := ast.Printer{Env: env, Root: root}
	assert.Equal(t, "xs = [1, 2]\nxs[<Index>]\nlen(xs)", p.PrettyPrint(root))
}
