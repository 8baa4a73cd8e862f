package mutation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/genie"
	"github.com/arbor-lang/arbor/internal/mutation"
	"github.com/arbor-lang/arbor/internal/types"
)

func TestInsertCodeIntoBlock(t *testing.T) {
	m := mutation.NewMaster(nil)
	a, b := ast.NewNumber(1), ast.NewNumber(2)
	root := ast.NewBlockOf(a, b)

	x, y := ast.NewString("x"), ast.NewString("y")
	tests := []struct {
		name  string
		point mutation.InsertionPoint
		want  []ast.ID
	}{
		{"beginning", mutation.BeginningOfBlock(root.ID()), []ast.ID{x.ID(), y.ID(), a.ID(), b.ID()}},
		{"before", mutation.Before(b.ID()), []ast.ID{a.ID(), x.ID(), y.ID(), b.ID()}},
		{"after", mutation.After(b.ID()), []ast.ID{a.ID(), b.ID(), x.ID(), y.ID()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := m.InsertCode([]ast.Node{x, y}, tt.point, root)
			require.NoError(t, err)
			var got []ast.ID
			for _, e := range out.Exprs {
				got = append(got, e.ID())
			}
			assert.Equal(t, tt.want, got)
			assert.Len(t, root.Exprs, 2, "original root must be untouched")
		})
	}
}

func TestInsertCodeIntoSlots(t *testing.T) {
	m := mutation.NewMaster(nil)
	field := ast.NewStructLiteralField(ast.NewID(), uuid.New(), ast.NewHole("f", types.StringType()))
	lit := ast.NewStructLiteral(ast.NewID(), uuid.New(), field)
	list := ast.NewEmptyList(types.NumberType())
	hole := ast.NewHole("p", types.NumberType())
	root := ast.NewBlockOf(lit, list, hole)

	s := ast.NewString("v")
	out, err := m.InsertCode([]ast.Node{s}, mutation.StructLiteralField(field.ID()), root)
	require.NoError(t, err)
	assert.Same(t, s, out.Exprs[0].(*ast.StructLiteral).Fields[0].Expr)
	assert.Equal(t, field.ID(), out.Exprs[0].(*ast.StructLiteral).Fields[0].ID())

	n := ast.NewNumber(5)
	out, err = m.InsertCode([]ast.Node{n}, mutation.ListLiteralElement(list.ID(), 0), root)
	require.NoError(t, err)
	assert.Equal(t, []ast.Node{n}, out.Exprs[1].(*ast.ListLiteral).Elements)

	out, err = m.InsertCode([]ast.Node{n}, mutation.Replace(hole.ID()), root)
	require.NoError(t, err)
	assert.Same(t, n, out.Exprs[2])
	assert.Same(t, lit, out.Exprs[0], "untouched siblings are shared")
}

func TestInsertCodeErrors(t *testing.T) {
	m := mutation.NewMaster(nil)
	hole := ast.NewHole("a", types.NumberType())
	call := ast.NewCall(uuid.New(), ast.NewArgument(ast.NewID(), uuid.New(), hole))
	root := ast.NewBlockOf(call)
	one := []ast.Node{ast.NewNull()}

	_, err := m.InsertCode(one, mutation.Editing(hole.ID()), root)
	assert.ErrorIs(t, err, mutation.ErrEditingInsertion)

	_, err = m.InsertCode([]ast.Node{ast.NewNull(), ast.NewNull()}, mutation.Replace(hole.ID()), root)
	assert.ErrorIs(t, err, mutation.ErrWrongNodeCount)

	_, err = m.InsertCode(one, mutation.Before(uuid.New()), root)
	assert.ErrorIs(t, err, ast.ErrParentNotFound)

	_, err = m.InsertCode(one, mutation.Replace(uuid.New()), root)
	assert.ErrorIs(t, err, ast.ErrNodeNotFound)

	_, err = m.InsertCode(one, mutation.Before(hole.ID()), root)
	assert.ErrorIs(t, err, ast.ErrUnexpectedNode)

	_, err = m.InsertCode(one, mutation.StructLiteralField(hole.ID()), root)
	assert.ErrorIs(t, err, ast.ErrUnexpectedNode)
}

func TestDeleteCodeInBlock(t *testing.T) {
	m := mutation.NewMaster(nil)
	a, b, c := ast.NewNumber(1), ast.NewNumber(2), ast.NewNumber(3)
	root := ast.NewBlockOf(a, b, c)

	res, ok := m.DeleteCode(b.ID(), root, b.ID())
	require.True(t, ok)
	assert.Equal(t, c.ID(), res.Cursor, "next expression takes the same index")
	assert.Len(t, res.Root.Exprs, 2)

	res, ok = m.DeleteCode(c.ID(), root, c.ID())
	require.True(t, ok)
	assert.Equal(t, b.ID(), res.Cursor, "falls back to the previous index")

	single := ast.NewBlockOf(a)
	res, ok = m.DeleteCode(a.ID(), single, a.ID())
	require.True(t, ok)
	assert.Equal(t, ast.NoID, res.Cursor)
	assert.Empty(t, res.Root.Exprs)
}

func TestDeleteOnlyListElementSelectsList(t *testing.T) {
	m := mutation.NewMaster(nil)
	elem := ast.NewNumber(1)
	list := ast.NewListLiteral(ast.NewID(), types.NumberType(), elem)
	root := ast.NewBlockOf(ast.NewNamedAssignment("xs", list))

	res, ok := m.DeleteCode(elem.ID(), root, elem.ID())
	require.True(t, ok)
	assert.Equal(t, list.ID(), res.Cursor)

	got, found := ast.Find(res.Root, list.ID())
	require.True(t, found)
	assert.Empty(t, got.(*ast.ListLiteral).Elements)
}

func TestDeleteInsideMandatorySlotIsNoop(t *testing.T) {
	m := mutation.NewMaster(nil)
	hole := ast.NewHole("a", types.NumberType())
	root := ast.NewBlockOf(ast.NewCall(uuid.New(), ast.NewArgument(ast.NewID(), uuid.New(), hole)))

	res, ok := m.DeleteCode(hole.ID(), root, hole.ID())
	assert.False(t, ok)
	assert.Same(t, root, res.Root)
	assert.Equal(t, hole.ID(), res.Cursor)

	_, ok = m.DeleteCode(uuid.New(), root, ast.NoID)
	assert.False(t, ok)
}

func TestDeleteCodesKeepsLastResult(t *testing.T) {
	m := mutation.NewMaster(nil)
	a, b, c := ast.NewNumber(1), ast.NewNumber(2), ast.NewNumber(3)
	root := ast.NewBlockOf(a, b, c)

	res, ok := m.DeleteCodes([]ast.ID{a.ID(), uuid.New(), b.ID()}, root, a.ID())
	require.True(t, ok)
	require.Len(t, res.Root.Exprs, 1)
	assert.Equal(t, c.ID(), res.Root.Exprs[0].ID())
	assert.Equal(t, c.ID(), res.Cursor)
}

func TestExtractIntoVariable(t *testing.T) {
	m := mutation.NewMaster(nil)
	env := types.NewCatalog()
	s := ast.NewString("hello")
	arg := ast.NewArgument(ast.NewID(), uuid.New(), s)
	first := ast.NewNull()
	root := ast.NewBlockOf(first, ast.NewCall(uuid.New(), arg))

	res, err := m.ExtractIntoVariable(s.ID(), root)
	require.NoError(t, err)
	assert.True(t, res.Editing)
	require.Len(t, res.Root.Exprs, 3)

	assignment, ok := res.Root.Exprs[1].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, res.Cursor, assignment.ID())
	assert.Equal(t, "", assignment.Name)
	assert.Same(t, s, assignment.Expr)

	g := genie.New(res.Root)
	refs := g.References(assignment.ID())
	require.Len(t, refs, 1)
	parent, ok := g.Parent(refs[0].ID())
	require.True(t, ok)
	assert.Equal(t, arg.ID(), parent.ID())

	typ, err := g.GuessType(refs[0], env)
	require.NoError(t, err)
	assert.True(t, typ.Equal(types.StringType()))

	_, err = m.ExtractIntoVariable(root.ID(), root)
	assert.ErrorIs(t, err, ast.ErrParentNotFound)
}

func TestInsertionPointForReplace(t *testing.T) {
	fieldValue := ast.NewHole("f", types.StringType())
	field := ast.NewStructLiteralField(ast.NewID(), uuid.New(), fieldValue)
	lit := ast.NewStructLiteral(ast.NewID(), uuid.New(), field)
	argValue := ast.NewHole("a", types.NumberType())
	call := ast.NewCall(uuid.New(), ast.NewArgument(ast.NewID(), uuid.New(), argValue))
	get := ast.NewFieldGet(ast.NewNull(), uuid.New())
	root := ast.NewBlockOf(lit, call, get)
	g := genie.New(root)

	p, ok := mutation.InsertionPointForReplace(fieldValue.ID(), g)
	require.True(t, ok)
	assert.Equal(t, mutation.StructLiteralField(field.ID()), p)

	p, ok = mutation.InsertionPointForReplace(argValue.ID(), g)
	require.True(t, ok)
	assert.Equal(t, mutation.Replace(argValue.ID()), p)

	p, ok = mutation.InsertionPointForReplace(call.ID(), g)
	require.True(t, ok)
	assert.Equal(t, mutation.Replace(call.ID()), p)

	_, ok = mutation.InsertionPointForReplace(get.StructExpr.ID(), g)
	assert.False(t, ok)
	_, ok = mutation.InsertionPointForReplace(root.ID(), g)
	assert.False(t, ok)
}

func TestNodeToSelectWhenEditing(t *testing.T) {
	id := uuid.New()
	for _, p := range []mutation.InsertionPoint{mutation.StructLiteralField(id), mutation.Editing(id), mutation.ListLiteralElement(id, 2)} {
		got, ok := p.NodeToSelectWhenEditing()
		assert.True(t, ok, p.String())
		assert.Equal(t, id, got)
	}
	for _, p := range []mutation.InsertionPoint{mutation.Before(id), mutation.After(id), mutation.BeginningOfBlock(id), mutation.Replace(id), mutation.Wrap(id)} {
		_, ok := p.NodeToSelectWhenEditing()
		assert.False(t, ok, p.String())
	}
}

// genBlock draws a random tree of block expressions, nested blocks and list
// literals.
func genBlock(t *rapid.T, depth int, label string) *ast.Block {
	n := rapid.IntRange(0, 4).Draw(t, label+"-len")
	exprs := make([]ast.Node, 0, n)
	for i := 0; i < n; i++ {
		switch choice := rapid.IntRange(0, 3).Draw(t, label+"-kind"); {
		case choice == 0 && depth > 0:
			exprs = append(exprs, ast.NewConditional(ast.NewID(), ast.NewHole("c", types.BooleanType()),
				genBlock(t, depth-1, label+"-t"), nil))
		case choice == 1:
			elems := make([]ast.Node, rapid.IntRange(0, 3).Draw(t, label+"-elems"))
			for j := range elems {
				elems[j] = ast.NewNumber(int64(j))
			}
			exprs = append(exprs, ast.NewNamedAssignment("xs", ast.NewListLiteral(ast.NewID(), types.NumberType(), elems...)))
		case choice == 2:
			exprs = append(exprs, ast.NewString("s"))
		default:
			exprs = append(exprs, ast.NewHole("p", types.NumberType()))
		}
	}
	return ast.NewBlockOf(exprs...)
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	m := mutation.NewMaster(nil)
	rapid.Check(t, func(t *rapid.T) {
		root := genBlock(t, 2, "root")

		var points []mutation.InsertionPoint
		ast.Walk(root, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.Block:
				points = append(points, mutation.BeginningOfBlock(n.ID()))
				for _, e := range n.Exprs {
					points = append(points, mutation.Before(e.ID()), mutation.After(e.ID()))
				}
			case *ast.ListLiteral:
				for pos := 0; pos <= len(n.Elements); pos++ {
					points = append(points, mutation.ListLiteralElement(n.ID(), pos))
				}
			}
			return true
		})
		point := points[rapid.IntRange(0, len(points)-1).Draw(t, "point")]

		fresh := ast.NewNull()
		inserted, err := m.InsertCode([]ast.Node{fresh}, point, root)
		if err != nil {
			t.Fatalf("insert at %s: %v", point, err)
		}
		res, ok := m.DeleteCode(fresh.ID(), inserted, fresh.ID())
		if !ok {
			t.Fatalf("delete after insert at %s failed", point)
		}
		if !ast.Equal(root, res.Root) {
			t.Fatalf("round trip through %s changed the tree", point)
		}
	})
}

func TestUndoRedoInverseLaw(t *testing.T) {
	m := mutation.NewMaster(nil)
	rapid.Check(t, func(t *rapid.T) {
		original := genBlock(t, 1, "root")
		h := mutation.NewHistory()

		n := rapid.IntRange(1, 6).Draw(t, "edits")
		live := original
		for i := 0; i < n; i++ {
			next, err := m.InsertCode([]ast.Node{ast.NewNumber(int64(i))}, mutation.BeginningOfBlock(original.ID()), live)
			if err != nil {
				t.Fatal(err)
			}
			h.LogNewMutation(live, ast.NoID)
			live = next
		}
		latest := live

		if _, ok := h.Undo(live, ast.NoID); !ok {
			t.Fatal("nothing to undo")
		}
		redone, ok := h.Redo()
		if !ok || !ast.Equal(redone.Root, latest) {
			t.Fatal("undo then redo must return the pre-undo tree")
		}
		live = redone.Root

		for i := 0; i < n; i++ {
			snap, ok := h.Undo(live, ast.NoID)
			if !ok {
				t.Fatalf("undo %d of %d failed", i+1, n)
			}
			live = snap.Root
		}
		if !ast.Equal(live, original) {
			t.Fatal("undoing every edit must restore the original tree")
		}
		if _, ok := h.Undo(live, ast.NoID); ok {
			t.Fatal("undo past the first edit must fail")
		}

		for i := 0; i < n; i++ {
			snap, ok := h.Redo()
			if !ok {
				t.Fatalf("redo %d of %d failed", i+1, n)
			}
			live = snap.Root
		}
		if !ast.Equal(live, latest) {
			t.Fatal("redoing every edit must restore the latest tree")
		}
		if _, ok := h.Redo(); ok {
			t.Fatal("redo past the latest edit must fail")
		}
	})
}

func TestNewMutationDiscardsRedo(t *testing.T) {
	h := mutation.NewHistory()
	t0, t1, t2 := ast.NewBlockOf(), ast.NewBlockOf(ast.NewNull()), ast.NewBlockOf(ast.NewNumber(1))

	h.LogNewMutation(t0, ast.NoID)
	snap, ok := h.Undo(t1, ast.NoID)
	require.True(t, ok)
	assert.Same(t, t0, snap.Root)
	assert.True(t, h.CanRedo())

	h.LogNewMutation(snap.Root, ast.NoID)
	assert.False(t, h.CanRedo())

	snap, ok = h.Undo(t2, ast.NoID)
	require.True(t, ok)
	assert.Same(t, t0, snap.Root)
	redo, ok := h.Redo()
	require.True(t, ok)
	assert.Same(t, t2, redo.Root)
}
