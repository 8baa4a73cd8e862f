package validate_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/types"
	"github.com/arbor-lang/arbor/internal/validate"
)

func newPointCatalog(t testing.TB) (*types.Catalog, *types.Struct) {
	env := types.NewCatalog()
	point := &types.Struct{
		ID:   uuid.New(),
		Name: "Point",
		Fields: []types.Field{
			{ID: uuid.New(), Name: "x", Type: types.NumberType()},
			{ID: uuid.New(), Name: "label", Type: types.StringType()},
		},
	}
	require.NoError(t, env.AddStruct(point))
	return env, point
}

func functionLocation(name string) program.Location {
	return program.Location{Kind: program.KindFunction, ID: uuid.New(), Name: name}
}

func codes(ds []diag.Diagnostic) []diag.Code {
	var out []diag.Code
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func TestListReturnReplacesTrailingPlaceholder(t *testing.T) {
	env := types.NewCatalog()
	v := validate.New(env)
	block := ast.NewBlockOf(ast.NewHole("todo", types.NullType()))
	required := types.ListOf(types.StringType())

	fixed, ds, err := v.Fix(functionLocation("names"), block, &required)
	require.NoError(t, err)

	require.Len(t, fixed.Exprs, 1)
	list, ok := fixed.Exprs[0].(*ast.ListLiteral)
	require.True(t, ok, "got %T", fixed.Exprs[0])
	assert.True(t, list.ElementType.Equal(types.StringType()))
	assert.Empty(t, list.Elements)
	assert.Equal(t, block.ID(), fixed.ID())

	require.Len(t, ds, 1)
	assert.Equal(t, diag.CodeValidateInvalidReturnType, ds[0].Code)
	assert.True(t, ds[0].Fixed)
	assert.Equal(t, "function names", ds[0].Location.String())
}

func TestReturnTypeFixes(t *testing.T) {
	env, point := newPointCatalog(t)

	tests := []struct {
		name     string
		block    *ast.Block
		required types.Type
		check    func(t *testing.T, exprs []ast.Node)
	}{
		{
			name:     "appends typed placeholder",
			block:    ast.NewBlockOf(ast.NewString("hello")),
			required: types.NumberType(),
			check: func(t *testing.T, exprs []ast.Node) {
				require.Len(t, exprs, 2)
				hole, ok := exprs[1].(*ast.Placeholder)
				require.True(t, ok)
				assert.Equal(t, validate.ReturnValueDescription, hole.Description)
				assert.True(t, hole.Type.Equal(types.NumberType()))
			},
		},
		{
			name:     "empty map for map types",
			block:    ast.NewBlockOf(),
			required: types.MapOf(types.StringType(), types.NumberType()),
			check: func(t *testing.T, exprs []ast.Node) {
				require.Len(t, exprs, 1)
				m, ok := exprs[0].(*ast.MapLiteral)
				require.True(t, ok)
				assert.True(t, m.KeyType.Equal(types.StringType()))
				assert.True(t, m.ValueType.Equal(types.NumberType()))
			},
		},
		{
			name:     "replaces wrong placeholder",
			block:    ast.NewBlockOf(ast.NewNumber(1), ast.NewHole("x", types.StringType())),
			required: types.Of(point.ID),
			check: func(t *testing.T, exprs []ast.Node) {
				require.Len(t, exprs, 2)
				hole, ok := exprs[1].(*ast.Placeholder)
				require.True(t, ok)
				assert.True(t, hole.Type.Equal(types.Of(point.ID)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed, ds, err := validate.New(env).Fix(functionLocation("f"), tt.block, &tt.required)
			require.NoError(t, err)
			assert.Equal(t, []diag.Code{diag.CodeValidateInvalidReturnType}, codes(ds))
			tt.check(t, fixed.Exprs)
		})
	}
}

func TestMatchingReturnTypeIsLeftAlone(t *testing.T) {
	env := types.NewCatalog()
	block := ast.NewBlockOf(ast.NewString("ok"))
	required := types.StringType()

	fixed, ds, err := validate.New(env).Fix(functionLocation("f"), block, &required)
	require.NoError(t, err)
	assert.Same(t, block, fixed)
	assert.Empty(t, ds)
}

func TestDanglingReferenceKeepsLastType(t *testing.T) {
	env := types.NewCatalog()
	v := validate.New(env)
	loc := functionLocation("f")

	x := ast.NewNamedAssignment("x", ast.NewNumber(1))
	ref := ast.NewReference(x.ID())
	before := ast.NewBlockOf(x, ref)
	fixed, ds, err := v.Fix(loc, before, nil)
	require.NoError(t, err)
	require.Same(t, before, fixed)
	require.Empty(t, ds)

	// the assignment is deleted
	after := ast.NewBlockOf(ref)
	fixed, ds, err = v.Fix(loc, after, nil)
	require.NoError(t, err)
	assert.Equal(t, []diag.Code{diag.CodeValidateDanglingReference}, codes(ds))
	hole, ok := fixed.Exprs[0].(*ast.Placeholder)
	require.True(t, ok)
	assert.Equal(t, ref.ID(), hole.ID())
	assert.True(t, hole.Type.Equal(types.NumberType()))
}

func TestRemovedReferencesAreForgotten(t *testing.T) {
	env := types.NewCatalog()
	v := validate.New(env)
	loc := functionLocation("f")
	other := functionLocation("g")

	x := ast.NewNamedAssignment("x", ast.NewNumber(1))
	ref := ast.NewReference(x.ID())
	_, _, err := v.Fix(loc, ast.NewBlockOf(x, ref), nil)
	require.NoError(t, err)

	// another location keeps the remembered type alive
	_, _, err = v.Fix(other, ast.NewBlockOf(ast.NewNull()), nil)
	require.NoError(t, err)
	fixed, _, err := v.Fix(loc, ast.NewBlockOf(ref), nil)
	require.NoError(t, err)
	assert.True(t, fixed.Exprs[0].(*ast.Placeholder).Type.Equal(types.NumberType()))

	// once the reference has left the location its type is dropped
	y := ast.NewNamedAssignment("y", ast.NewNumber(2))
	again := ast.NewReference(y.ID())
	_, _, err = v.Fix(loc, ast.NewBlockOf(y, again), nil)
	require.NoError(t, err)
	_, _, err = v.Fix(loc, ast.NewBlockOf(ast.NewNull()), nil)
	require.NoError(t, err)
	fixed, _, err = v.Fix(loc, ast.NewBlockOf(again), nil)
	require.NoError(t, err)
	assert.True(t, fixed.Exprs[0].(*ast.Placeholder).Type.Equal(types.NullType()))
}

func TestDanglingReferenceTypes(t *testing.T) {
	env := types.NewCatalog()

	unknown := ast.NewReference(uuid.New())
	fixed, _, err := validate.New(env).Fix(functionLocation("f"), ast.NewBlockOf(unknown), nil)
	require.NoError(t, err)
	hole := fixed.Exprs[0].(*ast.Placeholder)
	assert.True(t, hole.Type.Equal(types.NullType()))

	// a reference placed before its assignment keeps the assignment's type
	later := ast.NewNamedAssignment("s", ast.NewString("v"))
	early := ast.NewReference(later.ID())
	fixed, ds, err := validate.New(env).Fix(functionLocation("g"), ast.NewBlockOf(early, later), nil)
	require.NoError(t, err)
	assert.Equal(t, []diag.Code{diag.CodeValidateDanglingReference}, codes(ds))
	hole = fixed.Exprs[0].(*ast.Placeholder)
	assert.True(t, hole.Type.Equal(types.StringType()))
	assert.Same(t, later, fixed.Exprs[1])
}

func TestArgumentReferencesAreInScope(t *testing.T) {
	env := types.NewCatalog()
	arg := types.ArgumentDefinition{ID: uuid.New(), Name: "n", Type: types.NumberType()}
	block := ast.NewBlockOf(ast.NewReference(arg.ID))
	require.NoError(t, env.AddFunction(&types.Function{
		ID:      uuid.New(),
		Name:    "double",
		Args:    []types.ArgumentDefinition{arg},
		Returns: types.NumberType(),
		BodyID:  block.ID(),
	}))
	required := types.NumberType()

	fixed, ds, err := validate.New(env).Fix(functionLocation("double"), block, &required)
	require.NoError(t, err)
	assert.Same(t, block, fixed)
	assert.Empty(t, ds)
}

func TestStructFieldDrift(t *testing.T) {
	env, point := newPointCatalog(t)
	label := ast.NewStructLiteralField(uuid.New(), point.Fields[1].ID, ast.NewString("origin"))
	stale := ast.NewStructLiteralField(uuid.New(), uuid.New(), ast.NewNumber(3))
	lit := ast.NewStructLiteral(uuid.New(), point.ID, stale, label)

	fixed, ds, err := validate.New(env).Fix(functionLocation("f"), ast.NewBlockOf(lit), nil)
	require.NoError(t, err)
	assert.Equal(t, []diag.Code{diag.CodeValidateStructFieldDrift}, codes(ds))

	got := fixed.Exprs[0].(*ast.StructLiteral)
	assert.Equal(t, lit.ID(), got.ID())
	require.Len(t, got.Fields, 2)
	assert.Same(t, label, got.Fields[0])
	assert.Equal(t, point.Fields[0].ID, got.Fields[1].FieldID)
	hole, ok := got.Fields[1].Expr.(*ast.Placeholder)
	require.True(t, ok)
	assert.True(t, hole.Type.Equal(types.NumberType()))
}

func TestBranchTypeMismatchOnlyWarns(t *testing.T) {
	env := types.NewCatalog()
	cond := ast.NewConditional(uuid.New(),
		ast.NewHole("condition", types.BooleanType()),
		ast.NewBlockOf(ast.NewNumber(1)),
		ast.NewBlockOf(ast.NewString("one")))
	block := ast.NewBlockOf(cond)

	fixed, ds, err := validate.New(env).Fix(functionLocation("f"), block, nil)
	require.NoError(t, err)
	assert.Same(t, block, fixed)
	require.Len(t, ds, 1)
	assert.Equal(t, diag.CodeValidateBranchTypeMismatch, ds[0].Code)
	assert.Equal(t, diag.SeverityWarning, ds[0].Severity)
	assert.Equal(t, cond.ID(), ds[0].NodeID)
	assert.False(t, ds[0].Fixed)
}

func TestRunUpdatesRegistry(t *testing.T) {
	env, point := newPointCatalog(t)
	reg := program.NewRegistry()

	fn := functionLocation("names")
	required := types.ListOf(types.StringType())
	require.NoError(t, reg.Add(fn, ast.NewBlockOf(ast.NewHole("todo", types.NullType())), &required))

	script := program.Location{Kind: program.KindScript, ID: uuid.New(), Name: "setup"}
	untouched := ast.NewBlockOf(ast.NewStructWithPlaceholders(point))
	require.NoError(t, reg.Add(script, untouched, nil))

	report, err := validate.Run(context.Background(), env, reg)
	require.NoError(t, err)
	assert.True(t, report.Changed())
	assert.Equal(t, []program.Location{fn}, report.Updated)

	code, _ := reg.Code(fn.ID)
	assert.IsType(t, &ast.ListLiteral{}, code.Exprs[0])
	code, _ = reg.Code(script.ID)
	assert.Same(t, untouched, code)

	report, err = validate.Run(context.Background(), env, reg)
	require.NoError(t, err)
	assert.False(t, report.Changed())
	assert.Empty(t, report.Diagnostics)
}

func TestRunStopsWhenCanceled(t *testing.T) {
	env := types.NewCatalog()
	reg := program.NewRegistry()
	require.NoError(t, reg.Add(functionLocation("f"), ast.NewBlockOf(), nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := validate.Run(ctx, env, reg)
	assert.ErrorIs(t, err, context.Canceled)
}

// genProgram builds a block with assignments, references that may dangle,
// struct literals with drifting fields and placeholders.
func genProgram(t *rapid.T, point *types.Struct) *ast.Block {
	pool := []ast.ID{uuid.New(), uuid.New(), uuid.New()}
	used := make(map[ast.ID]bool)
	n := rapid.IntRange(0, 6).Draw(t, "len")
	exprs := make([]ast.Node, 0, n)
	for i := 0; i < n; i++ {
		switch rapid.IntRange(0, 4).Draw(t, "kind") {
		case 0:
			id := rapid.SampledFrom(pool).Draw(t, "assign")
			if used[id] {
				exprs = append(exprs, ast.NewNumber(int64(i)))
				continue
			}
			used[id] = true
			var value ast.Node = ast.NewNumber(int64(i))
			if rapid.Bool().Draw(t, "string") {
				value = ast.NewString("v")
			}
			exprs = append(exprs, ast.NewAssignment(id, "v", value))
		case 1:
			target := rapid.SampledFrom(append(pool, uuid.New())).Draw(t, "target")
			exprs = append(exprs, ast.NewReference(target))
		case 2:
			var fields []*ast.StructLiteralField
			for _, f := range point.Fields {
				if rapid.Bool().Draw(t, "keep-"+f.Name) {
					fields = append(fields, ast.NewStructLiteralField(uuid.New(), f.ID, ast.NewHole(f.Name, f.Type)))
				}
			}
			if rapid.Bool().Draw(t, "stale") {
				fields = append(fields, ast.NewStructLiteralField(uuid.New(), uuid.New(), ast.NewNull()))
			}
			exprs = append(exprs, ast.NewStructLiteral(uuid.New(), point.ID, fields...))
		case 3:
			exprs = append(exprs, ast.NewHole("hole", types.StringType()))
		default:
			exprs = append(exprs, ast.NewEmptyList(types.NumberType()))
		}
	}
	return ast.NewBlockOf(exprs...)
}

func TestValidationIsIdempotent(t *testing.T) {
	env, point := newPointCatalog(t)
	requirements := []*types.Type{
		nil,
		{SpecID: types.NumberID},
		{SpecID: types.StringID},
		{SpecID: point.ID},
	}
	list := types.ListOf(types.StringType())
	m := types.MapOf(types.StringType(), types.NumberType())
	requirements = append(requirements, &list, &m)

	rapid.Check(t, func(t *rapid.T) {
		block := genProgram(t, point)
		required := rapid.SampledFrom(requirements).Draw(t, "required")
		v := validate.New(env)
		loc := functionLocation("f")

		once, ds, err := v.Fix(loc, block, required)
		require.NoError(t, err)
		assert.NotContains(t, codes(ds), diag.CodeValidateIterationLimit)

		twice, ds, err := v.Fix(loc, once, required)
		require.NoError(t, err)
		assert.Same(t, once, twice)
		for _, d := range ds {
			assert.False(t, d.Fixed, "second pass applied %s", d.Code)
		}
	})
}
