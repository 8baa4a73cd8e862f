package workspace_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/types"
	"github.com/arbor-lang/arbor/internal/validate"
	"github.com/arbor-lang/arbor/internal/workspace"
)

var (
	labelID     = uuid.MustParse("9c8b7a6d-5e4f-4a3b-9c2d-1e0f9a8b7c11")
	labelBodyID = uuid.MustParse("9c8b7a6d-5e4f-4a3b-9c2d-1e0f9a8b7c13")
	itemArgID   = uuid.MustParse("9c8b7a6d-5e4f-4a3b-9c2d-1e0f9a8b7c12")
	nameFieldID = uuid.MustParse("5f1d2c3b-4a59-4e68-8f7a-9b0c1d2e3f02")
)

func loadShop(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.Load("testdata/shop.yaml")
	require.NoError(t, err)
	return ws
}

func TestLoadShop(t *testing.T) {
	ws := loadShop(t)
	assert.Equal(t, "shop", ws.Name)

	require.Len(t, ws.Env.Structs(), 1)
	item := ws.Env.Structs()[0]
	assert.Equal(t, "Item", item.Name)
	assert.True(t, item.Fields[1].Type.Equal(types.NumberType()))

	total, ok := ws.Env.FindFunction(uuid.MustParse("9c8b7a6d-5e4f-4a3b-9c2d-1e0f9a8b7c01"))
	require.True(t, ok)
	assert.Equal(t, uuid.Nil, total.BodyID)
	assert.True(t, total.Args[0].Type.Equal(types.ListOf(types.Of(item.ID))))

	var kinds []program.Kind
	var names []string
	for _, e := range ws.Programs.Locations() {
		kinds = append(kinds, e.Location.Kind)
		names = append(names, e.Location.Name)
	}
	assert.Equal(t, []program.Kind{
		program.KindFunction, program.KindFunction, program.KindTest, program.KindScript, program.KindGenerator,
	}, kinds)
	assert.Equal(t, []string{"label", "names", "label uses the item name", "checkout", "default price"}, names)

	returns, ok := ws.Programs.RequiredReturnType(program.Location{ID: labelID})
	require.True(t, ok)
	assert.True(t, returns.Equal(types.StringType()))
}

func TestFunctionBodyUsesArguments(t *testing.T) {
	ws := loadShop(t)

	body, ok := ws.Programs.Code(labelID)
	require.True(t, ok)
	assert.Equal(t, labelBodyID, body.ID())
	require.Len(t, ws.Env.CodeTakesArgs(body.ID()), 1)

	get, ok := body.Exprs[0].(*ast.StructFieldGet)
	require.True(t, ok)
	assert.Equal(t, nameFieldID, get.FieldID)
	ref, ok := get.StructExpr.(*ast.VariableReference)
	require.True(t, ok)
	assert.Equal(t, itemArgID, ref.AssignmentID)
}

func TestMissingFieldsAndArgsBecomePlaceholders(t *testing.T) {
	ws := loadShop(t)
	loc, ok := ws.Programs.Find(program.KindScript, "checkout")
	require.True(t, ok)
	code, _ := ws.Programs.Code(loc.ID)

	basket := code.Exprs[0].(*ast.Assignment)
	list := basket.Expr.(*ast.ListLiteral)
	require.Len(t, list.Elements, 2)
	ink := list.Elements[1].(*ast.StructLiteral)
	require.Len(t, ink.Fields, 2)
	hole, ok := ink.Fields[1].Expr.(*ast.Placeholder)
	require.True(t, ok)
	assert.Equal(t, "price", hole.Description)
	assert.True(t, hole.Type.Equal(types.NumberType()))

	call := code.Exprs[1].(*ast.FunctionCall)
	ref := call.Args[0].Expr.(*ast.VariableReference)
	assert.Equal(t, basket.ID(), ref.AssignmentID)
}

func TestLoadedWorkspaceValidates(t *testing.T) {
	ws := loadShop(t)

	report, err := validate.Run(context.Background(), ws.Env, ws.Programs)
	require.NoError(t, err)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, diag.CodeValidateInvalidReturnType, report.Diagnostics[0].Code)
	assert.Equal(t, "names", report.Diagnostics[0].Location.Name)

	loc, _ := ws.Programs.Find(program.KindFunction, "names")
	code, _ := ws.Programs.Code(loc.ID)
	require.Len(t, code.Exprs, 1)
	list, ok := code.Exprs[0].(*ast.ListLiteral)
	require.True(t, ok)
	assert.True(t, list.ElementType.Equal(types.StringType()))
}

func TestReferenceOutOfScopeIsRepaired(t *testing.T) {
	ws, err := workspace.Parse([]byte(`
name: scoping
scripts:
  - id: 6a5b4c3d-2e1f-4a0b-9c8d-7e6f5a4b3c01
    name: leak
    body:
      - if:
          cond: {hole: {description: ok, type: Boolean}}
          then:
            - let: {name: inner, value: {string: hi}}
      - ref: inner
`))
	require.NoError(t, err)

	report, err := validate.Run(context.Background(), ws.Env, ws.Programs)
	require.NoError(t, err)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, diag.CodeValidateDanglingReference, report.Diagnostics[0].Code)

	code, _ := ws.Programs.Code(uuid.MustParse("6a5b4c3d-2e1f-4a0b-9c8d-7e6f5a4b3c01"))
	hole, ok := code.Exprs[1].(*ast.Placeholder)
	require.True(t, ok)
	assert.True(t, hole.Type.Equal(types.StringType()))
}

func TestMatchCasesBindVariants(t *testing.T) {
	ws, err := workspace.Parse([]byte(`
name: matching
enums:
  - id: 1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c01
    name: Maybe
    variants:
      - {id: 1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c02, name: Some}
      - {id: 1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c03, name: Nothing, type: Null}
scripts:
  - id: 1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c10
    name: unwrap
    body:
      - match:
          enum: Maybe
          on: {hole: {description: value, type: Maybe<Number>}}
          cases:
            Some:
              - ref: Some
`))
	require.NoError(t, err)

	code, _ := ws.Programs.Code(uuid.MustParse("1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c10"))
	m, ok := code.Exprs[0].(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Branches, 2)

	someID := uuid.MustParse("1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c02")
	body, ok := m.Branch(someID)
	require.True(t, ok)
	ref := body.Exprs[0].(*ast.VariableReference)
	assert.Equal(t, ast.MatchVariableID(m.ID(), someID), ref.AssignmentID)

	nothing, ok := m.Branch(uuid.MustParse("1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c03"))
	require.True(t, ok)
	assert.Empty(t, nothing.Exprs)
}

func TestParseAggregatesErrors(t *testing.T) {
	_, err := workspace.Parse([]byte(`
name: broken
scripts:
  - id: 2b3c4d5e-6f7a-4b8c-9d0e-1f2a3b4c5d01
    name: bad
    body:
      - ref: nowhere
      - call: {function: missing}
      - {string: a, number: 1}
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, workspace.ErrUnknownName)
	assert.ErrorIs(t, err, workspace.ErrInvalidNode)
	assert.Contains(t, err.Error(), `variable "nowhere"`)
	assert.Contains(t, err.Error(), `function "missing"`)
}

func TestParseRejectsInvalidDeclarations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "missing name",
			yaml: "structs: []\n",
			want: workspace.ErrInvalidWorkspace,
		},
		{
			name: "bad id",
			yaml: "name: x\nstructs:\n  - {id: nope, name: A}\n",
			want: workspace.ErrInvalidWorkspace,
		},
		{
			name: "unknown key",
			yaml: "name: x\nmodules: []\n",
			want: workspace.ErrInvalidWorkspace,
		},
		{
			name: "unknown field type",
			yaml: "name: x\nstructs:\n  - id: 4d5e6f7a-8b9c-4d0e-9f1a-2b3c4d5e6f01\n    name: A\n    fields:\n      - {id: 4d5e6f7a-8b9c-4d0e-9f1a-2b3c4d5e6f02, name: b, type: Widget}\n",
			want: workspace.ErrUnknownName,
		},
		{
			name: "builtin name reused",
			yaml: "name: x\nstructs:\n  - {id: 4d5e6f7a-8b9c-4d0e-9f1a-2b3c4d5e6f03, name: String}\n",
			want: workspace.ErrInvalidWorkspace,
		},
		{
			name: "wrong param count",
			yaml: "name: x\ngenerators:\n  - {id: 4d5e6f7a-8b9c-4d0e-9f1a-2b3c4d5e6f04, name: g, returns: List}\n",
			want: types.ErrWrongParamCount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := workspace.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestDumpJSON(t *testing.T) {
	ws := loadShop(t)

	var buf bytes.Buffer
	require.NoError(t, workspace.DumpJSON(&buf, ws.Env, ws.Programs))

	var dumps []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dumps))
	require.Len(t, dumps, 5)

	label := dumps[0]
	assert.Equal(t, "label", label["name"])
	assert.Equal(t, "String", label["returns"])
	code := label["code"].(map[string]any)
	assert.Equal(t, labelBodyID.String(), code["id"])
	get := code["exprs"].([]any)[0].(map[string]any)
	assert.Equal(t, "StructFieldGet", get["kind"])
	assert.Equal(t, "name", get["field"])

	_, hasReturns := dumps[2]["returns"]
	assert.False(t, hasReturns)
}

func TestDiagnosticsFromLoadErrors(t *testing.T) {
	_, err := workspace.Parse([]byte(`
name: broken
scripts:
  - id: 2b3c4d5e-6f7a-4b8c-9d0e-1f2a3b4c5d02
    name: bad
    body:
      - ref: nowhere
      - {string: a, number: 1}
`))
	ds := workspace.Diagnostics(err)
	require.Len(t, ds, 2)
	assert.Equal(t, diag.CodeWorkspaceUnknownReference, ds[0].Code)
	assert.Equal(t, diag.CodeWorkspaceInvalidEntry, ds[1].Code)
	assert.Equal(t, diag.StageWorkspace, ds[0].Stage)

	_, err = workspace.Parse([]byte("name: x\nstructs:\n  - {id: nope}\n"))
	ds = workspace.Diagnostics(err)
	require.Len(t, ds, 2)
	assert.Contains(t, ds[0].Message, "File.Structs[0].ID")
	assert.Equal(t, "field", ds[0].Location.Kind)

	assert.Nil(t, workspace.Diagnostics(nil))
}
