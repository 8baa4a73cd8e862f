package types_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/types"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b types.Type
		want bool
	}{
		{"same builtin", types.NumberType(), types.NumberType(), true},
		{"different builtin", types.NumberType(), types.StringType(), false},
		{"any expected", types.AnyType(), types.StringType(), true},
		{"any given", types.StringType(), types.AnyType(), true},
		{"list params", types.ListOf(types.StringType()), types.ListOf(types.StringType()), true},
		{"list param mismatch", types.ListOf(types.StringType()), types.ListOf(types.NumberType()), false},
		{"nested any", types.ListOf(types.AnyType()), types.ListOf(types.NumberType()), true},
		{"map", types.MapOf(types.StringType(), types.NumberType()), types.MapOf(types.StringType(), types.NumberType()), true},
		{"arity mismatch", types.Of(types.ListID), types.ListOf(types.NumberType()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types.Match(tt.a, tt.b))
		})
	}
}

func TestEqualIsStrict(t *testing.T) {
	assert.True(t, types.ListOf(types.NullType()).Equal(types.ListOf(types.NullType())))
	assert.False(t, types.AnyType().Equal(types.NumberType()))
}

func TestHashIsDeterministic(t *testing.T) {
	a := types.ListOf(types.StringType())
	b := types.ListOf(types.StringType())
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), types.ListOf(types.NumberType()).Hash())
}

func TestListElemAndMapTypes(t *testing.T) {
	elem, ok := types.ListOf(types.BooleanType()).ListElem()
	require.True(t, ok)
	assert.True(t, elem.Equal(types.BooleanType()))

	_, ok = types.NumberType().ListElem()
	assert.False(t, ok)

	k, v, ok := types.MapOf(types.StringType(), types.NumberType()).MapTypes()
	require.True(t, ok)
	assert.True(t, k.Equal(types.StringType()))
	assert.True(t, v.Equal(types.NumberType()))
}

func TestCatalog(t *testing.T) {
	c := types.NewCatalog()

	generic := uuid.New()
	require.NoError(t, c.AddGeneric(generic, "T"))
	assert.True(t, c.IsGeneric(generic))
	assert.False(t, c.IsGeneric(types.NumberID))

	point := &types.Struct{
		ID:   uuid.New(),
		Name: "Point",
		Fields: []types.Field{
			{ID: uuid.New(), Name: "x", Type: types.NumberType()},
			{ID: uuid.New(), Name: "y", Type: types.NumberType()},
		},
	}
	require.NoError(t, c.AddStruct(point))
	assert.ErrorIs(t, c.AddStruct(point), types.ErrDuplicateID)

	field, ok := c.FindStructField(point.Fields[1].ID)
	require.True(t, ok)
	assert.Equal(t, "y", field.Name)

	spec, ok := c.FindTypeSpec(point.ID)
	require.True(t, ok)
	assert.Equal(t, "Point", spec.Name)

	body := uuid.New()
	fn := &types.Function{
		ID:      uuid.New(),
		Name:    "scale",
		Args:    []types.ArgumentDefinition{{ID: uuid.New(), Name: "by", Type: types.NumberType()}},
		Returns: types.Of(point.ID),
		BodyID:  body,
	}
	require.NoError(t, c.AddFunction(fn))

	typ, ok := c.ArgType(fn.Args[0].ID)
	require.True(t, ok)
	assert.True(t, typ.Equal(types.NumberType()))

	args := c.CodeTakesArgs(body)
	require.Len(t, args, 1)
	assert.Equal(t, "by", args[0].Name)
	assert.Empty(t, c.CodeTakesArgs(uuid.New()))
}

func TestEnumVariantTypes(t *testing.T) {
	num := types.NumberType()
	option := &types.Enum{
		ID:   uuid.New(),
		Name: "Option",
		Variants: []types.Variant{
			{ID: uuid.New(), Name: "Some"},
			{ID: uuid.New(), Name: "None", Type: &num},
		},
	}
	assert.Equal(t, 1, option.NumParams())

	vts, err := option.VariantTypes([]types.Type{types.StringType()})
	require.NoError(t, err)
	require.Len(t, vts, 2)
	assert.True(t, vts[0].Type.Equal(types.StringType()))
	assert.True(t, vts[1].Type.Equal(types.NumberType()))

	_, err = option.VariantTypes(nil)
	assert.ErrorIs(t, err, types.ErrWrongParamCount)
}

func TestFormat(t *testing.T) {
	c := types.NewCatalog()
	assert.Equal(t, "List<String>", types.Format(c, types.ListOf(types.StringType())))
	assert.Equal(t, "Map<String, Number>", types.Format(c, types.MapOf(types.StringType(), types.NumberType())))
}
