package workspace

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/types"
)

func TestParseTypeExpression(t *testing.T) {
	names := newTypeNames()
	pairID := uuid.New()
	names.add(pairID, "Pair", 2, false)

	tests := []struct {
		expr string
		want types.Type
	}{
		{"Number", types.NumberType()},
		{" List<String> ", types.ListOf(types.StringType())},
		{"Map<String, List<Number>>", types.MapOf(types.StringType(), types.ListOf(types.NumberType()))},
		{"Pair<Null,Any>", types.Of(pairID, types.NullType(), types.AnyType())},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := names.parse(tt.expr)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v", got)
		})
	}
}

func TestParseTypeExpressionErrors(t *testing.T) {
	names := newTypeNames()
	tests := []struct {
		expr string
		want error
	}{
		{"", ErrInvalidType},
		{"List<String", ErrInvalidType},
		{"String>", ErrInvalidType},
		{"List<>", ErrInvalidType},
		{"Widget", ErrUnknownName},
		{"List", types.ErrWrongParamCount},
		{"String<Number>", types.ErrWrongParamCount},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := names.parse(tt.expr)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
