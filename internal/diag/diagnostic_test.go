package diag_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/diag"
)

func TestBuilders(t *testing.T) {
	id := uuid.New()
	d := diag.New(diag.StageValidate, diag.CodeValidateDanglingReference, "reference to a removed variable").
		WithLocation(diag.Location{Kind: "function", Name: "main"}).
		WithNode(id).
		WithNote("replaced with a placeholder").
		AsFixed()

	assert.Equal(t, diag.StageValidate, d.Stage)
	assert.Equal(t, diag.SeverityError, d.Severity)
	assert.Equal(t, id, d.NodeID)
	assert.True(t, d.Fixed)
	assert.Equal(t, []string{"replaced with a placeholder"}, d.Notes)
	assert.Equal(t, "function main", d.Location.String())

	w := diag.Warning(diag.StageValidate, diag.CodeValidateBranchTypeMismatch, "branches disagree")
	assert.Equal(t, diag.SeverityWarning, w.Severity)
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		loc  diag.Location
		want string
	}{
		{diag.Location{}, "<unknown>"},
		{diag.Location{Name: "main"}, "main"},
		{diag.Location{Kind: "script"}, "script"},
		{diag.Location{Kind: "test", Name: "adds"}, "test adds"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loc.String())
	}
}

func TestCounts(t *testing.T) {
	ds := []diag.Diagnostic{
		diag.New(diag.StageValidate, diag.CodeValidateInvalidReturnType, "a"),
		diag.New(diag.StageValidate, diag.CodeValidateStructFieldDrift, "b"),
		diag.Warning(diag.StageValidate, diag.CodeValidateBranchTypeMismatch, "c"),
	}
	errs, warnings := diag.Counts(ds)
	assert.Equal(t, 2, errs)
	assert.Equal(t, 1, warnings)
}

func TestFormatAll(t *testing.T) {
	var buf bytes.Buffer
	f := diag.NewFormatter(&buf)
	f.FormatAll([]diag.Diagnostic{
		diag.Warning(diag.StageValidate, diag.CodeValidateBranchTypeMismatch, "branches disagree").
			WithLocation(diag.Location{Kind: "function", Name: "b"}),
		diag.New(diag.StageValidate, diag.CodeValidateInvalidReturnType, "wrong return type").
			WithLocation(diag.Location{Kind: "function", Name: "a"}).
			WithSuggestion("return a List<String>").
			AsFixed(),
	})

	out := buf.String()
	require.Contains(t, out, "error[VALIDATE_INVALID_RETURN_TYPE]: wrong return type")
	require.Contains(t, out, "warning[VALIDATE_BRANCH_TYPE_MISMATCH]: branches disagree")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("function a")), bytes.Index(buf.Bytes(), []byte("function b")))
	assert.Contains(t, out, "help: return a List<String>")
	assert.Contains(t, out, "fixed automatically")
	assert.Contains(t, out, "1 error, 1 warning")
}

func TestFormatAllEmpty(t *testing.T) {
	var buf bytes.Buffer
	diag.NewFormatter(&buf).FormatAll(nil)
	assert.Equal(t, "no problems found\n", buf.String())
}
