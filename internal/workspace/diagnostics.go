package workspace

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/arbor-lang/arbor/internal/diag"
)

// Diagnostics splits a Load or Parse error into one diagnostic per problem.
func Diagnostics(err error) []diag.Diagnostic {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]diag.Diagnostic, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			out = append(out, diagnostic(e))
		}
		return out
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]diag.Diagnostic, 0, len(verrs))
		for _, fe := range verrs {
			msg := fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
			if fe.Param() != "" {
				msg += " (" + fe.Param() + ")"
			}
			out = append(out, diag.New(diag.StageWorkspace, diag.CodeWorkspaceInvalidEntry, msg).
				WithLocation(diag.Location{Kind: "field", Name: fe.Namespace()}))
		}
		return out
	}
	return []diag.Diagnostic{diagnostic(err)}
}

func diagnostic(err error) diag.Diagnostic {
	code := diag.CodeWorkspaceInvalidEntry
	if errors.Is(err, ErrUnknownName) {
		code = diag.CodeWorkspaceUnknownReference
	}
	return diag.New(diag.StageWorkspace, code, err.Error())
}
