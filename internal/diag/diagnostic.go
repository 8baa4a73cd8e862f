package diag

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/ast"
)

// Stage identifies which pass produced the diagnostic.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageWorkspace Stage = "workspace"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Validator problems
	CodeValidateInvalidReturnType  Code = "VALIDATE_INVALID_RETURN_TYPE"
	CodeValidateDanglingReference  Code = "VALIDATE_DANGLING_REFERENCE"
	CodeValidateStructFieldDrift   Code = "VALIDATE_STRUCT_FIELD_DRIFT"
	CodeValidateBranchTypeMismatch Code = "VALIDATE_BRANCH_TYPE_MISMATCH"
	CodeValidateIterationLimit     Code = "VALIDATE_ITERATION_LIMIT"

	// Workspace problems
	CodeWorkspaceInvalidEntry     Code = "WORKSPACE_INVALID_ENTRY"
	CodeWorkspaceUnknownReference Code = "WORKSPACE_UNKNOWN_REFERENCE"
)

// Location names the piece of code a diagnostic is about, e.g.
// "function main".
type Location struct {
	Kind string `json:"kind,omitempty"`
	Name string `json:"name,omitempty"`
}

// String returns a human-readable representation of the location.
func (l Location) String() string {
	switch {
	case l.Kind == "" && l.Name == "":
		return "<unknown>"
	case l.Kind == "":
		return l.Name
	case l.Name == "":
		return l.Kind
	}
	return fmt.Sprintf("%s %s", l.Kind, l.Name)
}

// Diagnostic is a problem surfaced to end-users. Fixed reports whether the
// validator already repaired it.
type Diagnostic struct {
	Stage      Stage    `json:"stage"`
	Severity   Severity `json:"severity"`
	Code       Code     `json:"code"`
	Message    string   `json:"message"`
	Location   Location `json:"location"`
	NodeID     ast.ID   `json:"node,omitempty"`
	Fixed      bool     `json:"fixed,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Notes      []string `json:"notes,omitempty"`
	Help       string   `json:"help,omitempty"`
}

// New returns an error diagnostic.
func New(stage Stage, code Code, message string) Diagnostic {
	return Diagnostic{Stage: stage, Severity: SeverityError, Code: code, Message: message}
}

// Warning returns a warning diagnostic.
func Warning(stage Stage, code Code, message string) Diagnostic {
	return Diagnostic{Stage: stage, Severity: SeverityWarning, Code: code, Message: message}
}

// WithLocation returns a new diagnostic pointing at loc.
func (d Diagnostic) WithLocation(loc Location) Diagnostic {
	d.Location = loc
	return d
}

// WithNode returns a new diagnostic pointing at the node with the given ID.
func (d Diagnostic) WithNode(id ast.ID) Diagnostic {
	d.NodeID = id
	return d
}

// AsFixed marks the diagnostic as repaired.
func (d Diagnostic) AsFixed() Diagnostic {
	d.Fixed = true
	return d
}

// WithSuggestion returns a new diagnostic with the given suggestion.
func (d Diagnostic) WithSuggestion(suggestion string) Diagnostic {
	d.Suggestion = suggestion
	return d
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp adds help text to the diagnostic.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// Counts tallies diagnostics by severity.
func Counts(ds []Diagnostic) (errs, warnings int) {
	for _, d := range ds {
		switch d.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warnings++
		}
	}
	return errs, warnings
}
