// Package validate repairs drift across every code location of a program:
// blocks that no longer return their required type, references to removed
// variables, and struct literals that no longer match their definition.
//
// Every repair is a rewrite of the block into one that is well typed again,
// usually by introducing placeholders the user still has to fill in. A pass
// runs to a fixed point, so validating a freshly validated program changes
// nothing.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/types"
)

// DefaultMaxPasses bounds how many rounds of fixes one location gets.
const DefaultMaxPasses = 16

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger fixes are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// WithMaxPasses overrides DefaultMaxPasses.
func WithMaxPasses(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxPasses = n
		}
	}
}

// Validator finds and fixes problems. It remembers the last type each
// variable reference resolved to, so a reference that later dangles becomes
// a placeholder of the same type. Entries for references that left their
// location are forgotten on the next Fix of that location.
type Validator struct {
	env       types.Env
	logger    *slog.Logger
	maxPasses int
	lastTypes map[ast.ID]rememberedType
}

type rememberedType struct {
	loc ast.ID
	typ types.Type
}

// New returns a validator over env.
func New(env types.Env, opts ...Option) *Validator {
	v := &Validator{
		env:       env,
		logger:    slog.Default(),
		maxPasses: DefaultMaxPasses,
		lastTypes: make(map[ast.ID]rememberedType),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Report is the outcome of a pass.
type Report struct {
	Diagnostics []diag.Diagnostic
	Updated     []program.Location
}

// Changed reports whether any location was rewritten.
func (r Report) Changed() bool { return len(r.Updated) > 0 }

// Run validates with a fresh Validator.
func Run(ctx context.Context, env types.Env, src program.Source, opts ...Option) (Report, error) {
	return New(env, opts...).Run(ctx, src)
}

// Run validates every location of src, writing fixed blocks back through
// UpdateCode. Cancellation is checked between locations.
func (v *Validator) Run(ctx context.Context, src program.Source) (Report, error) {
	entries := src.Locations()
	ctx, span := startRunSpan(ctx, len(entries))
	defer span.End()
	start := time.Now()

	var report Report
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "context canceled")
			return report, err
		}
		fixed, ds, err := v.runLocation(ctx, src, e)
		report.Diagnostics = append(report.Diagnostics, ds...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		if fixed {
			report.Updated = append(report.Updated, e.Location)
		}
	}

	passDuration.Observe(time.Since(start).Seconds())
	setRunSpanResult(span, len(report.Diagnostics), len(report.Updated))
	span.SetStatus(codes.Ok, "")
	v.logger.Info("validation pass complete",
		"locations", len(entries),
		"updated", len(report.Updated),
		"problems", len(report.Diagnostics))
	return report, nil
}

func (v *Validator) runLocation(ctx context.Context, src program.Source, e program.Entry) (bool, []diag.Diagnostic, error) {
	_, span := startLocationSpan(ctx, e.Location)
	defer span.End()

	var required *types.Type
	if typ, ok := src.RequiredReturnType(e.Location); ok {
		required = &typ
	}
	fixed, ds, err := v.Fix(e.Location, e.Code, required)
	recordProblems(ds)
	if err != nil {
		err = fmt.Errorf("validate %s: %w", e.Location, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, ds, err
	}
	if fixed == e.Code {
		return false, ds, nil
	}
	if err := src.UpdateCode(e.Location, fixed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, ds, err
	}
	locationsUpdated.Inc()
	return true, ds, nil
}

// Fix repairs one block until no fix applies. required is the type the block
// must evaluate to, or nil. The original block is returned unchanged, by
// pointer, when nothing needed fixing.
func (v *Validator) Fix(loc program.Location, block *ast.Block, required *types.Type) (*ast.Block, []diag.Diagnostic, error) {
	v.forgetRemovedReferences(loc.ID, block)
	cur := block
	var out []diag.Diagnostic
	for pass := 0; pass < v.maxPasses; pass++ {
		next, ds, err := v.fixOnce(loc.ID, cur, required)
		if err != nil {
			return block, out, err
		}
		for i := range ds {
			ds[i] = ds[i].WithLocation(loc.Diag()).AsFixed()
			v.logger.Debug("applied fix",
				"location", loc.String(),
				"code", ds[i].Code,
				"node", ds[i].NodeID)
		}
		out = append(out, ds...)
		if len(ds) == 0 {
			return cur, append(out, v.branchWarnings(loc, cur)...), nil
		}
		cur = next
	}
	v.logger.Warn("validation did not settle", "location", loc.String(), "passes", v.maxPasses)
	limit := diag.New(diag.StageValidate, diag.CodeValidateIterationLimit,
		fmt.Sprintf("fixes still changing the code after %d passes", v.maxPasses)).
		WithLocation(loc.Diag())
	return cur, append(out, limit), nil
}

// fixOnce applies each kind of fix once, in order, to the result of the
// previous one.
func (v *Validator) fixOnce(loc ast.ID, root *ast.Block, required *types.Type) (*ast.Block, []diag.Diagnostic, error) {
	v.rememberReferenceTypes(loc, root)

	var out []diag.Diagnostic
	for _, fix := range []func(*ast.Block, *types.Type) (*ast.Block, []diag.Diagnostic, error){
		v.fixReturnType,
		v.fixDanglingReferences,
		v.fixStructFieldDrift,
	} {
		next, ds, err := fix(root, required)
		if err != nil {
			return root, out, err
		}
		root = next
		out = append(out, ds...)
	}
	return root, out, nil
}
