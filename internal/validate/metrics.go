package validate

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/program"
)

var tracer = otel.Tracer("arbor.validate")

var (
	// problemsTotal counts problems found by code and severity
	problemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbor_validate_problems_total",
		Help: "Problems found by the validator by code and severity",
	}, []string{"code", "severity"})

	// locationsUpdated counts locations whose code was rewritten
	locationsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbor_validate_locations_updated_total",
		Help: "Locations rewritten by the validator",
	})

	// passDuration observes how long a full validation pass takes
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbor_validate_pass_duration_seconds",
		Help:    "Duration of full validation passes",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
)

func recordProblems(ds []diag.Diagnostic) {
	for _, d := range ds {
		problemsTotal.WithLabelValues(string(d.Code), string(d.Severity)).Inc()
	}
}

// startRunSpan creates a span for a whole validation pass.
func startRunSpan(ctx context.Context, locations int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Validator.Run",
		trace.WithAttributes(
			attribute.Int("validate.locations", locations),
		),
	)
}

// startLocationSpan creates a span for validating one location.
func startLocationSpan(ctx context.Context, loc program.Location) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Validator.Location",
		trace.WithAttributes(
			attribute.String("validate.location.kind", string(loc.Kind)),
			attribute.String("validate.location.name", loc.Name),
			attribute.String("validate.location.id", loc.ID.String()),
		),
	)
}

// setRunSpanResult sets the result attributes on a pass span.
func setRunSpanResult(span trace.Span, problems, updated int) {
	span.SetAttributes(
		attribute.Int("validate.problems", problems),
		attribute.Int("validate.updated", updated),
	)
}
