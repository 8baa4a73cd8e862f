package rpc

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("arbor.rpc")

var (
	// requestsTotal counts handled requests by method and outcome
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbor_rpc_requests_total",
		Help: "RPC requests handled by method and outcome",
	}, []string{"method", "outcome"})

	// requestDuration observes request handling time by method
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arbor_rpc_request_duration_seconds",
		Help:    "RPC request handling duration by method",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"method"})

	// openSessions tracks editor sessions currently open
	openSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbor_rpc_open_sessions",
		Help: "Editor sessions currently open",
	})
)

// startRequestSpan creates a span for one request.
func startRequestSpan(ctx context.Context, method string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Server.Handle",
		trace.WithAttributes(
			attribute.String("rpc.method", method),
		),
	)
}
