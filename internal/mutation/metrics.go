package mutation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// mutationsTotal counts successful tree mutations by kind
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbor_mutations_total",
		Help: "Total tree mutations by kind",
	}, []string{"kind"})

	// mutationErrors counts rejected mutations by kind
	mutationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbor_mutation_errors_total",
		Help: "Total rejected tree mutations by kind",
	}, []string{"kind"})

	// historyOps counts undo history operations
	historyOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbor_history_operations_total",
		Help: "Undo history operations by operation and result",
	}, []string{"operation", "result"})
)

func recordMutation(kind string, err error) {
	if err != nil {
		mutationErrors.WithLabelValues(kind).Inc()
		return
	}
	mutationsTotal.WithLabelValues(kind).Inc()
}

func recordHistory(operation string, ok bool) {
	result := "ok"
	if !ok {
		result = "empty"
	}
	historyOps.WithLabelValues(operation, result).Inc()
}
