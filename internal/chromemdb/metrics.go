package chromemdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts engine operations.
	// Labels: operation, result (success, error)
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecbridge",
			Subsystem: "chromemdb",
			Name:      "operations_total",
			Help:      "Total number of engine operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	// OperationDuration tracks engine operation latency.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vecbridge",
			Subsystem: "chromemdb",
			Name:      "operation_duration_seconds",
			Help:      "Duration of engine operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ItemsUpserted counts items written by upserts.
	ItemsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vecbridge",
			Subsystem: "chromemdb",
			Name:      "items_upserted_total",
			Help:      "Total number of items written by upsert operations",
		},
	)

	// QuarantinedCollections counts corrupt collection directories moved aside at open.
	QuarantinedCollections = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vecbridge",
			Subsystem: "chromemdb",
			Name:      "quarantined_collections_total",
			Help:      "Total number of corrupt collection directories quarantined when opening a persistent database",
		},
	)
)

// observe records the outcome of one engine operation.
func observe(operation string, start time.Time, err error) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		OperationsTotal.WithLabelValues(operation, "error").Inc()
		return
	}
	OperationsTotal.WithLabelValues(operation, "success").Inc()
}
