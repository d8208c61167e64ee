package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "juice_operations_total",
			Help: "Total number of engine entry point calls",
		},
		[]string{"op", "status"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "juice_operation_duration_seconds",
			Help:    "Wall time spent inside engine entry points",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		},
		[]string{"op"},
	)

	FundingCyclesMaterialized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juice_funding_cycles_materialized_total",
			Help: "Total number of derived funding cycles written to state",
		},
	)

	SplitPayoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "juice_split_payouts_total",
			Help: "Total number of split payouts by recipient kind",
		},
		[]string{"kind"},
	)

	FeesCollectedWei = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juice_fees_collected_wei_total",
			Help: "Protocol fees taken from taps, in wei (float, for dashboards only)",
		},
	)
)
