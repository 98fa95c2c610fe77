// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tillbook"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of RPCs handled.",
		},
		[]string{"procedure", "code"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of RPCs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"procedure"},
	)

	settlementsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "settlements_created_total",
			Help:      "Settlements created with their full schedule.",
		},
		[]string{"kind"},
	)

	compensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "compensations_total",
			Help:      "Settlement deletes after a failed installment insert.",
		},
		[]string{"result"},
	)

	installmentsPaid = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "installments_paid_total",
			Help:      "Installments reconciled against a ledger entry.",
		},
		[]string{"method"},
	)

	paymentsUndone = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "payments_undone_total",
			Help:      "Installments reset from paid to pending.",
		},
	)

	goalAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "goals",
			Name:      "adjustments_total",
			Help:      "Savings goal balance adjustments.",
		},
		[]string{"action"},
	)

	consistencyGaps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_gaps_total",
			Help:      "Multi-step writes that stopped halfway and were left for manual repair.",
		},
		[]string{"kind"},
	)

	alertsSurfaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "surfaced_total",
			Help:      "Alerts returned by feed reads.",
		},
		[]string{"source", "severity"},
	)
)

// Consistency gap kinds.
const (
	GapOrphanSettlement = "orphan_settlement"
	GapDanglingEntry    = "dangling_entry"
	GapGoalDivergence   = "goal_divergence"
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		rpcRequests,
		rpcDuration,
		settlementsCreated,
		compensations,
		installmentsPaid,
		paymentsUndone,
		goalAdjustments,
		consistencyGaps,
		alertsSurfaced,
	)
}

// Handler exposes the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveRPC records the outcome and latency of one RPC.
func ObserveRPC(procedure, code string, duration time.Duration) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
	rpcDuration.WithLabelValues(procedure).Observe(duration.Seconds())
}

// RecordSettlementCreated counts a settlement created with its schedule.
func RecordSettlementCreated(kind string) {
	settlementsCreated.WithLabelValues(kind).Inc()
}

// RecordCompensation counts a compensating settlement delete.
func RecordCompensation(succeeded bool) {
	result := "deleted"
	if !succeeded {
		result = "failed"
	}
	compensations.WithLabelValues(result).Inc()
}

// RecordInstallmentPaid counts a reconciled installment.
func RecordInstallmentPaid(method string) {
	installmentsPaid.WithLabelValues(method).Inc()
}

// RecordPaymentUndone counts an installment reset to pending.
func RecordPaymentUndone() {
	paymentsUndone.Inc()
}

// RecordGoalAdjustment counts a successful balance adjustment.
func RecordGoalAdjustment(action string) {
	goalAdjustments.WithLabelValues(action).Inc()
}

// RecordConsistencyGap counts a half-applied write of the given kind.
func RecordConsistencyGap(kind string) {
	consistencyGaps.WithLabelValues(kind).Inc()
}

// RecordAlert counts one alert returned by the feed.
func RecordAlert(source, severity string) {
	alertsSurfaced.WithLabelValues(source, severity).Inc()
}
