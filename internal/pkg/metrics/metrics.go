// Package metrics defines and registers all custom Prometheus metrics for the
// point-of-sale API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pos"

// ── Sale metrics ──────────────────────────────────────────────────────────────

// SalesCommittedTotal counts sales that committed successfully.
// Label:
//   - payment_method: "cash", "card" or "digital"
var SalesCommittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_committed_total",
		Help:      "Total number of sales committed, by payment method.",
	},
	[]string{"payment_method"},
)

// SaleCommitFailuresTotal counts sale commits that failed.
// Label:
//   - reason: "validation", "insufficient_stock", "conflict" or "persistence"
var SaleCommitFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sale_commit_failures_total",
		Help:      "Total number of sale commits that failed, by reason.",
	},
	[]string{"reason"},
)

// SaleCommitDuration measures a successful commit end-to-end, including the
// transaction round-trips.
var SaleCommitDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sale_commit_duration_seconds",
		Help:      "Duration of successful sale commits.",
		Buckets:   prometheus.DefBuckets,
	},
)

// SaleTransitionsTotal counts refunds and cancellations.
// Label:
//   - status: the new sale status
var SaleTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sale_transitions_total",
		Help:      "Total number of sale status transitions, by target status.",
	},
	[]string{"status"},
)

// ── Stock metrics ─────────────────────────────────────────────────────────────

// StockDecrementsTotal counts guarded stock decrements.
// Label:
//   - outcome: "applied", "insufficient" or "clamped"
var StockDecrementsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_decrements_total",
		Help:      "Total number of stock decrements attempted inside sale transactions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Access metrics ────────────────────────────────────────────────────────────

// PermissionDeniedTotal counts requests rejected by the permission gate.
// Label:
//   - capability: the capability that was missing
var PermissionDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Total number of requests rejected for a missing capability.",
	},
	[]string{"capability"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// SaleEventsPublishedTotal counts sale event deliveries.
// Label:
//   - result: "ok", "error" or "dropped"
var SaleEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sale_events_published_total",
		Help:      "Total number of sale events handed to the broker, by result.",
	},
	[]string{"result"},
)

// SaleEventsQueueDepth tracks events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var SaleEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sale_events_queue_depth",
		Help:      "Current number of sale events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
