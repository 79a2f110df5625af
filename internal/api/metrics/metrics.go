// Package metrics defines and registers the custom Prometheus metrics of the
// orders API. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pedidos"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication operations.
// Labels:
//   - operation: "register", "register_admin", "login", "login_form" or "refresh"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts orders returned by POST /pedidos/, replays included.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of order creation requests that succeeded.",
	},
)

// OrderTransitionsTotal counts status change attempts.
// Labels:
//   - operation: "cancel" or "finalize"
//   - result: "success", "rejected" (status guard) or "error"
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order status transition attempts.",
	},
	[]string{"operation", "result"},
)

// OrderItemChangesTotal counts item mutations that committed.
// Label:
//   - operation: "add" or "remove"
var OrderItemChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_item_changes_total",
		Help:      "Total number of committed line item additions and removals.",
	},
	[]string{"operation"},
)

// OrdersByStatus is refreshed periodically by the order stats job.
// Label:
//   - status: PENDENTE, EM_PREPARO, FINALIZADO or CANCELADO
var OrdersByStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orders_by_status",
		Help:      "Current number of stored orders in each status.",
	},
	[]string{"status"},
)

// ── Idempotency metrics ───────────────────────────────────────────────────────

// IdempotencyLookupsTotal counts Idempotency-Key lookups.
// Label:
//   - result: "hit", "miss" or "error"
var IdempotencyLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotency_lookups_total",
		Help:      "Total number of idempotency key lookups, labelled by result.",
	},
	[]string{"result"},
)
