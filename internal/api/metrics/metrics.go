// Package metrics defines and registers the custom Prometheus metrics of the
// pharmacy API. Every metric is registered with the default registry on
// package init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pharmacy"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRequestsTotal counts auth endpoint outcomes.
// Labels:
//   - operation: "login", "register", "validate", "create_admin", "forgot_password", "reset_password"
//   - result: "success" or "failure"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of auth endpoint calls, by operation and result.",
	},
	[]string{"operation", "result"},
)

// AuthorizerDecisionsTotal counts how the request authorizer classified a request.
// Label:
//   - outcome: "bypass", "anonymous", "authenticated" or "invalid"
var AuthorizerDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorizer_decisions_total",
		Help:      "Total number of requests seen by the authorizer, by outcome.",
	},
	[]string{"outcome"},
)

// AccessDeniedTotal counts requests rejected by a role guard.
// Label:
//   - required_role: the role the guarded route demands
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by a role guard.",
	},
	[]string{"required_role"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailQueueDepth tracks the number of messages waiting in each worker channel.
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each mail worker channel.",
	},
	[]string{"worker_id"},
)

// MailSendDuration measures SMTP delivery time.
// Label:
//   - result: "sent" or "error"
var MailSendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_send_duration_seconds",
		Help:      "Duration of a single mail delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Pharmacy metrics ──────────────────────────────────────────────────────────

// PrescriptionsTotal counts prescription lifecycle events.
// Label:
//   - event: "issued" or "filled"
var PrescriptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prescriptions_total",
		Help:      "Total number of prescriptions issued and filled.",
	},
	[]string{"event"},
)
