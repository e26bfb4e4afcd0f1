// Package metrics defines and registers the custom Prometheus metrics of the
// civic issue API. It is the single source of truth for metric names, labels
// and help strings.
//
// All metrics are registered with the default registry through promauto when
// the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civic"

// ── Issue metrics ─────────────────────────────────────────────────────────────

// IssuesCreatedTotal counts issues filed through the API.
var IssuesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_created_total",
		Help:      "Total number of issues created.",
	},
)

// StatusChangesTotal counts status writes.
// Labels:
//   - from: the status before the write (e.g. "pending")
//   - to: the status written (e.g. "resolved")
var StatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issue_status_changes_total",
		Help:      "Total number of issue status changes, by previous and new status.",
	},
	[]string{"from", "to"},
)

// IssueReportsThrottledTotal counts issue reports refused by the rate limiter.
var IssueReportsThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issue_reports_throttled_total",
		Help:      "Total number of issue reports rejected by the rate limiter.",
	},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityProcessedTotal counts audit entries written successfully.
// Label:
//   - action: created, updated, status_changed, assigned or deleted
var ActivityProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_processed_total",
		Help:      "Total number of issue activity entries processed.",
	},
	[]string{"action"},
)

// ActivityErrorsTotal counts activity processing failures.
// Label:
//   - reason: "insert_failed", "publish_failed" or "queue_full"
var ActivityErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_errors_total",
		Help:      "Total number of issue activity entries that failed processing.",
	},
	[]string{"reason"},
)

// ActivityQueueDepth tracks pending entries in each dispatcher worker channel.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityProcessingDuration measures dequeue-to-persistence time.
// Label:
//   - action: the activity action, or "error" on failure
var ActivityProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_processing_duration_seconds",
		Help:      "Duration of activity processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"action"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// DashboardCacheTotal counts dashboard cache lookups.
// Label:
//   - result: "hit" or "miss"
var DashboardCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_cache_total",
		Help:      "Total number of dashboard cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
