// Package metrics defines and registers all custom Prometheus metrics for the
// DevElevate platform API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "develevate"

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupRequestsTotal counts signup requests.
// Label:
//   - result: "otp_sent" or the error code that rejected the request (e.g. "already_active")
var SignupRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signup_requests_total",
		Help:      "Total number of signup requests, by result.",
	},
	[]string{"result"},
)

// OTPVerificationsTotal counts OTP verification attempts.
// Label:
//   - result: "activated" or the error code (e.g. "invalid_otp", "otp_expired")
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of OTP verification attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts session creations.
// Labels:
//   - method: "password" or "oauth"
//   - result: "ok" or the error code
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// ── Background task metrics ───────────────────────────────────────────────────

// TasksTotal counts background side-effect tasks.
// Labels:
//   - task: task name (e.g. "welcome_email", "notification")
//   - result: "ok", "failed" or "dropped"
var TasksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Total number of background tasks, by task and result.",
	},
	[]string{"task", "result"},
)

// TaskQueueDepth tracks the number of tasks waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var TaskQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "task_queue_depth",
		Help:      "Current number of tasks pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// TaskDuration measures how long a background task takes to run.
var TaskDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Duration of background task execution.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"task"},
)

// ── Engagement metrics ────────────────────────────────────────────────────────

// VisitsRecordedTotal counts streak activity calls.
// Label:
//   - result: "new_day" when a visit was appended, "repeat" for a same-day call
var VisitsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visits_recorded_total",
		Help:      "Total number of recorded activity calls, by result.",
	},
	[]string{"result"},
)

// CurrentStreakLength observes the current streak returned by each activity call.
var CurrentStreakLength = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "current_streak_days",
		Help:      "Current streak length observed after recording activity.",
		Buckets:   []float64{0, 1, 2, 3, 5, 7, 14, 30, 60, 100, 365},
	},
)
