// Package metrics declares the prometheus collectors of the complaint workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Complaint lifecycle
	ComplaintCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_complaint_created_total",
		Help: "Complaints created, by initial status",
	}, []string{"status"})

	StatusTransitionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_complaint_status_transition_total",
		Help: "Recorded status transitions",
	}, []string{"from", "to"})

	EscalationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_complaint_escalation_total",
		Help: "Escalations and de-escalations",
	}, []string{"direction"})

	// Sub-resource synchronization
	SyncOperationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_complaint_sync_operation_total",
		Help: "Applied sub-resource sync operations",
	}, []string{"resource", "operation"})

	// Notifications
	NotificationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_notification_total",
		Help: "Notification dispatch attempts",
	}, []string{"type", "status"})

	// Reminders
	ReminderProcessTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrdesk_reminder_process_total",
		Help: "Due reminder jobs handled by the worker",
	}, []string{"status"})

	ReminderPollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hrdesk_reminder_poll_duration_seconds",
		Help:    "Time spent draining due reminders per poll",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// RecordTransition counts a status change. An empty from means the initial status.
func RecordTransition(from, to string) {
	if from == "" {
		from = "none"
	}
	StatusTransitionTotal.WithLabelValues(from, to).Inc()
}

// RecordSync counts one applied sync operation for resource.
func RecordSync(resource, operation string) {
	SyncOperationTotal.WithLabelValues(resource, operation).Inc()
}

// RecordNotification counts a notification with status sent, skipped or failed.
func RecordNotification(eventType, status string) {
	NotificationTotal.WithLabelValues(eventType, status).Inc()
}
