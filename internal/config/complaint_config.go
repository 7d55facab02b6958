package config

import "time"

const (
	// Numbering
	ComplaintNumberPrefix = "CPL"
	ComplaintSequenceLen  = 5

	// SLA
	DefaultSLAHours = 360

	// Documents
	DefaultDocumentsDisk = "private"
	DocumentsDirectory   = "documents"

	// Reminders
	ReminderQueueKey     = "reminders:due"
	ReminderPollInterval = 30 * time.Second
	ReminderBatchSize    = 100
	ReminderRetryBackoff = 5 * time.Minute

	// Notifications
	NotificationChannel = "notifications:complaints"
)

// SLAHoursByPriority maps complaint priority to the hours allowed between
// submission and resolution.
var SLAHoursByPriority = map[string]int{
	"critical": 72,
	"urgent":   120,
	"high":     168,
	"medium":   360,
	"low":      720,
}

// PrivilegedRoles may act on any complaint regardless of ownership.
var PrivilegedRoles = []string{"Admin", "HR"}
