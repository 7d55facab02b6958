// Package sla derives service-level windows for complaints.
package sla

import (
	"time"

	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/models"
)

// Hours returns the SLA window for a priority. Unknown priorities fall back
// to the medium window.
func Hours(priority models.Priority) int {
	if hours, ok := config.SLAHoursByPriority[string(priority)]; ok {
		return hours
	}
	return config.DefaultSLAHours
}

// DueDate returns from plus the given number of hours.
func DueDate(from time.Time, hours int) time.Time {
	return from.Add(time.Duration(hours) * time.Hour)
}
