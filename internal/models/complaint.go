package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusSubmitted     Status = "submitted"
	StatusAcknowledged  Status = "acknowledged"
	StatusUnderReview   Status = "under_review"
	StatusInvestigating Status = "investigating"
	StatusEscalated     Status = "escalated"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
)

// Statuses lists every status in normal-flow order.
var Statuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusAcknowledged,
	StatusUnderReview,
	StatusInvestigating,
	StatusEscalated,
	StatusResolved,
	StatusClosed,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Resolvable reports whether a resolution may be recorded from s.
func (s Status) Resolvable() bool {
	return s == StatusUnderReview || s == StatusInvestigating || s == StatusEscalated
}

// Priority drives the SLA window assigned on submission.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityUrgent   Priority = "urgent"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityCritical:
		return true
	}
	return false
}

// Complaint is an HR complaint filed by or on behalf of an employee.
type Complaint struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ComplaintNumber string     `gorm:"size:20;uniqueIndex" json:"complaint_number"`
	EmployeeID      *uint      `gorm:"index" json:"employee_id"`
	Employee        *Employee  `json:"employee,omitempty"`
	Title           string     `gorm:"size:255" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Category        string     `gorm:"size:100" json:"category"`
	IncidentDate    *time.Time `json:"incident_date"`
	Status          Status     `gorm:"size:20;index;default:draft" json:"status"`
	Priority        Priority   `gorm:"size:20;default:medium" json:"priority"`

	SubmittedAt    *time.Time `json:"submitted_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	EscalatedAt    *time.Time `json:"escalated_at"`
	DueDate        *time.Time `json:"due_date"`
	SLABreachAt    *time.Time `gorm:"column:sla_breach_at" json:"sla_breach_at"`
	SLAHours       *int       `gorm:"column:sla_hours" json:"sla_hours"`

	IsEscalated bool `gorm:"index" json:"is_escalated"`
	// AssignedTo is the current owner; EscalatedTo the ordered targets of the
	// latest escalation, first element being the primary.
	AssignedTo  *string        `gorm:"index" json:"assigned_to"`
	EscalatedTo pq.StringArray `gorm:"type:text[]" json:"escalated_to"`
	CreatedBy   *string        `json:"created_by"`

	Subjects      []Subject       `json:"subjects,omitempty"`
	Comments      []Comment       `json:"comments,omitempty"`
	Documents     []Document      `json:"documents,omitempty"`
	StatusHistory []StatusHistory `json:"status_history,omitempty"`
	Escalations   []Escalation    `json:"escalations,omitempty"`
	Resolution    *Resolution     `json:"resolution,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// StatusHistory is an append-only audit entry for a status change.
type StatusHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"index;not null" json:"complaint_id"`
	FromStatus  *Status   `gorm:"size:20" json:"from_status"` // nil on creation
	ToStatus    Status    `gorm:"size:20;not null" json:"to_status"`
	Notes       *string   `gorm:"type:text" json:"notes"`
	ChangedBy   string    `gorm:"index" json:"changed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName keeps the singular audit table name.
func (StatusHistory) TableName() string {
	return "complaint_status_history"
}

// Escalation records one escalation event. Rows are never updated.
type Escalation struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ComplaintID     uint           `gorm:"index;not null" json:"complaint_id"`
	EscalatedFrom   *string        `json:"escalated_from"`
	EscalatedTo     pq.StringArray `gorm:"type:text[]" json:"escalated_to"`
	EscalationLevel string         `gorm:"size:20" json:"escalation_level"`
	Reason          string         `gorm:"type:text" json:"reason"`
	EscalatedBy     string         `json:"escalated_by"`
	EscalatedAt     time.Time      `json:"escalated_at"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (Escalation) TableName() string {
	return "complaint_escalations"
}
