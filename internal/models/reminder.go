package models

import "time"

// Reminder asks the workflow to ping a user about a complaint at RemindAt.
type Reminder struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ComplaintID uint       `gorm:"index;not null" json:"complaint_id"`
	UserID      string     `gorm:"index" json:"user_id"`
	RemindAt    time.Time  `gorm:"index" json:"remind_at"`
	Note        string     `gorm:"type:text" json:"note"`
	SentAt      *time.Time `json:"sent_at"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Reminder) TableName() string {
	return "complaint_reminders"
}
