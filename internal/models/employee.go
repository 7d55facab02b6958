package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Employee is an HR record. It may or may not be linked to a login account.
type Employee struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *string        `gorm:"index" json:"user_id"`
	User      *User          `json:"user,omitempty"`
	FirstName string         `gorm:"size:100" json:"first_name"`
	LastName  string         `gorm:"size:100" json:"last_name"`
	Email     string         `gorm:"size:255" json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName joins first and last name, skipping empty parts.
func (e *Employee) FullName() string {
	return strings.TrimSpace(strings.Join([]string{e.FirstName, e.LastName}, " "))
}
