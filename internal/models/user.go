package models

import (
	"slices"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is an account that can act on complaints. Every owner reference in
// the workflow (assignee, escalation target, changed_by, ...) is a User.ID.
type User struct {
	ID    string         `gorm:"primaryKey" json:"id"` // UUID
	Name  string         `gorm:"size:255" json:"name"`
	Email string         `gorm:"size:255;uniqueIndex" json:"email"`
	Roles pq.StringArray `gorm:"type:text[]" json:"roles"`
}

// BeforeCreate generates a UUID for the user when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}
