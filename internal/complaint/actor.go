package complaint

import (
	"slices"

	"hrdesk/backend/internal/config"
)

// Actor is the authenticated caller of a workflow operation. Its UserID is
// stamped on every audit field the operation writes.
type Actor struct {
	UserID     string
	EmployeeID *uint
	Roles      []string
}

func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// IsPrivileged reports whether the actor holds one of config.PrivilegedRoles.
func (a Actor) IsPrivileged() bool {
	for _, role := range config.PrivilegedRoles {
		if a.HasRole(role) {
			return true
		}
	}
	return false
}

// owns reports whether the actor is the employee the complaint was filed for.
func (a Actor) owns(employeeID *uint) bool {
	return a.EmployeeID != nil && employeeID != nil && *a.EmployeeID == *employeeID
}
