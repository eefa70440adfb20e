package users

import "time"

const (
	RoleAdmin    = "admin"
	RoleEditor   = "editor"
	RoleReviewer = "reviewer"
	RoleSupport  = "support"
	RoleAnalyst  = "analyst"
)

// AllRoles lists every role an admin user can hold.
var AllRoles = []string{RoleAdmin, RoleEditor, RoleReviewer, RoleSupport, RoleAnalyst}

// ValidRole reports whether role is one of AllRoles.
func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Roles          []string  `json:"roles"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
