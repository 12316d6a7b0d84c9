package model

import "time"

// Admin roles. Both may moderate contacts.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// AdminUser is an account allowed to sign in to the contact panel.
type AdminUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ValidRole reports whether role is a known admin role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}
