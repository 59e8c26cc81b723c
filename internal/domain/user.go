package domain

import "time"

// Role classifies a signed-in account. New accounts always start as
// RoleUser; elevation happens through the grantrole tool, never through
// the API.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account may reach administrative views.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
