package domain

import "time"

// Role distinguishes readers from moderators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain model for a reader account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Coins        int64
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may bypass chapter locks.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
