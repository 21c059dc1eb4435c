package domain

import "time"

// Role of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the domain entity for a user account.
// PasswordHash is a bcrypt hash; the plaintext never leaves the auth service.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	Role          Role
	IsActive      bool
	LoginAttempts int
	LockUntil     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the account is still inside its lockout window.
func (u User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}
