package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrEmailConflict is returned by UserRepository.Create when the email
// is already taken. Catches the race where two registrations for the
// same address both pass the ExistsByEmail check.
var ErrEmailConflict = errors.New("email already registered")

// Role is the closed set of roles known to the HR system. Persisted as
// text; unknown values decode to RoleUnknown instead of leaking typos
// into permission checks.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleUnknown  Role = "unknown"
)

// ParseRole maps a stored role string onto the closed Role set.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleHR:
		return RoleHR
	case RoleManager:
		return RoleManager
	case RoleEmployee:
		return RoleEmployee
	default:
		return RoleUnknown
	}
}

// User is the identity and credential record. Provisioning happens
// outside this service; login mutates only the failure counter and the
// login/updated timestamps.
type User struct {
	ID                  int64
	Email               string
	PasswordHash        string
	Salt                string
	Role                Role
	IsActive            bool
	FailedLoginAttempts int
	LastLogin           *time.Time
	// LockoutUntil exists in the schema but is not consulted by the
	// login flow; lockout is gated on the raw failure counter.
	LockoutUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View returns the externally visible projection of the user.
func (u *User) View() *UserView {
	return &UserView{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}

// UserView is the user shape returned to API callers. Credential fields
// never leave the service.
type UserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
