package domain

import (
	"errors"
	"time"
)

// ErrTokenConflict is returned by SessionRepository.Insert when the
// session token collides with an existing one. With 64 random bytes per
// token this should never fire, but the uniqueness constraint is the
// authority, not the entropy.
var ErrTokenConflict = errors.New("session token already exists")

// Session is an issued authentication session. Sessions are deactivated
// on logout and retained for audit; they are never reactivated and never
// physically deleted by this service.
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
}

// IsExpiredAt reports whether the session would be expired at t. Expiry
// is computed at read time; there is no background sweep.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
