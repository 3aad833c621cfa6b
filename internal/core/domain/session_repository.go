package domain

import "context"

// SessionRepository defines the data-access contract for session records.
// Expiry is not evaluated at this layer; FindActiveByToken filters on the
// active flag only and the caller applies the time check.
type SessionRepository interface {
	// Insert appends a new session record. Returns ErrTokenConflict when
	// the token collides with an existing session.
	Insert(ctx context.Context, session *Session) error

	// FindActiveByToken returns the active session matching the token
	// exactly. Returns (nil, nil) when no active session matches.
	FindActiveByToken(ctx context.Context, token string) (*Session, error)

	// Deactivate sets is_active = false for the matching active session.
	// Returns whether a record was updated; an unknown or already
	// inactive token yields (false, nil), not an error.
	Deactivate(ctx context.Context, token string) (bool, error)
}
