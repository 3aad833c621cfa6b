// Package v1 provides authentication business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors that represent expected
// authentication failures. They are wrapped with context using
// fmt.Errorf("%w") when returned from business logic methods and mapped
// with errors.Is in the web layer. Unexpected persistence faults are
// logged with full detail server-side and surfaced to callers as a
// generic failure message.
package v1

import "errors"

// Sentinel errors for authentication operations.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// the two are never distinguished to the caller.
	// HTTP Status: 400 Bad Request
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked indicates the account has reached the failed-login
	// threshold.
	// HTTP Status: 403 Forbidden
	ErrAccountLocked = errors.New("account locked")

	// ErrUserExists indicates the email is already registered.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrSessionNotFound indicates the session token does not match an
	// active session.
	// HTTP Status: 401 Unauthorized
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session exists but its expiry has
	// passed. Surfaced to callers identically to ErrSessionNotFound.
	// HTTP Status: 401 Unauthorized
	ErrSessionExpired = errors.New("session expired")
)
