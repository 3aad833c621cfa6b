package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/symtons/tpahr-auth-service/internal/core/domain"
	"github.com/symtons/tpahr-auth-service/middleware"
)

const (
	// MaxFailedLogins is the consecutive-failure threshold at which an
	// account stops accepting login attempts. The counter is checked
	// before the password and does not grow past the threshold.
	MaxFailedLogins = 5

	// SessionValidity is the fixed validity window for issued sessions.
	SessionValidity = 8 * time.Hour
)

// AuthService implements the authentication business rules: login with
// lockout, logout, token validation and registration. It depends on
// repository interfaces injected via the constructor and MUST NOT access
// the database or SQL directly.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	hasher   PasswordHasher
	nowFunc  func() time.Time
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithNow sets the clock function, primarily for testing expiry.
func WithNow(now func() time.Time) Option {
	return func(s *AuthService) {
		s.nowFunc = now
	}
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, hasher PasswordHasher, opts ...Option) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates a user by email and password and issues a session
// token valid for SessionValidity.
//
// Unknown email and wrong password are indistinguishable to the caller.
// An account at the failure threshold is rejected before the password is
// checked and its counter is not incremented further.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	user, err := s.users.GetActiveByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrInvalidCredentials)
	}

	if user.FailedLoginAttempts >= MaxFailedLogins {
		span.SetAttributes(attribute.Bool("auth.locked", true))
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrAccountLocked)
	}

	if !s.hasher.Verify(req.Password, user.Salt, user.PasswordHash) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		// Best effort; the credential failure is the caller's result
		// even if the counter write fails.
		if recErr := s.users.RecordLoginFailure(ctx, user.ID); recErr != nil {
			span.RecordError(recErr)
			logger.Error().Err(recErr).Int64("user_id", user.ID).Msg("Failed to record login failure")
		}
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrInvalidCredentials)
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("record login success: %w", err)
	}

	token, err := GenerateSessionToken()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue session: %w", err)
	}

	now := s.nowFunc()
	session := &domain.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(SessionValidity),
		IsActive:  true,
		CreatedAt: now,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert session: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user.View(),
	}, nil
}

// Logout deactivates the session matching the token. Returns true iff a
// session was found and deactivated; an unknown or already inactive
// token is a normal outcome, not an error.
func (s *AuthService) Logout(ctx context.Context, token string) (bool, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	deactivated, err := s.sessions.Deactivate(ctx, token)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("deactivate session: %w", err)
	}

	span.SetAttributes(attribute.Bool("session.deactivated", deactivated))
	return deactivated, nil
}

// ValidateToken resolves the user owning an active, unexpired session.
// Expiry is evaluated here at read time; a session past its expiry is
// rejected even while its active flag is still set.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.validate_token", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	session, err := s.sessions.FindActiveByToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query session: %w", err)
	}
	if session == nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("lookup session: %w", ErrSessionNotFound)
	}

	if session.IsExpiredAt(s.nowFunc()) {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("session expired at %v: %w", session.ExpiresAt, ErrSessionExpired)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query session owner: %w", err)
	}
	if user == nil {
		// Session outlived its owner record; treat as unauthenticated.
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("resolve session owner: %w", ErrSessionNotFound)
	}

	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("session.valid", true),
	)
	return user, nil
}

// Register creates a new user with a fresh salt and digest and issues an
// initial session, mirroring a successful login.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register %q: %w", req.Email, ErrUserExists)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("register %q: %w", req.Email, err)
	}
	digest := s.hasher.Hash(req.Password, salt)

	userID, err := s.users.Create(ctx, req.Email, digest, salt, domain.RoleEmployee)
	if err != nil {
		span.RecordError(err)
		// A concurrent registration can win the insert after the
		// existence check passed.
		if errors.Is(err, domain.ErrEmailConflict) {
			span.SetAttributes(attribute.Bool("registration.success", false))
			return nil, fmt.Errorf("register %q: %w", req.Email, ErrUserExists)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	token, err := GenerateSessionToken()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue session: %w", err)
	}

	now := s.nowFunc()
	session := &domain.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(SessionValidity),
		IsActive:  true,
		CreatedAt: now,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert session: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return &domain.AuthResponse{
		Success: true,
		Message: "Registration successful",
		Token:   token,
		User: &domain.UserView{
			ID:    userID,
			Email: req.Email,
			Role:  domain.RoleEmployee,
		},
	}, nil
}

// EnsureBootstrapUser seeds the initial admin account when it does not
// exist yet. Idempotent; safe to call on every startup.
func (s *AuthService) EnsureBootstrapUser(ctx context.Context, email, password string) error {
	logger := zerolog.Ctx(ctx)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check bootstrap user: %w", err)
	}
	if exists {
		return nil
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return fmt.Errorf("bootstrap user: %w", err)
	}
	digest := s.hasher.Hash(password, salt)

	userID, err := s.users.Create(ctx, email, digest, salt, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create bootstrap user: %w", err)
	}

	logger.Info().Int64("user_id", userID).Str("email", email).Msg("Bootstrap admin user created")
	return nil
}
