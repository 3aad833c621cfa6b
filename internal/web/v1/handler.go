// Package v1 exposes the auth API over HTTP. Handlers translate between
// the wire envelope and the logic layer; expected authentication
// failures become typed results, storage faults become one generic
// message with the detail kept in the server log.
package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/symtons/tpahr-auth-service/internal/core/domain"
	logicv1 "github.com/symtons/tpahr-auth-service/internal/logic/v1"
	"github.com/symtons/tpahr-auth-service/middleware"
)

// User-facing messages. Unknown email and wrong password share one
// byte-identical message to resist account enumeration.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgAccountLocked      = "Account is locked due to too many failed attempts"
	msgInvalidRequest     = "Invalid request body"
	msgServerError        = "Authentication failed due to a server error"
	msgInvalidToken       = "Invalid or expired token"
	msgLoggedOut          = "Session terminated"
	msgLogoutNoSession    = "Session not found or already inactive"
	msgEmailTaken         = "Email is already registered"
)

// Handler groups HTTP handlers for the auth API v1. Dependencies are
// injected via the constructor; no global state.
type Handler struct {
	auth *logicv1.AuthService
}

// NewHandler creates a new Handler with the given AuthService.
func NewHandler(auth *logicv1.AuthService) *Handler {
	return &Handler{auth: auth}
}

// RegisterRoutes registers all auth API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/logout", h.Logout)
	rg.POST("/auth/register", h.Register)
	rg.GET("/auth/validate", h.Validate)
	rg.GET("/auth/me", h.GetMe)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.login", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.Warn().Err(err).Msg("Invalid login request")
		c.JSON(http.StatusBadRequest, domain.AuthResponse{Success: false, Message: msgInvalidRequest})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	response, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials):
			logger.Warn().Msg("Login rejected: invalid credentials")
			c.JSON(http.StatusBadRequest, domain.AuthResponse{Success: false, Message: msgInvalidCredentials})
		case errors.Is(err, logicv1.ErrAccountLocked):
			logger.Warn().Msg("Login rejected: account locked")
			c.JSON(http.StatusForbidden, domain.AuthResponse{Success: false, Message: msgAccountLocked})
		default:
			logger.Error().Err(err).Msg("Login failed")
			c.JSON(http.StatusInternalServerError, domain.AuthResponse{Success: false, Message: msgServerError})
		}
		return
	}

	logger.Info().Int64("user_id", response.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Logout handles POST /auth/logout. Always answers 200; the success flag
// reports whether a session was actually invalidated.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.logout", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	var req domain.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResponse{Success: false, Message: msgInvalidRequest})
		return
	}

	deactivated, err := h.auth.Logout(ctx, req.Token)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Msg("Logout failed")
		c.JSON(http.StatusInternalServerError, domain.AuthResponse{Success: false, Message: msgServerError})
		return
	}

	if !deactivated {
		c.JSON(http.StatusOK, domain.AuthResponse{Success: false, Message: msgLogoutNoSession})
		return
	}

	logger.Info().Msg("Session deactivated")
	c.JSON(http.StatusOK, domain.AuthResponse{Success: true, Message: msgLoggedOut})
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.register", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, domain.AuthResponse{Success: false, Message: msgInvalidRequest})
		return
	}

	response, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrUserExists):
			logger.Warn().Str("email", req.Email).Msg("Registration rejected: duplicate email")
			c.JSON(http.StatusConflict, domain.AuthResponse{Success: false, Message: msgEmailTaken})
		default:
			logger.Error().Err(err).Msg("Registration failed")
			c.JSON(http.StatusInternalServerError, domain.AuthResponse{Success: false, Message: msgServerError})
		}
		return
	}

	logger.Info().Int64("user_id", response.User.ID).Msg("Registration successful")
	c.JSON(http.StatusCreated, response)
}

// Validate handles GET /auth/validate?token=.
func (h *Handler) Validate(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.validate", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	token := c.Query("token")
	if token == "" {
		span.SetAttributes(attribute.Bool("auth.present", false))
		c.JSON(http.StatusUnauthorized, domain.AuthResponse{Success: false, Message: msgInvalidToken})
		return
	}

	h.respondWithTokenOwner(ctx, c, token)
}

// GetMe handles GET /auth/me with an Authorization: Bearer header.
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.me", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	const bearerPrefix = "Bearer "
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) || len(authHeader) == len(bearerPrefix) {
		span.SetAttributes(attribute.Bool("auth.present", false))
		c.JSON(http.StatusUnauthorized, domain.AuthResponse{Success: false, Message: msgInvalidToken})
		return
	}

	h.respondWithTokenOwner(ctx, c, authHeader[len(bearerPrefix):])
}

// respondWithTokenOwner resolves the token and writes the shared
// validate/me response. Not-found and expired are indistinguishable to
// the caller.
func (h *Handler) respondWithTokenOwner(ctx context.Context, c *gin.Context, token string) {
	logger := zerolog.Ctx(ctx)
	span := trace.SpanFromContext(ctx)

	user, err := h.auth.ValidateToken(ctx, token)
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrSessionNotFound), errors.Is(err, logicv1.ErrSessionExpired):
			logger.Warn().Err(err).Msg("Token rejected")
			c.JSON(http.StatusUnauthorized, domain.AuthResponse{Success: false, Message: msgInvalidToken})
		default:
			logger.Error().Err(err).Msg("Token lookup failed")
			c.JSON(http.StatusInternalServerError, domain.AuthResponse{Success: false, Message: msgServerError})
		}
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("Token validated")
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.View()})
}
