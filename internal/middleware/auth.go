package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/coachbase/backend/internal/domain"
	"github.com/coachbase/backend/internal/handler"
	"github.com/coachbase/backend/internal/response"
	"github.com/coachbase/backend/internal/session"
)

// AuthMiddleware is the single chokepoint every protected route passes
// through. It extracts a candidate token from the request and asks the
// session manager to validate it; validation also refreshes the session's
// rolling window, so authentication is not read-only.
type AuthMiddleware struct {
	sessions          *session.Manager
	logger            *slog.Logger
	sessionCookieName string
}

type AuthMiddlewareConfig struct {
	Sessions          *session.Manager
	Logger            *slog.Logger
	SessionCookieName string
}

func NewAuthMiddleware(cfg AuthMiddlewareConfig) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:          cfg.Sessions,
		logger:            cfg.Logger,
		sessionCookieName: cfg.SessionCookieName,
	}
}

// Require authenticates the request and stores the principal in the
// request context. Missing, malformed, forged and expired tokens all
// collapse to the same 401; a store failure is a 500, never a 401.
func (m *AuthMiddleware) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawToken := handler.CandidateToken(c, m.sessionCookieName)
		if rawToken == "" {
			return response.Unauthorized(c, "authentication required")
		}

		principal, err := m.sessions.Validate(c.Context(), rawToken)
		if errors.Is(err, domain.ErrUnauthorized) {
			return response.Unauthorized(c, "invalid or expired session")
		}
		if err != nil {
			m.logger.Error("session validation failed", "error", err)
			return response.InternalError(c)
		}

		handler.SetPrincipalInContext(c, principal)

		return c.Next()
	}
}

// RequireCoach narrows the already-authenticated principal to coach
// capability. Must run after Require. The caller's identity is known here,
// so rejection is 403, not 401.
func (m *AuthMiddleware) RequireCoach() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := handler.GetPrincipalFromContext(c)
		if principal == nil {
			return response.Unauthorized(c, "authentication required")
		}

		coach, err := principal.Coach()
		if err != nil {
			return response.Forbidden(c, "coach privileges required")
		}

		handler.SetCoachInContext(c, coach)

		return c.Next()
	}
}

// Optional authenticates when a valid token is presented but lets the
// request through either way.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawToken := handler.CandidateToken(c, m.sessionCookieName)
		if rawToken == "" {
			return c.Next()
		}

		principal, err := m.sessions.Validate(c.Context(), rawToken)
		if err != nil {
			return c.Next()
		}

		handler.SetPrincipalInContext(c, principal)

		return c.Next()
	}
}
