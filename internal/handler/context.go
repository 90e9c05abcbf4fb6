package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/coachbase/backend/internal/domain"
)

const (
	principalContextKey = "principal"
	coachContextKey     = "coachPrincipal"
)

func SetPrincipalInContext(c *fiber.Ctx, p *domain.Principal) {
	c.Locals(principalContextKey, p)
}

func GetPrincipalFromContext(c *fiber.Ctx) *domain.Principal {
	p, ok := c.Locals(principalContextKey).(*domain.Principal)
	if !ok {
		return nil
	}
	return p
}

func SetCoachInContext(c *fiber.Ctx, coach domain.CoachPrincipal) {
	c.Locals(coachContextKey, coach)
}

func GetCoachFromContext(c *fiber.Ctx) (domain.CoachPrincipal, bool) {
	coach, ok := c.Locals(coachContextKey).(domain.CoachPrincipal)
	return coach, ok
}

// CandidateToken returns the raw token presented on the request, or ""
// when none is present. The Authorization header takes precedence over the
// session cookie; a header that is not exactly two whitespace-separated
// parts with a bearer scheme is treated as absent.
func CandidateToken(c *fiber.Ctx, cookieName string) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		parts := strings.Fields(auth)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return c.Cookies(cookieName)
}
