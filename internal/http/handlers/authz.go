package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"barter/internal/domain"
	applog "barter/internal/log"
	"barter/internal/services"
)

const principalKey = "principal"

// ResolvePrincipal attaches the caller's principal to every request. A
// missing or unusable token leaves the request anonymous.
func ResolvePrincipal(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := domain.Anonymous
		if tok := bearerToken(c.Get(fiber.HeaderAuthorization)); tok != "" {
			got, err := auth.Resolve(c.UserContext(), tok)
			if err != nil {
				applog.Security(c, "auth.token.invalid", map[string]any{"reason": err.Error()})
			} else {
				p = got
			}
		}
		c.Locals(principalKey, p)
		if !p.IsAnonymous() {
			c.Locals("user_id", p.UserID)
		}
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if principal(c).IsAnonymous() {
			return domain.ErrUnauthenticated
		}
		return c.Next()
	}
}

func principal(c *fiber.Ctx) domain.Principal {
	p, _ := c.Locals(principalKey).(domain.Principal)
	return p
}

// bearerToken accepts "Bearer <t>" and the "Token <t>" scheme older clients send.
func bearerToken(h string) string {
	parts := strings.Fields(h)
	if len(parts) != 2 {
		return ""
	}
	if strings.EqualFold(parts[0], "bearer") || strings.EqualFold(parts[0], "token") {
		return parts[1]
	}
	return ""
}
