package web

import (
	"github.com/bdedica/tramite/pkg/access"
	"github.com/bdedica/tramite/pkg/models"
	"github.com/gofiber/fiber/v3"
)

// Principal identity headers. Authentication lives upstream; the API
// trusts the gateway-injected pair and only enforces the role policy.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const principalKey = "principal"

// Principal is the caller identity resolved from the request headers.
type Principal struct {
	UserID string
	Role   models.Role
}

// WithPrincipal extracts the caller identity and stores it on the
// request context. Requests without both headers are refused.
func WithPrincipal() fiber.Handler {
	return func(c fiber.Ctx) error {
		userID := c.Get(HeaderUserID)
		role := c.Get(HeaderUserRole)

		if userID == "" || role == "" {
			return unauthorized(c, "missing identity headers")
		}

		c.Locals(principalKey, Principal{UserID: userID, Role: models.Role(role)})

		return c.Next()
	}
}

// RequireAction gates a route on the role policy.
func RequireAction(action access.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		principal, ok := c.Locals(principalKey).(Principal)
		if !ok {
			return unauthorized(c, "missing identity headers")
		}

		if !access.IsAuthorized(principal.Role, action) {
			return forbidden(c, "role is not allowed to perform this action")
		}

		return c.Next()
	}
}

func principalFrom(c fiber.Ctx) Principal {
	principal, _ := c.Locals(principalKey).(Principal)

	return principal
}
