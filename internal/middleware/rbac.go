package middleware

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/features/authz"
	"go-helpdesk/pkg/apperr"
)

// RequireRoles allows the request through only when the authenticated user
// holds one of the listed roles.
func RequireRoles(allowed ...authz.Role) fiber.Handler {
	allowedSet := make(map[authz.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := CurrentUser(c)
		if !ok {
			return response.Error(c, apperr.Unauthorized("authentication required"))
		}
		if _, exists := allowedSet[authz.Role(claims.Role)]; !exists {
			return response.Error(c, apperr.Forbidden("insufficient role"))
		}
		return c.Next()
	}
}

// RequireCapability gates a route on the authorization policy table.
func RequireCapability(resource authz.Resource, action authz.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := CurrentUser(c)
		if !ok {
			return response.Error(c, apperr.Unauthorized("authentication required"))
		}
		if !authz.Can(authz.Role(claims.Role), resource, action) {
			return response.Error(c, apperr.Forbidden("action not permitted for role"))
		}
		return c.Next()
	}
}
