package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/pkg/apperr"
	"go-helpdesk/pkg/utils"
)

// AccountChecker reports whether the account behind a token is still active.
// Satisfied by the user service; declared here to avoid a feature import.
type AccountChecker interface {
	IsActive(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

// AuthMiddleware validates JWT tokens, rejects deactivated accounts, and
// injects user claims into the request context.
func AuthMiddleware(checker AccountChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, apperr.Unauthorized("authorization header required"))
		}

		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return response.Error(c, apperr.Unauthorized("invalid authorization header format"))
		}

		claims, err := utils.ValidateToken(authHeader[7:])
		if err != nil {
			return response.Error(c, apperr.Unauthorized("invalid token"))
		}

		if checker != nil {
			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return response.Error(c, apperr.Unauthorized("invalid token subject"))
			}
			active, err := checker.IsActive(c.UserContext(), userID)
			if err != nil {
				return response.Error(c, err)
			}
			if !active {
				return response.Error(c, apperr.AccountDeactivated())
			}
		}

		c.Locals(utils.UserClaimsKey, claims)
		return c.Next()
	}
}

// CurrentUser extracts the authenticated claims set by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (*utils.UserClaims, bool) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	return claims, ok
}

// CurrentUserID extracts the authenticated user's ObjectID.
func CurrentUserID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	claims, ok := CurrentUser(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
