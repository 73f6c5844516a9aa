package auth

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/middleware"
)

type AuthApi struct {
	controller *AuthController
	checker    middleware.AccountChecker
}

func NewAuthApi(controller *AuthController, checker middleware.AccountChecker) *AuthApi {
	return &AuthApi{controller: controller, checker: checker}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	grp := app.Group("/api/auth")

	grp.Post("/register", h.controller.Register)
	grp.Post("/login", h.controller.Login)

	authed := grp.Use(middleware.AuthMiddleware(h.checker))
	authed.Post("/logout", h.controller.Logout)
	authed.Get("/me", h.controller.Me)
	authed.Put("/profile", h.controller.UpdateProfile)
	authed.Put("/password", h.controller.ChangePassword)
}
