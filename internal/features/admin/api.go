package admin

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/middleware"
)

type AdminApi struct {
	controller *AdminController
	checker    middleware.AccountChecker
}

func NewAdminApi(controller *AdminController, checker middleware.AccountChecker) *AdminApi {
	return &AdminApi{controller: controller, checker: checker}
}

func (h *AdminApi) Setup(app *fiber.App) {
	grp := app.Group("/api/admin",
		middleware.AuthMiddleware(h.checker),
		middleware.RequireRoles(authz.RoleAdmin),
	)

	users := grp.Group("/users")
	users.Get("/", h.controller.ListUsers)
	users.Post("/", h.controller.CreateUser)
	users.Get("/:id", h.controller.GetUser)
	users.Put("/:id", h.controller.UpdateUser)
	users.Put("/:id/deactivate", h.controller.DeactivateUser)
	users.Put("/:id/reactivate", h.controller.ReactivateUser)

	grp.Get("/analytics", h.controller.Analytics)
	grp.Get("/analytics/export", h.controller.ExportAnalytics)
}
