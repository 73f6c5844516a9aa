package category

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/middleware"
)

type CategoryApi struct {
	controller *CategoryController
	checker    middleware.AccountChecker
}

func NewCategoryApi(controller *CategoryController, checker middleware.AccountChecker) *CategoryApi {
	return &CategoryApi{controller: controller, checker: checker}
}

// Setup registers the admin category CRUD. The active listing for ticket
// forms is registered by the ticket routes so it sits ahead of /:id.
func (h *CategoryApi) Setup(app *fiber.App) {
	admin := app.Group("/api/admin/categories",
		middleware.AuthMiddleware(h.checker),
		middleware.RequireRoles(authz.RoleAdmin),
	)
	admin.Post("/", h.controller.CreateCategory)
	admin.Get("/", h.controller.ListCategories)
	admin.Get("/:id", h.controller.GetCategory)
	admin.Put("/:id", h.controller.UpdateCategory)
	admin.Delete("/:id", h.controller.DeleteCategory)
}
