package ticket

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/features/category"
	"go-helpdesk/internal/middleware"
)

type TicketApi struct {
	controller *TicketController
	categories *category.CategoryController
	checker    middleware.AccountChecker
}

func NewTicketApi(controller *TicketController, categories *category.CategoryController, checker middleware.AccountChecker) *TicketApi {
	return &TicketApi{controller: controller, categories: categories, checker: checker}
}

// Setup registers all ticket routes. Role checks beyond authentication live
// in the service layer, which also applies the visibility filter. The
// category listing registers ahead of /:id so the static segment wins.
func (h *TicketApi) Setup(app *fiber.App) {
	grp := app.Group("/api/tickets", middleware.AuthMiddleware(h.checker))

	grp.Post("/", h.controller.CreateTicket)
	grp.Get("/", h.controller.ListTickets)
	grp.Get("/stats", h.controller.Stats)
	grp.Get("/categories", h.categories.ListActiveCategories)
	grp.Get("/:id", h.controller.GetTicket)
	grp.Put("/:id", h.controller.UpdateTicket)
	grp.Delete("/:id", h.controller.DeleteTicket)

	grp.Put("/:id/status", h.controller.UpdateStatus)
	grp.Put("/:id/resolve", h.controller.Resolve)
	grp.Put("/:id/assign", h.controller.Assign)
	grp.Post("/:id/comments", h.controller.AddComment)
}
