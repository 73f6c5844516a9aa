package servicerequest

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/middleware"
)

type RequestApi struct {
	controller *RequestController
	checker    middleware.AccountChecker
}

func NewRequestApi(controller *RequestController, checker middleware.AccountChecker) *RequestApi {
	return &RequestApi{controller: controller, checker: checker}
}

func (h *RequestApi) Setup(app *fiber.App) {
	grp := app.Group("/api/service-requests", middleware.AuthMiddleware(h.checker))

	grp.Post("/", h.controller.CreateRequest)
	grp.Get("/", h.controller.ListRequests)
	grp.Get("/stats", h.controller.Stats)
	grp.Get("/:id", h.controller.GetRequest)
	grp.Put("/:id", h.controller.UpdateRequest)
	grp.Delete("/:id", h.controller.DeleteRequest)

	grp.Put("/:id/approve", h.controller.Approve)
	grp.Put("/:id/reject", h.controller.Reject)
	grp.Put("/:id/status", h.controller.UpdateStatus)
	grp.Put("/:id/assign", h.controller.Assign)
	grp.Post("/:id/comments", h.controller.AddComment)
}
