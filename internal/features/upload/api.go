package upload

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/config"
	"go-helpdesk/internal/middleware"
)

type UploadApi struct {
	controller *UploadController
	checker    middleware.AccountChecker
	cfg        *config.Config
}

func NewUploadApi(controller *UploadController, checker middleware.AccountChecker, cfg *config.Config) *UploadApi {
	return &UploadApi{controller: controller, checker: checker, cfg: cfg}
}

func (h *UploadApi) Setup(app *fiber.App) {
	// Uploaded files are served back under the configured URL prefix.
	app.Static(h.cfg.FSURL, h.cfg.FSPath)

	grp := app.Group("/api/upload", middleware.AuthMiddleware(h.checker))
	grp.Post("/", h.controller.Upload)
	grp.Post("/multiple", h.controller.UploadMultiple)
	grp.Get("/", h.controller.ListUploads)
	grp.Get("/:id", h.controller.GetUpload)
}
