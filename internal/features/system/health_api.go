package system

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/database"
	"go-helpdesk/pkg/apperr"
)

type HealthApi struct {
	db *database.MongodbDB
}

func NewHealthApi(db *database.MongodbDB) *HealthApi {
	return &HealthApi{db: db}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := h.db.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
			return response.Error(c, apperr.Internal(err))
		}
		return response.OK(c, "healthy", fiber.Map{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})
}
