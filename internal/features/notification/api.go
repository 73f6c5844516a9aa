package notification

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/middleware"
	"go-helpdesk/pkg/utils"
)

type NotificationApi struct {
	controller *NotificationController
	hub        *Hub
	checker    middleware.AccountChecker
}

func NewNotificationApi(controller *NotificationController, hub *Hub, checker middleware.AccountChecker) *NotificationApi {
	return &NotificationApi{controller: controller, hub: hub, checker: checker}
}

// Setup registers notification routes and the websocket endpoint.
func (h *NotificationApi) Setup(app *fiber.App) {
	grp := app.Group("/api/notifications", middleware.AuthMiddleware(h.checker))
	grp.Get("/", h.controller.List)
	grp.Put("/:id/read", h.controller.MarkRead)
	grp.Put("/read-all", h.controller.MarkAllRead)

	// Browsers cannot set Authorization headers on websocket upgrades, so
	// the token rides in a query parameter.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		claims, err := utils.ValidateToken(c.Query("token"))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals("ws_user_id", claims.UserID)
		return c.Next()
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("ws_user_id").(string)
		if userID == "" {
			conn.Close()
			return
		}

		h.hub.Register(userID, conn)
		defer h.hub.Unregister(userID, conn)

		// Reads are discarded; the socket exists for server pushes. The
		// loop exits when the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
