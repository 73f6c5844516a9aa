package notification

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/middleware"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
)

type NotificationController struct {
	Service NotificationService
}

func NewNotificationController(service NotificationService) *NotificationController {
	return &NotificationController{Service: service}
}

// List returns the caller's notifications, newest first.
func (ctrl *NotificationController) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := ctrl.Service.List(c.UserContext(), userID, unreadOnly, page, limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, "notifications", notifications, page, limit, total)
}

// MarkRead flags a single notification as read.
func (ctrl *NotificationController) MarkRead(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	if err := ctrl.Service.MarkRead(c.UserContext(), userID, c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Error(c, apperr.NotFound("notification"))
		}
		return response.Error(c, err)
	}
	return response.OK(c, "notification marked read", nil)
}

// MarkAllRead flags every unread notification of the caller as read.
func (ctrl *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	count, err := ctrl.Service.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "notifications marked read", fiber.Map{"updated": count})
}
