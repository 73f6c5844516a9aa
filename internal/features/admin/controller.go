package admin

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/features/user"
	"go-helpdesk/pkg/apperr"
)

type AdminController struct {
	UserService      user.UserService
	AnalyticsService AnalyticsService
}

func NewAdminController(userService user.UserService, analyticsService AnalyticsService) *AdminController {
	return &AdminController{UserService: userService, AnalyticsService: analyticsService}
}

// ListUsers godoc
// @Summary List users with role, department and activity filters
// @Tags admin
// @Router /api/admin/users [get]
func (ctrl *AdminController) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)

	filters := map[string]string{
		"role":       c.Query("role"),
		"department": c.Query("department"),
		"is_active":  c.Query("is_active"),
		"search":     c.Query("search"),
	}

	users, total, err := ctrl.UserService.ListUsers(c.UserContext(), filters, page, limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, "users", users, page, limit, total)
}

type createUserRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (ctrl *AdminController) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	u, err := ctrl.UserService.CreateUser(c.UserContext(), req.Email, req.Name, req.Password, authz.Role(req.Role), req.Department)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "user created", u)
}

func (ctrl *AdminController) GetUser(c *fiber.Ctx) error {
	u, err := ctrl.UserService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "user", u)
}

func (ctrl *AdminController) UpdateUser(c *fiber.Ctx) error {
	var updates map[string]any
	if err := c.BodyParser(&updates); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	u, err := ctrl.UserService.UpdateUser(c.UserContext(), c.Params("id"), updates)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "user updated", u)
}

// DeactivateUser disables the account. The user's open sessions are cut at
// the auth middleware on their next request, and any live websocket gets a
// forced-logout push.
func (ctrl *AdminController) DeactivateUser(c *fiber.Ctx) error {
	if err := ctrl.UserService.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "user deactivated", nil)
}

func (ctrl *AdminController) ReactivateUser(c *fiber.Ctx) error {
	if err := ctrl.UserService.Reactivate(c.UserContext(), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "user reactivated", nil)
}

// Analytics godoc
// @Summary Dashboard counts across tickets, service requests and users
// @Tags admin
// @Router /api/admin/analytics [get]
func (ctrl *AdminController) Analytics(c *fiber.Ctx) error {
	overview, err := ctrl.AnalyticsService.Overview(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "analytics", overview)
}

// ExportAnalytics streams the overview as an .xlsx attachment.
func (ctrl *AdminController) ExportAnalytics(c *fiber.Ctx) error {
	buf, err := ctrl.AnalyticsService.ExportXLSX(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}

	filename := "helpdesk-analytics-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendStream(buf)
}
