package servicerequest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/features/ticket"
	"go-helpdesk/internal/middleware"
	"go-helpdesk/pkg/apperr"
)

type RequestController struct {
	RequestService RequestService
}

func NewRequestController(requestService RequestService) *RequestController {
	return &RequestController{RequestService: requestService}
}

func actorFromCtx(c *fiber.Ctx) (ticket.Actor, error) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return ticket.Actor{}, apperr.Unauthorized("authentication required")
	}
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		return ticket.Actor{}, apperr.Unauthorized("invalid token subject")
	}
	return ticket.Actor{ID: id, Role: authz.Role(claims.Role), Name: claims.Name}, nil
}

// CreateRequest godoc
// @Summary File a new service request
// @Tags service-requests
// @Router /api/service-requests [post]
func (ctrl *RequestController) CreateRequest(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	if err := ctrl.RequestService.CreateRequest(c.UserContext(), &req, actor); err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "service request created", req)
}

// ListRequests godoc
// @Summary List visible service requests
// @Tags service-requests
// @Router /api/service-requests [get]
func (ctrl *RequestController) ListRequests(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	sortBy := c.Query("sort_by", "created_at")
	sortOrder := c.Query("order", "desc")

	filters := map[string]string{
		"status":       c.Query("status"),
		"service_type": c.Query("service_type"),
		"priority":     c.Query("priority"),
		"search":       c.Query("search"),
	}

	requests, total, err := ctrl.RequestService.ListRequests(c.UserContext(), actor, filters, page, limit, sortBy, sortOrder)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, "service requests", requests, page, limit, total)
}

func (ctrl *RequestController) GetRequest(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	req, err := ctrl.RequestService.GetRequest(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "service request", req)
}

func (ctrl *RequestController) UpdateRequest(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var updates map[string]any
	if err := c.BodyParser(&updates); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	req, err := ctrl.RequestService.UpdateRequest(c.UserContext(), c.Params("id"), updates, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "service request updated", req)
}

func (ctrl *RequestController) DeleteRequest(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := ctrl.RequestService.DeleteRequest(c.UserContext(), c.Params("id"), actor); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "service request deleted", nil)
}

// Approve moves a pending request to Approved and stamps the approver.
func (ctrl *RequestController) Approve(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	req, err := ctrl.RequestService.Approve(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "service request approved", req)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject moves a pending request to Rejected with an optional reason.
func (ctrl *RequestController) Reject(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var body rejectRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	req, err := ctrl.RequestService.Reject(c.UserContext(), c.Params("id"), body.Reason, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "service request rejected", req)
}

type statusRequest struct {
	Status RequestStatus `json:"status"`
}

func (ctrl *RequestController) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var body statusRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	req, err := ctrl.RequestService.UpdateStatus(c.UserContext(), c.Params("id"), body.Status, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "status updated", req)
}

type assignRequest struct {
	AssigneeID string `json:"assigneeId"`
}

func (ctrl *RequestController) Assign(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var body assignRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	req, err := ctrl.RequestService.Assign(c.UserContext(), c.Params("id"), body.AssigneeID, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "service request assigned", req)
}

type commentRequest struct {
	Text string `json:"text"`
}

func (ctrl *RequestController) AddComment(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var body commentRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	req, err := ctrl.RequestService.AddComment(c.UserContext(), c.Params("id"), body.Text, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "comment added", req)
}

func (ctrl *RequestController) Stats(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	stats, err := ctrl.RequestService.Stats(c.UserContext(), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "service request stats", stats)
}
