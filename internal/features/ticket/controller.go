package ticket

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/middleware"
	"go-helpdesk/pkg/apperr"
)

type TicketController struct {
	TicketService TicketService
}

func NewTicketController(ticketService TicketService) *TicketController {
	return &TicketController{TicketService: ticketService}
}

func actorFromCtx(c *fiber.Ctx) (Actor, error) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return Actor{}, apperr.Unauthorized("authentication required")
	}
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		return Actor{}, apperr.Unauthorized("invalid token subject")
	}
	return Actor{ID: id, Role: authz.Role(claims.Role), Name: claims.Name}, nil
}

// CreateTicket godoc
// @Summary File a new complaint ticket
// @Tags tickets
// @Router /api/tickets [post]
func (ctrl *TicketController) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var t Ticket
	if err := c.BodyParser(&t); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	if err := ctrl.TicketService.CreateTicket(c.UserContext(), &t, actor); err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "ticket created", t)
}

// ListTickets godoc
// @Summary List visible tickets
// @Tags tickets
// @Router /api/tickets [get]
func (ctrl *TicketController) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	sortBy := c.Query("sort_by", "created_at")
	sortOrder := c.Query("order", "desc")

	filters := map[string]string{
		"status":   c.Query("status"),
		"priority": c.Query("priority"),
		"category": c.Query("category"),
		"type":     c.Query("type"),
		"search":   c.Query("search"),
	}

	tickets, total, err := ctrl.TicketService.ListTickets(c.UserContext(), actor, filters, page, limit, sortBy, sortOrder)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, "tickets", tickets, page, limit, total)
}

func (ctrl *TicketController) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	t, err := ctrl.TicketService.GetTicket(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "ticket", t)
}

func (ctrl *TicketController) UpdateTicket(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var updates map[string]any
	if err := c.BodyParser(&updates); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	t, err := ctrl.TicketService.UpdateTicket(c.UserContext(), c.Params("id"), updates, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "ticket updated", t)
}

func (ctrl *TicketController) DeleteTicket(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := ctrl.TicketService.DeleteTicket(c.UserContext(), c.Params("id"), actor); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "ticket deleted", nil)
}

type statusRequest struct {
	Status TicketStatus `json:"status"`
}

// UpdateStatus applies a transition from the allowed-edges table.
func (ctrl *TicketController) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	t, err := ctrl.TicketService.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "status updated", t)
}

// Resolve is shorthand for the In Progress -> Resolved transition.
func (ctrl *TicketController) Resolve(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	t, err := ctrl.TicketService.UpdateStatus(c.UserContext(), c.Params("id"), TicketStatusResolved, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "ticket resolved", t)
}

type assignRequest struct {
	AssigneeID string `json:"assigneeId"`
}

func (ctrl *TicketController) Assign(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	t, err := ctrl.TicketService.Assign(c.UserContext(), c.Params("id"), req.AssigneeID, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "ticket assigned", t)
}

type commentRequest struct {
	Text string `json:"text"`
}

func (ctrl *TicketController) AddComment(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	t, err := ctrl.TicketService.AddComment(c.UserContext(), c.Params("id"), req.Text, actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "comment added", t)
}

func (ctrl *TicketController) Stats(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return response.Error(c, err)
	}

	stats, err := ctrl.TicketService.Stats(c.UserContext(), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "ticket stats", stats)
}
