package ticket

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/features/category"
	"go-helpdesk/internal/features/notification"
	"go-helpdesk/internal/features/user"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
)

// TicketStats summarizes the requester's visible tickets.
type TicketStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
	ByCategory map[string]int64 `json:"byCategory"`
}

// Actor identifies the requesting user inside service calls.
type Actor struct {
	ID   primitive.ObjectID
	Role authz.Role
	Name string
}

// TicketService defines the interface for ticket business logic
type TicketService interface {
	CreateTicket(ctx context.Context, t *Ticket, actor Actor) error
	GetTicket(ctx context.Context, id string, actor Actor) (*Ticket, error)
	ListTickets(ctx context.Context, actor Actor, filters map[string]string, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error)
	UpdateTicket(ctx context.Context, id string, updates map[string]any, actor Actor) (*Ticket, error)
	DeleteTicket(ctx context.Context, id string, actor Actor) error

	UpdateStatus(ctx context.Context, id string, to TicketStatus, actor Actor) (*Ticket, error)
	Assign(ctx context.Context, id string, assigneeID string, actor Actor) (*Ticket, error)
	AddComment(ctx context.Context, id string, text string, actor Actor) (*Ticket, error)
	Stats(ctx context.Context, actor Actor) (*TicketStats, error)
}

// TicketServiceImpl implements TicketService
type TicketServiceImpl struct {
	TicketRepo      TicketRepository
	CategoryService category.CategoryService
	UserService     user.UserService
	Notifications   notification.NotificationService
}

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo TicketRepository,
	categoryService category.CategoryService,
	userService user.UserService,
	notifications notification.NotificationService,
) TicketService {
	return &TicketServiceImpl{
		TicketRepo:      ticketRepo,
		CategoryService: categoryService,
		UserService:     userService,
		Notifications:   notifications,
	}
}

// CreateTicket validates classification and opens a new complaint ticket.
func (s *TicketServiceImpl) CreateTicket(ctx context.Context, t *Ticket, actor Actor) error {
	if !authz.Can(actor.Role, authz.ResourceTicket, authz.ActionCreate) {
		return apperr.Forbidden("role may not create tickets")
	}

	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		return apperr.Validation("description is required", nil)
	}
	if t.Type != string(category.CategoryTypeHardware) && t.Type != string(category.CategoryTypeSoftware) {
		return apperr.Validation("type must be Hardware or Software", map[string]any{"type": t.Type})
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityMedium
	}
	if !t.Priority.Valid() {
		return apperr.Validation("invalid priority", map[string]any{"priority": t.Priority})
	}
	if err := s.CategoryService.ValidateClassification(ctx, t.Category, t.Subcategory); err != nil {
		return err
	}

	ticketID, err := s.TicketRepo.NextTicketID(ctx)
	if err != nil {
		return err
	}

	t.TicketID = ticketID
	t.TicketType = TicketTypeComplaint
	t.Status = TicketStatusOpen
	t.CreatedBy = actor.ID
	t.AssignedTo = nil
	t.Comments = []Comment{}
	t.ResolvedAt = nil
	t.ClosedAt = nil

	return s.TicketRepo.Create(ctx, t)
}

func (s *TicketServiceImpl) loadVisible(ctx context.Context, id string, actor Actor) (*Ticket, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid ticket ID", nil)
	}

	t, err := s.TicketRepo.FindByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("ticket")
		}
		return nil, err
	}
	if !authz.CanSeeRecord(actor.Role, actor.ID, t.CreatedBy, t.AssignedTo) {
		return nil, apperr.Forbidden("ticket is not visible to requester")
	}
	return t, nil
}

func (s *TicketServiceImpl) GetTicket(ctx context.Context, id string, actor Actor) (*Ticket, error) {
	return s.loadVisible(ctx, id, actor)
}

// ListTickets returns visibility-scoped tickets with creator/assignee
// references populated.
func (s *TicketServiceImpl) ListTickets(ctx context.Context, actor Actor, filters map[string]string, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error) {
	filter, err := authz.VisibilityFilter(actor.Role, actor.ID)
	if err != nil {
		return nil, 0, err
	}

	if status := filters["status"]; status != "" {
		filter["status"] = status
	}
	if priority := filters["priority"]; priority != "" {
		filter["priority"] = priority
	}
	if cat := filters["category"]; cat != "" {
		filter["category"] = cat
	}
	if ticketType := filters["type"]; ticketType != "" {
		filter["type"] = ticketType
	}
	if search := filters["search"]; search != "" {
		filter["$and"] = []bson.M{{"$or": []bson.M{
			{"ticket_id": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}}}
	}

	return s.TicketRepo.FindAllPopulated(ctx, filter, page, limit, sortBy, sortOrder)
}

// UpdateTicket edits mutable fields. The creator may edit while the ticket
// is still Open; agents and admins may edit any non-terminal ticket.
func (s *TicketServiceImpl) UpdateTicket(ctx context.Context, id string, updates map[string]any, actor Actor) (*Ticket, error) {
	t, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if IsTerminal(t.Status) {
		return nil, apperr.Conflict("ticket is in a terminal state", map[string]any{"status": t.Status})
	}

	isCreatorEdit := t.CreatedBy == actor.ID && t.Status == TicketStatusOpen
	if !isCreatorEdit && !authz.Can(actor.Role, authz.ResourceTicket, authz.ActionUpdate) {
		return nil, apperr.Forbidden("role may not update this ticket")
	}

	allowed := bson.M{}
	if description, ok := updates["description"].(string); ok && strings.TrimSpace(description) != "" {
		allowed["description"] = strings.TrimSpace(description)
	}
	if priority, ok := updates["priority"].(string); ok {
		if !TicketPriority(priority).Valid() {
			return nil, apperr.Validation("invalid priority", nil)
		}
		allowed["priority"] = priority
	}
	if cat, ok := updates["category"].(string); ok {
		sub, _ := updates["subcategory"].(string)
		if err := s.CategoryService.ValidateClassification(ctx, cat, sub); err != nil {
			return nil, err
		}
		allowed["category"] = cat
		allowed["subcategory"] = sub
	}
	if attachments, ok := updates["attachments"].([]any); ok {
		urls := make([]string, 0, len(attachments))
		for _, a := range attachments {
			if url, ok := a.(string); ok {
				urls = append(urls, url)
			}
		}
		allowed["attachments"] = urls
	}
	if len(allowed) == 0 {
		return nil, apperr.Validation("no updatable fields provided", nil)
	}

	if err := s.TicketRepo.Update(ctx, t.ID, allowed); err != nil {
		return nil, err
	}
	return s.TicketRepo.FindByID(ctx, t.ID)
}

func (s *TicketServiceImpl) DeleteTicket(ctx context.Context, id string, actor Actor) error {
	if actor.Role != authz.RoleAdmin {
		return apperr.Forbidden("only admins may delete tickets")
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid ticket ID", nil)
	}
	if err := s.TicketRepo.Delete(ctx, objID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("ticket")
		}
		return err
	}
	return nil
}

// UpdateStatus applies a transition from the allowed-edges table, stamping
// resolved_at/closed_at where the edge requires it. The write is guarded on
// the observed status so a raced transition fails instead of double-applying.
func (s *TicketServiceImpl) UpdateStatus(ctx context.Context, id string, to TicketStatus, actor Actor) (*Ticket, error) {
	t, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(t, to, actor.Role, actor.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{"status": to, "updated_at": now}
	update := bson.M{"$set": set}
	switch to {
	case TicketStatusResolved:
		set["resolved_at"] = now
	case TicketStatusClosed:
		set["closed_at"] = now
	case TicketStatusRejected:
		// A rejected ticket is not resolved; clear any stamp left by a
		// Resolved -> Rejected edge.
		update["$unset"] = bson.M{"resolved_at": ""}
	}

	err = s.TicketRepo.UpdateWhere(ctx,
		bson.M{"_id": t.ID, "status": t.Status},
		update,
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Conflict("ticket status changed concurrently", nil)
		}
		return nil, err
	}

	s.notify(ctx, t.CreatedBy, actor, notification.KindStatusChange,
		"Ticket "+t.TicketID+" is now "+string(to), t.TicketID)

	return s.TicketRepo.FindByID(ctx, t.ID)
}

// Assign sets the assignee. Permitted at any non-terminal status;
// reassignment simply overwrites (last write wins at the store).
func (s *TicketServiceImpl) Assign(ctx context.Context, id string, assigneeID string, actor Actor) (*Ticket, error) {
	if !authz.Can(actor.Role, authz.ResourceTicket, authz.ActionAssign) {
		return nil, apperr.Forbidden("role may not assign tickets")
	}

	t, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if IsTerminal(t.Status) {
		return nil, apperr.Conflict("ticket is in a terminal state", map[string]any{"status": t.Status})
	}

	assigneeObjID, err := primitive.ObjectIDFromHex(assigneeID)
	if err != nil {
		return nil, apperr.Validation("invalid assignee ID", nil)
	}
	assignee, err := s.UserService.ValidateAssignee(ctx, assigneeObjID)
	if err != nil {
		return nil, err
	}

	if err := s.TicketRepo.Update(ctx, t.ID, bson.M{"assigned_to": assignee.ID}); err != nil {
		return nil, err
	}

	s.notify(ctx, assignee.ID, actor, notification.KindAssignment,
		"Ticket "+t.TicketID+" assigned to you", t.TicketID)

	return s.TicketRepo.FindByID(ctx, t.ID)
}

// AddComment appends an immutable comment; any user with read access may
// comment.
func (s *TicketServiceImpl) AddComment(ctx context.Context, id string, text string, actor Actor) (*Ticket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("comment text is required", nil)
	}

	t, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := s.TicketRepo.AppendComment(ctx, t.ID, comment); err != nil {
		return nil, err
	}

	if t.CreatedBy != actor.ID {
		s.notify(ctx, t.CreatedBy, actor, notification.KindComment,
			"New comment on ticket "+t.TicketID, t.TicketID)
	}

	return s.TicketRepo.FindByID(ctx, t.ID)
}

// Stats aggregates the requester's visible tickets.
func (s *TicketServiceImpl) Stats(ctx context.Context, actor Actor) (*TicketStats, error) {
	match, err := authz.VisibilityFilter(actor.Role, actor.ID)
	if err != nil {
		return nil, err
	}

	stats := &TicketStats{
		ByStatus:   map[string]int64{},
		ByPriority: map[string]int64{},
		ByCategory: map[string]int64{},
	}

	byStatus, err := s.TicketRepo.CountBy(ctx, "status", match)
	if err != nil {
		return nil, err
	}
	for _, bucket := range byStatus {
		stats.ByStatus[bucket.Key] = bucket.Count
		stats.Total += bucket.Count
	}

	byPriority, err := s.TicketRepo.CountBy(ctx, "priority", match)
	if err != nil {
		return nil, err
	}
	for _, bucket := range byPriority {
		stats.ByPriority[bucket.Key] = bucket.Count
	}

	byCategory, err := s.TicketRepo.CountBy(ctx, "category", match)
	if err != nil {
		return nil, err
	}
	for _, bucket := range byCategory {
		stats.ByCategory[bucket.Key] = bucket.Count
	}

	return stats, nil
}

func (s *TicketServiceImpl) notify(ctx context.Context, recipient primitive.ObjectID, actor Actor, kind notification.Kind, message, recordID string) {
	if s.Notifications == nil || recipient == actor.ID {
		return
	}
	_ = s.Notifications.Notify(ctx, recipient, kind, message, recordID)
}
