package servicerequest

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
	"go-helpdesk/internal/features/ticket"
	"go-helpdesk/internal/features/user"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
)

// RequestStats summarizes the requester's visible service requests.
type RequestStats struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"byStatus"`
	ByServiceType map[string]int64 `json:"byServiceType"`
}

// RequestService defines the interface for service-request business logic
type RequestService interface {
	CreateRequest(ctx context.Context, req *ServiceRequest, actor ticket.Actor) error
	GetRequest(ctx context.Context, id string, actor ticket.Actor) (*ServiceRequest, error)
	ListRequests(ctx context.Context, actor ticket.Actor, filters map[string]string, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error)
	UpdateRequest(ctx context.Context, id string, updates map[string]any, actor ticket.Actor) (*ServiceRequest, error)
	DeleteRequest(ctx context.Context, id string, actor ticket.Actor) error

	Approve(ctx context.Context, id string, actor ticket.Actor) (*ServiceRequest, error)
	Reject(ctx context.Context, id string, reason string, actor ticket.Actor) (*ServiceRequest, error)
	UpdateStatus(ctx context.Context, id string, to RequestStatus, actor ticket.Actor) (*ServiceRequest, error)
	Assign(ctx context.Context, id string, assigneeID string, actor ticket.Actor) (*ServiceRequest, error)
	AddComment(ctx context.Context, id string, text string, actor ticket.Actor) (*ServiceRequest, error)
	Stats(ctx context.Context, actor ticket.Actor) (*RequestStats, error)
}

type RequestServiceImpl struct {
	Repo            RequestRepository
	CategoryService category.CategoryService
	UserService     user.UserService
	Notifications   notification.NotificationService
}

// NewRequestService creates a new service-request service
func NewRequestService(
	repo RequestRepository,
	categoryService category.CategoryService,
	userService user.UserService,
	notifications notification.NotificationService,
) RequestService {
	return &RequestServiceImpl{
		Repo:            repo,
		CategoryService: categoryService,
		UserService:     userService,
		Notifications:   notifications,
	}
}

// CreateRequest validates the scheduling window and classification, then
// files the request in Pending.
func (s *RequestServiceImpl) CreateRequest(ctx context.Context, req *ServiceRequest, actor ticket.Actor) error {
	if !authz.Can(actor.Role, authz.ResourceServiceRequest, authz.ActionCreate) {
		return apperr.Forbidden("role may not create service requests")
	}

	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return apperr.Validation("description is required", nil)
	}
	if req.DateFrom.IsZero() || req.DateTo.IsZero() {
		return apperr.Validation("scheduling window is required", nil)
	}
	if req.DateTo.Before(req.DateFrom) {
		return apperr.Validation("dateTo must not precede dateFrom", nil)
	}
	if req.DurationHours <= 0 {
		return apperr.Validation("duration must be positive", nil)
	}
	if !req.ServiceType.Valid() {
		return apperr.Validation("invalid service type", map[string]any{"serviceType": req.ServiceType})
	}
	if req.Priority == "" {
		req.Priority = ticket.TicketPriorityMedium
	}
	if !req.Priority.Valid() {
		return apperr.Validation("invalid priority", map[string]any{"priority": req.Priority})
	}
	if err := s.CategoryService.ValidateClassification(ctx, req.Category, req.Subcategory); err != nil {
		return err
	}

	requestID, err := s.Repo.NextRequestID(ctx)
	if err != nil {
		return err
	}

	req.RequestID = requestID
	req.TicketType = TicketTypeServiceRequest
	req.Status = RequestStatusPending
	req.CreatedBy = actor.ID
	req.AssignedTo = nil
	req.Comments = []ticket.Comment{}
	req.ApprovedBy = nil
	req.ApprovedAt = nil
	req.RejectionReason = ""
	req.CompletedAt = nil

	return s.Repo.Create(ctx, req)
}

func (s *RequestServiceImpl) loadVisible(ctx context.Context, id string, actor ticket.Actor) (*ServiceRequest, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid request ID", nil)
	}

	req, err := s.Repo.FindByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("service request")
		}
		return nil, err
	}
	if !authz.CanSeeRecord(actor.Role, actor.ID, req.CreatedBy, req.AssignedTo) {
		return nil, apperr.Forbidden("service request is not visible to requester")
	}
	return req, nil
}

func (s *RequestServiceImpl) GetRequest(ctx context.Context, id string, actor ticket.Actor) (*ServiceRequest, error) {
	return s.loadVisible(ctx, id, actor)
}

func (s *RequestServiceImpl) ListRequests(ctx context.Context, actor ticket.Actor, filters map[string]string, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error) {
	filter, err := authz.VisibilityFilter(actor.Role, actor.ID)
	if err != nil {
		return nil, 0, err
	}

	if status := filters["status"]; status != "" {
		filter["status"] = status
	}
	if serviceType := filters["service_type"]; serviceType != "" {
		filter["service_type"] = serviceType
	}
	if priority := filters["priority"]; priority != "" {
		filter["priority"] = priority
	}
	if search := filters["search"]; search != "" {
		filter["$and"] = []bson.M{{"$or": []bson.M{
			{"request_id": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}}}
	}

	return s.Repo.FindAllPopulated(ctx, filter, page, limit, sortBy, sortOrder)
}

// UpdateRequest edits mutable fields while the request is still Pending.
func (s *RequestServiceImpl) UpdateRequest(ctx context.Context, id string, updates map[string]any, actor ticket.Actor) (*ServiceRequest, error) {
	req, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if req.Status != RequestStatusPending {
		return nil, apperr.Conflict("only pending requests may be edited", map[string]any{"status": req.Status})
	}
	if req.CreatedBy != actor.ID && actor.Role != authz.RoleAdmin {
		return nil, apperr.Forbidden("only the creator or an admin may edit this request")
	}

	allowed := bson.M{}
	if description, ok := updates["description"].(string); ok && strings.TrimSpace(description) != "" {
		allowed["description"] = strings.TrimSpace(description)
	}
	if priority, ok := updates["priority"].(string); ok {
		if !ticket.TicketPriority(priority).Valid() {
			return nil, apperr.Validation("invalid priority", nil)
		}
		allowed["priority"] = priority
	}
	if duration, ok := updates["durationHours"].(float64); ok {
		if duration <= 0 {
			return nil, apperr.Validation("duration must be positive", nil)
		}
		allowed["duration_hours"] = duration
	}
	if len(allowed) == 0 {
		return nil, apperr.Validation("no updatable fields provided", nil)
	}

	if err := s.Repo.Update(ctx, req.ID, allowed); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, req.ID)
}

func (s *RequestServiceImpl) DeleteRequest(ctx context.Context, id string, actor ticket.Actor) error {
	if actor.Role != authz.RoleAdmin {
		return apperr.Forbidden("only admins may delete service requests")
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid request ID", nil)
	}
	if err := s.Repo.Delete(ctx, objID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("service request")
		}
		return err
	}
	return nil
}

// Approve moves a Pending request to Approved, stamping the approver.
func (s *RequestServiceImpl) Approve(ctx context.Context, id string, actor ticket.Actor) (*ServiceRequest, error) {
	req, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor.Role, authz.ResourceServiceRequest, authz.ActionApprove) {
		return nil, apperr.Forbidden("role may not approve service requests")
	}
	if err := ValidateTransition(req.Status, RequestStatusApproved, actor.Role); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.Repo.UpdateWhere(ctx,
		bson.M{"_id": req.ID, "status": RequestStatusPending},
		bson.M{"$set": bson.M{
			"status":      RequestStatusApproved,
			"approved_by": actor.ID,
			"approved_at": now,
			"updated_at":  now,
		}},
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Conflict("request status changed concurrently", nil)
		}
		return nil, err
	}

	s.notify(ctx, req.CreatedBy, actor, notification.KindApproval, "Service request "+req.RequestID+" was approved", req.RequestID)
	return s.Repo.FindByID(ctx, req.ID)
}

// Reject moves a Pending request to the terminal Rejected state.
func (s *RequestServiceImpl) Reject(ctx context.Context, id string, reason string, actor ticket.Actor) (*ServiceRequest, error) {
	req, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor.Role, authz.ResourceServiceRequest, authz.ActionApprove) {
		return nil, apperr.Forbidden("role may not reject service requests")
	}
	if err := ValidateTransition(req.Status, RequestStatusRejected, actor.Role); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.Repo.UpdateWhere(ctx,
		bson.M{"_id": req.ID, "status": RequestStatusPending},
		bson.M{"$set": bson.M{
			"status":           RequestStatusRejected,
			"rejection_reason": reason,
			"updated_at":       now,
		}},
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Conflict("request status changed concurrently", nil)
		}
		return nil, err
	}

	s.notify(ctx, req.CreatedBy, actor, notification.KindApproval, "Service request "+req.RequestID+" was rejected", req.RequestID)
	return s.Repo.FindByID(ctx, req.ID)
}

// UpdateStatus applies the Approved -> In Progress and In Progress ->
// Completed edges.
func (s *RequestServiceImpl) UpdateStatus(ctx context.Context, id string, to RequestStatus, actor ticket.Actor) (*ServiceRequest, error) {
	req, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(req.Status, to, actor.Role); err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{"status": to, "updated_at": now}
	if to == RequestStatusCompleted {
		set["completed_at"] = now
	}

	err = s.Repo.UpdateWhere(ctx,
		bson.M{"_id": req.ID, "status": req.Status},
		bson.M{"$set": set},
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Conflict("request status changed concurrently", nil)
		}
		return nil, err
	}

	s.notify(ctx, req.CreatedBy, actor, notification.KindStatusChange, "Service request "+req.RequestID+" is now "+string(to), req.RequestID)
	return s.Repo.FindByID(ctx, req.ID)
}

// Assign sets the assignee on a non-terminal request.
func (s *RequestServiceImpl) Assign(ctx context.Context, id string, assigneeID string, actor ticket.Actor) (*ServiceRequest, error) {
	if !authz.Can(actor.Role, authz.ResourceServiceRequest, authz.ActionAssign) {
		return nil, apperr.Forbidden("role may not assign service requests")
	}

	req, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if IsTerminal(req.Status) {
		return nil, apperr.Conflict("service request is in a terminal state", map[string]any{"status": req.Status})
	}

	assigneeObjID, err := primitive.ObjectIDFromHex(assigneeID)
	if err != nil {
		return nil, apperr.Validation("invalid assignee ID", nil)
	}
	assignee, err := s.UserService.ValidateAssignee(ctx, assigneeObjID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Update(ctx, req.ID, bson.M{"assigned_to": assignee.ID}); err != nil {
		return nil, err
	}

	if s.Notifications != nil && assignee.ID != actor.ID {
		_ = s.Notifications.Notify(ctx, assignee.ID, notification.KindAssignment,
			"Service request "+req.RequestID+" assigned to you", req.RequestID)
	}
	return s.Repo.FindByID(ctx, req.ID)
}

// AddComment appends an immutable comment.
func (s *RequestServiceImpl) AddComment(ctx context.Context, id string, text string, actor ticket.Actor) (*ServiceRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("comment text is required", nil)
	}

	req, err := s.loadVisible(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	comment := ticket.Comment{
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := s.Repo.AppendComment(ctx, req.ID, comment); err != nil {
		return nil, err
	}

	if req.CreatedBy != actor.ID {
		s.notify(ctx, req.CreatedBy, actor, notification.KindComment, "New comment on service request "+req.RequestID, req.RequestID)
	}
	return s.Repo.FindByID(ctx, req.ID)
}

// Stats aggregates the requester's visible service requests.
func (s *RequestServiceImpl) Stats(ctx context.Context, actor ticket.Actor) (*RequestStats, error) {
	match, err := authz.VisibilityFilter(actor.Role, actor.ID)
	if err != nil {
		return nil, err
	}

	stats := &RequestStats{
		ByStatus:      map[string]int64{},
		ByServiceType: map[string]int64{},
	}

	byStatus, err := s.Repo.CountBy(ctx, "status", match)
	if err != nil {
		return nil, err
	}
	for _, bucket := range byStatus {
		stats.ByStatus[bucket.Key] = bucket.Count
		stats.Total += bucket.Count
	}

	byType, err := s.Repo.CountBy(ctx, "service_type", match)
	if err != nil {
		return nil, err
	}
	for _, bucket := range byType {
		stats.ByServiceType[bucket.Key] = bucket.Count
	}

	return stats, nil
}

func (s *RequestServiceImpl) notify(ctx context.Context, recipient primitive.ObjectID, actor ticket.Actor, kind notification.Kind, message, recordID string) {
	if s.Notifications == nil || recipient == actor.ID {
		return
	}
	_ = s.Notifications.Notify(ctx, recipient, kind, message, recordID)
}
