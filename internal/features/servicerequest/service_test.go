package servicerequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

type fakeRequestRepo struct {
	requests map[primitive.ObjectID]*ServiceRequest
	seq      int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[primitive.ObjectID]*ServiceRequest{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *ServiceRequest) error {
	req.ID = primitive.NewObjectID()
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	stored := *req
	r.requests[req.ID] = &stored
	return nil
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id primitive.ObjectID) (*ServiceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) FindAll(_ context.Context, filter bson.M, _, _ int64, _, _ string) ([]ServiceRequest, int64, error) {
	var out []ServiceRequest
	for _, req := range r.requests {
		if r.matches(req, filter) {
			out = append(out, *req)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) FindAllPopulated(_ context.Context, filter bson.M, _, _ int64, _, _ string) ([]bson.M, int64, error) {
	var out []bson.M
	for _, req := range r.requests {
		if r.matches(req, filter) {
			out = append(out, bson.M{"request_id": req.RequestID})
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) matches(req *ServiceRequest, filter bson.M) bool {
	if createdBy, ok := filter["created_by"].(primitive.ObjectID); ok && req.CreatedBy != createdBy {
		return false
	}
	return true
}

func (r *fakeRequestRepo) Update(_ context.Context, id primitive.ObjectID, updates bson.M) error {
	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if assignee, ok := updates["assigned_to"].(primitive.ObjectID); ok {
		req.AssignedTo = &assignee
	}
	return nil
}

func (r *fakeRequestRepo) UpdateWhere(_ context.Context, filter, update bson.M) error {
	id := filter["_id"].(primitive.ObjectID)
	req, ok := r.requests[id]
	if !ok || req.Status != filter["status"].(RequestStatus) {
		return repository.ErrNotFound
	}
	set := update["$set"].(bson.M)
	if status, ok := set["status"].(RequestStatus); ok {
		req.Status = status
	}
	if approvedBy, ok := set["approved_by"].(primitive.ObjectID); ok {
		req.ApprovedBy = &approvedBy
	}
	if approvedAt, ok := set["approved_at"].(time.Time); ok {
		req.ApprovedAt = &approvedAt
	}
	if reason, ok := set["rejection_reason"].(string); ok {
		req.RejectionReason = reason
	}
	if completedAt, ok := set["completed_at"].(time.Time); ok {
		req.CompletedAt = &completedAt
	}
	return nil
}

func (r *fakeRequestRepo) AppendComment(_ context.Context, id primitive.ObjectID, comment ticket.Comment) error {
	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Comments = append(req.Comments, comment)
	return nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.requests[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *fakeRequestRepo) CountBy(_ context.Context, field string, match bson.M) ([]ticket.StatusCount, error) {
	buckets := map[string]int64{}
	for _, req := range r.requests {
		if !r.matches(req, match) {
			continue
		}
		switch field {
		case "status":
			buckets[string(req.Status)]++
		case "service_type":
			buckets[string(req.ServiceType)]++
		}
	}
	var out []ticket.StatusCount
	for key, count := range buckets {
		out = append(out, ticket.StatusCount{Key: key, Count: count})
	}
	return out, nil
}

func (r *fakeRequestRepo) NextRequestID(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("SR-%d", 1000+r.seq), nil
}

func (r *fakeRequestRepo) EnsureIndexes(context.Context) error { return nil }

type passCategoryService struct{}

func (passCategoryService) CreateCategory(context.Context, *category.Category) error { return nil }
func (passCategoryService) GetCategory(context.Context, string) (*category.Category, error) {
	return nil, nil
}
func (passCategoryService) ListCategories(context.Context, bool, string) ([]category.Category, error) {
	return nil, nil
}
func (passCategoryService) UpdateCategory(context.Context, string, map[string]any) (*category.Category, error) {
	return nil, nil
}
func (passCategoryService) DeleteCategory(context.Context, string) error               { return nil }
func (passCategoryService) ValidateClassification(context.Context, string, string) error {
	return nil
}

type stubUserRepo struct {
	users map[primitive.ObjectID]*user.User
}

func (r *stubUserRepo) Create(_ context.Context, u *user.User) error {
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(context.Context, string) (*user.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) List(context.Context, bson.M, int64, int64) ([]user.User, int64, error) {
	return nil, 0, nil
}

func (r *stubUserRepo) Update(context.Context, primitive.ObjectID, bson.M) error { return nil }
func (r *stubUserRepo) Count(context.Context, bson.M) (int64, error)             { return 0, nil }
func (r *stubUserRepo) EnsureIndexes(context.Context) error                      { return nil }

type silentNotifier struct{}

func (silentNotifier) Notify(context.Context, primitive.ObjectID, notification.Kind, string, string) error {
	return nil
}
func (silentNotifier) List(context.Context, primitive.ObjectID, bool, int64, int64) ([]notification.Notification, int64, error) {
	return nil, 0, nil
}
func (silentNotifier) MarkRead(context.Context, primitive.ObjectID, string) error { return nil }
func (silentNotifier) MarkAllRead(context.Context, primitive.ObjectID) (int64, error) {
	return 0, nil
}

func newRequestFixture(users ...*user.User) (*fakeRequestRepo, RequestService) {
	repo := newFakeRequestRepo()
	userRepo := &stubUserRepo{users: map[primitive.ObjectID]*user.User{}}
	for _, u := range users {
		userRepo.users[u.ID] = u
	}
	svc := NewRequestService(repo, passCategoryService{}, user.NewUserService(userRepo, nil), silentNotifier{})
	return repo, svc
}

func validRequest() *ServiceRequest {
	now := time.Now()
	return &ServiceRequest{
		Description:   "install design software",
		DateFrom:      now.Add(24 * time.Hour),
		DateTo:        now.Add(48 * time.Hour),
		DurationHours: 4,
		ServiceType:   ServiceTypeInstallation,
		Category:      "Software",
	}
}

func TestCreateRequest(t *testing.T) {
	_, svc := newRequestFixture()
	actor := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleEmployee, Name: "Dana"}

	req := validRequest()
	require.NoError(t, svc.CreateRequest(context.Background(), req, actor))

	assert.True(t, strings.HasPrefix(req.RequestID, "SR-"), "request id %q", req.RequestID)
	assert.Equal(t, RequestStatusPending, req.Status)
	assert.Equal(t, actor.ID, req.CreatedBy)
	assert.Equal(t, TicketTypeServiceRequest, req.TicketType)
	assert.Nil(t, req.ApprovedBy)
	assert.Empty(t, req.Comments)
}

func TestCreateRequestValidatesSchedule(t *testing.T) {
	_, svc := newRequestFixture()
	actor := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleEmployee}

	req := validRequest()
	req.DateTo = req.DateFrom.Add(-time.Hour)
	assert.Error(t, svc.CreateRequest(context.Background(), req, actor), "window end before start")

	req = validRequest()
	req.DurationHours = 0
	assert.Error(t, svc.CreateRequest(context.Background(), req, actor), "zero duration")

	req = validRequest()
	req.ServiceType = "Consulting"
	assert.Error(t, svc.CreateRequest(context.Background(), req, actor), "unknown service type")
}

func TestApproveStampsApprover(t *testing.T) {
	_, svc := newRequestFixture()
	creator := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleEmployee}
	approver := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleAdmin, Name: "Root"}

	req := validRequest()
	require.NoError(t, svc.CreateRequest(context.Background(), req, creator))

	got, err := svc.Approve(context.Background(), req.ID.Hex(), approver)
	require.NoError(t, err)
	assert.Equal(t, RequestStatusApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, approver.ID, *got.ApprovedBy)
	assert.NotNil(t, got.ApprovedAt)
}

func TestRejectedRequestStaysRejected(t *testing.T) {
	_, svc := newRequestFixture()
	creator := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleEmployee}
	agent := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleAgent, Name: "Agent"}

	req := validRequest()
	require.NoError(t, svc.CreateRequest(context.Background(), req, creator))

	got, err := svc.Reject(context.Background(), req.ID.Hex(), "no budget", agent)
	require.NoError(t, err)
	assert.Equal(t, RequestStatusRejected, got.Status)
	assert.Equal(t, "no budget", got.RejectionReason)

	_, err = svc.Approve(context.Background(), req.ID.Hex(), agent)
	require.Error(t, err, "terminal request accepts no further transitions")
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestRequestLifecycleToCompleted(t *testing.T) {
	_, svc := newRequestFixture()
	creator := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleEmployee}
	agent := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleAgent, Name: "Agent"}

	req := validRequest()
	require.NoError(t, svc.CreateRequest(context.Background(), req, creator))

	_, err := svc.UpdateStatus(context.Background(), req.ID.Hex(), RequestStatusInProgress, agent)
	require.Error(t, err, "work cannot start before approval")

	_, err = svc.Approve(context.Background(), req.ID.Hex(), agent)
	require.NoError(t, err)

	got, err := svc.UpdateStatus(context.Background(), req.ID.Hex(), RequestStatusInProgress, agent)
	require.NoError(t, err)
	assert.Equal(t, RequestStatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)

	got, err = svc.UpdateStatus(context.Background(), req.ID.Hex(), RequestStatusCompleted, agent)
	require.NoError(t, err)
	assert.Equal(t, RequestStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestEmployeeCannotApprove(t *testing.T) {
	_, svc := newRequestFixture()
	creator := ticket.Actor{ID: primitive.NewObjectID(), Role: authz.RoleEmployee}

	req := validRequest()
	require.NoError(t, svc.CreateRequest(context.Background(), req, creator))

	_, err := svc.Approve(context.Background(), req.ID.Hex(), creator)
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}
