package ticket

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
	"go-helpdesk/internal/features/user"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
)

// fakeTicketRepo keeps tickets in memory and mimics the store's guarded
// update semantics.
type fakeTicketRepo struct {
	tickets map[primitive.ObjectID]*Ticket
	seq     int

	// invoked before a guarded update applies, to simulate a raced writer
	beforeUpdateWhere func()
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[primitive.ObjectID]*Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, t *Ticket) error {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	stored := *t
	r.tickets[t.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) FindByID(_ context.Context, id primitive.ObjectID) (*Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTicketRepo) FindAll(_ context.Context, filter bson.M, _, _ int64, _, _ string) ([]Ticket, int64, error) {
	var out []Ticket
	for _, t := range r.tickets {
		if r.matches(t, filter) {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTicketRepo) FindAllPopulated(_ context.Context, filter bson.M, _, _ int64, _, _ string) ([]bson.M, int64, error) {
	var out []bson.M
	for _, t := range r.tickets {
		if r.matches(t, filter) {
			out = append(out, bson.M{"ticket_id": t.TicketID})
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTicketRepo) matches(t *Ticket, filter bson.M) bool {
	if createdBy, ok := filter["created_by"].(primitive.ObjectID); ok && t.CreatedBy != createdBy {
		return false
	}
	if status, ok := filter["status"].(string); ok && string(t.Status) != status {
		return false
	}
	return true
}

func (r *fakeTicketRepo) Update(_ context.Context, id primitive.ObjectID, updates bson.M) error {
	t, ok := r.tickets[id]
	if !ok {
		return repository.ErrNotFound
	}
	if assignee, ok := updates["assigned_to"].(primitive.ObjectID); ok {
		t.AssignedTo = &assignee
	}
	if description, ok := updates["description"].(string); ok {
		t.Description = description
	}
	if priority, ok := updates["priority"].(string); ok {
		t.Priority = TicketPriority(priority)
	}
	return nil
}

func (r *fakeTicketRepo) UpdateWhere(_ context.Context, filter, update bson.M) error {
	if r.beforeUpdateWhere != nil {
		r.beforeUpdateWhere()
	}
	id := filter["_id"].(primitive.ObjectID)
	t, ok := r.tickets[id]
	if !ok || t.Status != filter["status"].(TicketStatus) {
		return repository.ErrNotFound
	}
	set := update["$set"].(bson.M)
	if status, ok := set["status"].(TicketStatus); ok {
		t.Status = status
	}
	if resolvedAt, ok := set["resolved_at"].(time.Time); ok {
		t.ResolvedAt = &resolvedAt
	}
	if closedAt, ok := set["closed_at"].(time.Time); ok {
		t.ClosedAt = &closedAt
	}
	if unset, ok := update["$unset"].(bson.M); ok {
		if _, ok := unset["resolved_at"]; ok {
			t.ResolvedAt = nil
		}
	}
	return nil
}

func (r *fakeTicketRepo) AppendComment(_ context.Context, id primitive.ObjectID, comment Comment) error {
	t, ok := r.tickets[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Comments = append(t.Comments, comment)
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) CountBy(_ context.Context, field string, match bson.M) ([]StatusCount, error) {
	buckets := map[string]int64{}
	for _, t := range r.tickets {
		if !r.matches(t, match) {
			continue
		}
		switch field {
		case "status":
			buckets[string(t.Status)]++
		case "priority":
			buckets[string(t.Priority)]++
		case "category":
			buckets[t.Category]++
		}
	}
	var out []StatusCount
	for key, count := range buckets {
		out = append(out, StatusCount{Key: key, Count: count})
	}
	return out, nil
}

func (r *fakeTicketRepo) FindResolvedBefore(_ context.Context, cutoff time.Time) ([]Ticket, error) {
	var out []Ticket
	for _, t := range r.tickets {
		if t.Status == TicketStatusResolved && t.ResolvedAt != nil && t.ResolvedAt.Before(cutoff) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) NextTicketID(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("TKT-%d", 1000+r.seq), nil
}

func (r *fakeTicketRepo) EnsureIndexes(context.Context) error { return nil }

// fakeCategoryService accepts any classification unless an error is set.
type fakeCategoryService struct {
	err error
}

func (f *fakeCategoryService) CreateCategory(context.Context, *category.Category) error { return nil }
func (f *fakeCategoryService) GetCategory(context.Context, string) (*category.Category, error) {
	return nil, nil
}
func (f *fakeCategoryService) ListCategories(context.Context, bool, string) ([]category.Category, error) {
	return nil, nil
}
func (f *fakeCategoryService) UpdateCategory(context.Context, string, map[string]any) (*category.Category, error) {
	return nil, nil
}
func (f *fakeCategoryService) DeleteCategory(context.Context, string) error { return nil }
func (f *fakeCategoryService) ValidateClassification(context.Context, string, string) error {
	return f.err
}

// fakeUserRepo backs the real user service in tests.
type fakeUserRepo struct {
	users map[primitive.ObjectID]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[primitive.ObjectID]*user.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(context.Context, bson.M, int64, int64) ([]user.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, _ bson.M) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r *fakeUserRepo) Count(context.Context, bson.M) (int64, error) { return 0, nil }
func (r *fakeUserRepo) EnsureIndexes(context.Context) error          { return nil }

// fakeNotifier records pushed notifications.
type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Notify(_ context.Context, _ primitive.ObjectID, kind notification.Kind, message, _ string) error {
	f.sent = append(f.sent, string(kind)+": "+message)
	return nil
}

func (f *fakeNotifier) List(context.Context, primitive.ObjectID, bool, int64, int64) ([]notification.Notification, int64, error) {
	return nil, 0, nil
}
func (f *fakeNotifier) MarkRead(context.Context, primitive.ObjectID, string) error { return nil }
func (f *fakeNotifier) MarkAllRead(context.Context, primitive.ObjectID) (int64, error) {
	return 0, nil
}

type serviceFixture struct {
	repo     *fakeTicketRepo
	users    *fakeUserRepo
	notifier *fakeNotifier
	svc      TicketService
}

func newServiceFixture(users ...*user.User) *serviceFixture {
	repo := newFakeTicketRepo()
	userRepo := newFakeUserRepo(users...)
	notifier := &fakeNotifier{}
	svc := NewTicketService(repo, &fakeCategoryService{}, user.NewUserService(userRepo, nil), notifier)
	return &serviceFixture{repo: repo, users: userRepo, notifier: notifier, svc: svc}
}

func employeeActor() Actor {
	return Actor{ID: primitive.NewObjectID(), Role: authz.RoleEmployee, Name: "Dana"}
}

func agentUser() *user.User {
	return &user.User{
		ID:       primitive.NewObjectID(),
		Email:    "agent@helpdesk.local",
		Name:     "Agent",
		Role:     authz.RoleAgent,
		IsActive: true,
	}
}

func TestCreateTicket(t *testing.T) {
	f := newServiceFixture()
	actor := employeeActor()

	tk := &Ticket{
		Type:        "Hardware",
		Category:    "Hardware",
		Subcategory: "Laptop",
		Description: "screen flickers",
	}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, actor))

	assert.True(t, strings.HasPrefix(tk.TicketID, "TKT-"), "ticket id %q", tk.TicketID)
	assert.Equal(t, TicketStatusOpen, tk.Status)
	assert.Equal(t, actor.ID, tk.CreatedBy)
	assert.Nil(t, tk.AssignedTo)
	assert.Equal(t, TicketTypeComplaint, tk.TicketType)
	assert.Equal(t, TicketPriorityMedium, tk.Priority, "priority defaults to Medium")
	assert.Empty(t, tk.Comments)
}

func TestCreateTicketRejectsBadInput(t *testing.T) {
	f := newServiceFixture()
	actor := employeeActor()

	err := f.svc.CreateTicket(context.Background(), &Ticket{Type: "Hardware"}, actor)
	assert.Error(t, err, "missing description")

	err = f.svc.CreateTicket(context.Background(), &Ticket{Type: "Network", Description: "x"}, actor)
	assert.Error(t, err, "type outside Hardware/Software")

	err = f.svc.CreateTicket(context.Background(), &Ticket{
		Type: "Hardware", Description: "x", Priority: "Urgent",
	}, actor)
	assert.Error(t, err, "unknown priority")
}

func TestStartWorkRequiresAssignee(t *testing.T) {
	agent := agentUser()
	f := newServiceFixture(agent)
	creator := employeeActor()
	agentActor := Actor{ID: agent.ID, Role: authz.RoleAgent, Name: agent.Name}

	tk := &Ticket{Type: "Hardware", Description: "no boot"}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, creator))

	_, err := f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusInProgress, agentActor)
	require.Error(t, err, "unassigned ticket must not start work")

	_, err = f.svc.Assign(context.Background(), tk.ID.Hex(), agent.ID.Hex(), agentActor)
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusInProgress, agentActor)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusInProgress, got.Status)
}

func TestResolveStampsResolvedAt(t *testing.T) {
	agent := agentUser()
	f := newServiceFixture(agent)
	creator := employeeActor()
	agentActor := Actor{ID: agent.ID, Role: authz.RoleAgent, Name: agent.Name}

	tk := &Ticket{Type: "Software", Description: "vpn drops"}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, creator))
	_, err := f.svc.Assign(context.Background(), tk.ID.Hex(), agent.ID.Hex(), agentActor)
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusInProgress, agentActor)
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt, "not resolved yet")

	got, err = f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusResolved, agentActor)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.Nil(t, got.ClosedAt)

	got, err = f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusClosed, creator)
	require.NoError(t, err)
	assert.NotNil(t, got.ResolvedAt)
	assert.NotNil(t, got.ClosedAt)
}

func TestRejectAfterResolveClearsResolvedAt(t *testing.T) {
	agent := agentUser()
	f := newServiceFixture(agent)
	creator := employeeActor()
	agentActor := Actor{ID: agent.ID, Role: authz.RoleAgent, Name: agent.Name}

	tk := &Ticket{Type: "Software", Description: "license expired"}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, creator))
	_, err := f.svc.Assign(context.Background(), tk.ID.Hex(), agent.ID.Hex(), agentActor)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusInProgress, agentActor)
	require.NoError(t, err)
	got, err := f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusResolved, agentActor)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)

	got, err = f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusRejected, agentActor)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusRejected, got.Status)
	assert.Nil(t, got.ResolvedAt, "rejected tickets carry no resolution stamp")
}

func TestRacedTransitionConflicts(t *testing.T) {
	agent := agentUser()
	f := newServiceFixture(agent)
	creator := employeeActor()
	agentActor := Actor{ID: agent.ID, Role: authz.RoleAgent, Name: agent.Name}

	tk := &Ticket{Type: "Hardware", Description: "fan noise"}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, creator))
	_, err := f.svc.Assign(context.Background(), tk.ID.Hex(), agent.ID.Hex(), agentActor)
	require.NoError(t, err)

	// another writer rejects the ticket between the read and the write
	f.repo.beforeUpdateWhere = func() {
		f.repo.tickets[tk.ID].Status = TicketStatusRejected
		f.repo.beforeUpdateWhere = nil
	}

	_, err = f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusInProgress, agentActor)
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestAssignValidatesAssignee(t *testing.T) {
	employee := &user.User{ID: primitive.NewObjectID(), Role: authz.RoleEmployee, IsActive: true}
	inactive := &user.User{ID: primitive.NewObjectID(), Role: authz.RoleAgent, IsActive: false}
	agent := agentUser()
	f := newServiceFixture(employee, inactive, agent)
	creator := employeeActor()
	agentActor := Actor{ID: agent.ID, Role: authz.RoleAgent, Name: agent.Name}

	tk := &Ticket{Type: "Hardware", Description: "keyboard broken"}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, creator))

	_, err := f.svc.Assign(context.Background(), tk.ID.Hex(), employee.ID.Hex(), agentActor)
	assert.Error(t, err, "employees cannot be assignees")

	_, err = f.svc.Assign(context.Background(), tk.ID.Hex(), inactive.ID.Hex(), agentActor)
	assert.Error(t, err, "deactivated users cannot be assignees")

	_, err = f.svc.Assign(context.Background(), tk.ID.Hex(), creator.ID.Hex(), creator)
	assert.Error(t, err, "employees cannot assign")

	got, err := f.svc.Assign(context.Background(), tk.ID.Hex(), agent.ID.Hex(), agentActor)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, agent.ID, *got.AssignedTo)
}

func TestAddCommentAppends(t *testing.T) {
	f := newServiceFixture()
	creator := employeeActor()

	tk := &Ticket{Type: "Software", Description: "mail sync fails"}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, creator))

	first, err := f.svc.AddComment(context.Background(), tk.ID.Hex(), "tried restarting", creator)
	require.NoError(t, err)
	require.Len(t, first.Comments, 1)

	second, err := f.svc.AddComment(context.Background(), tk.ID.Hex(), "still broken", creator)
	require.NoError(t, err)
	require.Len(t, second.Comments, 2)

	assert.Equal(t, "tried restarting", second.Comments[0].Text, "earlier comments keep their position")
	assert.Equal(t, "still broken", second.Comments[1].Text)
	assert.Equal(t, creator.Name, second.Comments[1].AuthorName, "author name snapshotted")

	_, err = f.svc.AddComment(context.Background(), tk.ID.Hex(), "   ", creator)
	assert.Error(t, err, "blank comment rejected")
}

func TestListTicketsVisibility(t *testing.T) {
	f := newServiceFixture()
	alice := employeeActor()
	bob := employeeActor()
	admin := Actor{ID: primitive.NewObjectID(), Role: authz.RoleAdmin, Name: "Root"}

	for _, actor := range []Actor{alice, alice, bob} {
		tk := &Ticket{Type: "Hardware", Description: "issue for " + actor.ID.Hex()}
		require.NoError(t, f.svc.CreateTicket(context.Background(), tk, actor))
	}

	mine, total, err := f.svc.ListTickets(context.Background(), alice, nil, 1, 10, "created_at", "desc")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.EqualValues(t, 2, total)

	all, total, err := f.svc.ListTickets(context.Background(), admin, nil, 1, 10, "created_at", "desc")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.EqualValues(t, 3, total)
}

func TestGetTicketHiddenFromOtherEmployees(t *testing.T) {
	f := newServiceFixture()
	alice := employeeActor()
	bob := employeeActor()

	tk := &Ticket{Type: "Hardware", Description: "private issue"}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, alice))

	_, err := f.svc.GetTicket(context.Background(), tk.ID.Hex(), bob)
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestStatusChangeNotifiesCreator(t *testing.T) {
	agent := agentUser()
	f := newServiceFixture(agent)
	creator := employeeActor()
	agentActor := Actor{ID: agent.ID, Role: authz.RoleAgent, Name: agent.Name}

	tk := &Ticket{Type: "Hardware", Description: "dock not charging"}
	require.NoError(t, f.svc.CreateTicket(context.Background(), tk, creator))
	_, err := f.svc.Assign(context.Background(), tk.ID.Hex(), agent.ID.Hex(), agentActor)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), tk.ID.Hex(), TicketStatusInProgress, agentActor)
	require.NoError(t, err)

	require.NotEmpty(t, f.notifier.sent)
	assert.Contains(t, f.notifier.sent[len(f.notifier.sent)-1], "In Progress")
}
