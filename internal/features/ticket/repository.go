package ticket

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-helpdesk/internal/database"
	"go-helpdesk/internal/repository"
)

// StatusCount is one bucket of a grouped count aggregation.
type StatusCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// TicketRepository defines the interface for ticket data operations
type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Ticket, error)
	FindAll(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]Ticket, int64, error)
	FindAllPopulated(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	UpdateWhere(ctx context.Context, filter, update bson.M) error
	AppendComment(ctx context.Context, id primitive.ObjectID, comment Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountBy(ctx context.Context, field string, match bson.M) ([]StatusCount, error)
	FindResolvedBefore(ctx context.Context, cutoff time.Time) ([]Ticket, error)
	NextTicketID(ctx context.Context) (string, error)
	EnsureIndexes(ctx context.Context) error
}

type TicketRepositoryImpl struct {
	store    *repository.Store[Ticket]
	counters *repository.Counters
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.MongodbDB, counters *repository.Counters) TicketRepository {
	return &TicketRepositoryImpl{
		store:    repository.NewStore[Ticket](db, "tickets"),
		counters: counters,
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, t *Ticket) error {
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()

	id, err := r.store.Insert(ctx, t)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Ticket, error) {
	return r.store.FindByID(ctx, id)
}

func (r *TicketRepositoryImpl) FindAll(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]Ticket, int64, error) {
	return r.store.Find(ctx, filter, page, limit, sortBy, sortOrder)
}

// FindAllPopulated expands created_by and assigned_to into embedded user
// documents for list views.
func (r *TicketRepositoryImpl) FindAllPopulated(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error) {
	pops := []repository.Population{
		{LocalField: "created_by", From: "users", As: "creator"},
		{LocalField: "assigned_to", From: "users", As: "assignee"},
	}
	return r.store.FindPopulated(ctx, filter, pops, page, limit, sortBy, sortOrder)
}

func (r *TicketRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	return r.store.UpdateByID(ctx, id, updates)
}

// UpdateWhere applies an update only when the filter still matches, so a
// status transition raced by another writer simply fails to match.
func (r *TicketRepositoryImpl) UpdateWhere(ctx context.Context, filter, update bson.M) error {
	return r.store.UpdateOne(ctx, filter, update)
}

func (r *TicketRepositoryImpl) AppendComment(ctx context.Context, id primitive.ObjectID, comment Comment) error {
	return r.store.Push(ctx, id, "comments", comment)
}

func (r *TicketRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.store.DeleteByID(ctx, id)
}

// CountBy groups matching tickets by a field and counts each bucket.
func (r *TicketRepositoryImpl) CountBy(ctx context.Context, field string, match bson.M) ([]StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	var counts []StatusCount
	if err := r.store.Aggregate(ctx, pipeline, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// FindResolvedBefore returns tickets resolved earlier than cutoff, used by
// the auto-close job.
func (r *TicketRepositoryImpl) FindResolvedBefore(ctx context.Context, cutoff time.Time) ([]Ticket, error) {
	tickets, _, err := r.store.Find(ctx, bson.M{
		"status":      TicketStatusResolved,
		"resolved_at": bson.M{"$lt": cutoff},
	}, 1, 0, "resolved_at", "asc")
	return tickets, err
}

// NextTicketID generates the next human-readable ticket identifier.
func (r *TicketRepositoryImpl) NextTicketID(ctx context.Context) (string, error) {
	return r.counters.NextID(ctx, "tickets", "TKT")
}

func (r *TicketRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	if err := r.store.EnsureIndex(ctx, bson.D{{Key: "ticket_id", Value: 1}}, true); err != nil {
		return err
	}
	if err := r.store.EnsureIndex(ctx, bson.D{{Key: "created_by", Value: 1}}, false); err != nil {
		return err
	}
	return r.store.EnsureIndex(ctx, bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}}, false)
}
