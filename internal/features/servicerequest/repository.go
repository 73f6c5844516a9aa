package servicerequest

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-helpdesk/internal/database"
	"go-helpdesk/internal/features/ticket"
	"go-helpdesk/internal/repository"
)

// RequestRepository defines the interface for service-request data operations
type RequestRepository interface {
	Create(ctx context.Context, req *ServiceRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*ServiceRequest, error)
	FindAll(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]ServiceRequest, int64, error)
	FindAllPopulated(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	UpdateWhere(ctx context.Context, filter, update bson.M) error
	AppendComment(ctx context.Context, id primitive.ObjectID, comment ticket.Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountBy(ctx context.Context, field string, match bson.M) ([]ticket.StatusCount, error)
	NextRequestID(ctx context.Context) (string, error)
	EnsureIndexes(ctx context.Context) error
}

type RequestRepositoryImpl struct {
	store    *repository.Store[ServiceRequest]
	counters *repository.Counters
}

// NewRequestRepository creates a new service-request repository
func NewRequestRepository(db *database.MongodbDB, counters *repository.Counters) RequestRepository {
	return &RequestRepositoryImpl{
		store:    repository.NewStore[ServiceRequest](db, "service_requests"),
		counters: counters,
	}
}

func (r *RequestRepositoryImpl) Create(ctx context.Context, req *ServiceRequest) error {
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()

	id, err := r.store.Insert(ctx, req)
	if err != nil {
		return err
	}
	req.ID = id
	return nil
}

func (r *RequestRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*ServiceRequest, error) {
	return r.store.FindByID(ctx, id)
}

func (r *RequestRepositoryImpl) FindAll(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]ServiceRequest, int64, error) {
	return r.store.Find(ctx, filter, page, limit, sortBy, sortOrder)
}

func (r *RequestRepositoryImpl) FindAllPopulated(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error) {
	pops := []repository.Population{
		{LocalField: "created_by", From: "users", As: "creator"},
		{LocalField: "assigned_to", From: "users", As: "assignee"},
		{LocalField: "approved_by", From: "users", As: "approver"},
	}
	return r.store.FindPopulated(ctx, filter, pops, page, limit, sortBy, sortOrder)
}

func (r *RequestRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	return r.store.UpdateByID(ctx, id, updates)
}

func (r *RequestRepositoryImpl) UpdateWhere(ctx context.Context, filter, update bson.M) error {
	return r.store.UpdateOne(ctx, filter, update)
}

func (r *RequestRepositoryImpl) AppendComment(ctx context.Context, id primitive.ObjectID, comment ticket.Comment) error {
	return r.store.Push(ctx, id, "comments", comment)
}

func (r *RequestRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.store.DeleteByID(ctx, id)
}

func (r *RequestRepositoryImpl) CountBy(ctx context.Context, field string, match bson.M) ([]ticket.StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	var counts []ticket.StatusCount
	if err := r.store.Aggregate(ctx, pipeline, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// NextRequestID generates the next human-readable request identifier.
func (r *RequestRepositoryImpl) NextRequestID(ctx context.Context) (string, error) {
	return r.counters.NextID(ctx, "service_requests", "SR")
}

func (r *RequestRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	if err := r.store.EnsureIndex(ctx, bson.D{{Key: "request_id", Value: 1}}, true); err != nil {
		return err
	}
	return r.store.EnsureIndex(ctx, bson.D{{Key: "created_by", Value: 1}}, false)
}
