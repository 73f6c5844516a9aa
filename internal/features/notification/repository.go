package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/database"
	"go-helpdesk/internal/repository"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]Notification, int64, error)
	MarkRead(ctx context.Context, userID, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type NotificationRepositoryImpl struct {
	store *repository.Store[Notification]
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.MongodbDB) NotificationRepository {
	return &NotificationRepositoryImpl{store: repository.NewStore[Notification](db, "notifications")}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *Notification) error {
	n.CreatedAt = time.Now()

	id, err := r.store.Insert(ctx, n)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *NotificationRepositoryImpl) ListByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]Notification, int64, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}
	return r.store.Find(ctx, filter, page, limit, "created_at", "desc")
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	now := time.Now()
	return r.store.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}},
	)
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now()
	return r.store.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}},
	)
}
