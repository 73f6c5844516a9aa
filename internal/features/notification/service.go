package notification

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/pkg/apperr"
)

// NotificationService defines the interface for notification logic
type NotificationService interface {
	Notify(ctx context.Context, recipient primitive.ObjectID, kind Kind, message, recordID string) error
	List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]Notification, int64, error)
	MarkRead(ctx context.Context, userID primitive.ObjectID, id string) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type NotificationServiceImpl struct {
	Repo NotificationRepository
	Hub  *Hub
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo NotificationRepository, hub *Hub) NotificationService {
	return &NotificationServiceImpl{Repo: repo, Hub: hub}
}

// Notify stores the notification and pushes it to any live connection.
func (s *NotificationServiceImpl) Notify(ctx context.Context, recipient primitive.ObjectID, kind Kind, message, recordID string) error {
	n := &Notification{
		UserID:   recipient,
		Kind:     kind,
		Message:  message,
		RecordID: recordID,
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return err
	}

	s.Hub.Send(recipient.Hex(), Event{Type: "notification", Payload: n})
	return nil
}

func (s *NotificationServiceImpl) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]Notification, int64, error) {
	return s.Repo.ListByUser(ctx, userID, unreadOnly, page, limit)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID primitive.ObjectID, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid notification ID", nil)
	}
	return s.Repo.MarkRead(ctx, userID, objID)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID)
}
