package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind classifies a notification for client rendering.
type Kind string

const (
	KindAssignment   Kind = "assignment"
	KindStatusChange Kind = "status_change"
	KindComment      Kind = "comment"
	KindApproval     Kind = "approval"
	KindSystem       Kind = "system"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Kind      Kind               `bson:"kind" json:"kind"`
	Message   string             `bson:"message" json:"message"`
	RecordID  string             `bson:"record_id,omitempty" json:"record_id,omitempty"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
}

// Event is the wire shape pushed over the websocket.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
