package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/features/authz"
)

// User is an account able to file or handle tickets. Users are never
// hard-deleted; deactivation flips IsActive.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	Name         string             `json:"name" bson:"name"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Role         authz.Role         `json:"role" bson:"role"`
	Department   string             `json:"department,omitempty" bson:"department,omitempty"`
	IsActive     bool               `json:"is_active" bson:"is_active"`
	LastLogin    *time.Time         `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
