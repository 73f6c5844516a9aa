package category

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryType mirrors the ticket type split.
type CategoryType string

const (
	CategoryTypeHardware CategoryType = "Hardware"
	CategoryTypeSoftware CategoryType = "Software"
)

// Valid reports whether t is a recognized category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeHardware || t == CategoryTypeSoftware
}

// Category classifies tickets and service requests. Subcategories are an
// ordered list of names.
type Category struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Type          CategoryType       `json:"type" bson:"type"`
	Subcategories []string           `json:"subcategories" bson:"subcategories"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
