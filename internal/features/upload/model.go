package upload

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is the stored metadata for one uploaded attachment.
type File struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OriginalName string             `json:"originalName" bson:"original_name"`
	StoredName   string             `json:"storedName" bson:"stored_name"`
	URL          string             `json:"url" bson:"url"`
	Size         int64              `json:"size" bson:"size"`
	MimeType     string             `json:"mimeType" bson:"mime_type"`
	UploadedBy   primitive.ObjectID `json:"uploadedBy" bson:"uploaded_by"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
