package upload

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/database"
	"go-helpdesk/internal/repository"
)

// FileRepository defines the interface for upload metadata persistence
type FileRepository interface {
	Create(ctx context.Context, f *File) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*File, error)
	ListByUploader(ctx context.Context, uploader primitive.ObjectID, page, limit int64) ([]File, int64, error)
}

type FileRepositoryImpl struct {
	store *repository.Store[File]
}

// NewFileRepository creates a new upload metadata repository
func NewFileRepository(db *database.MongodbDB) FileRepository {
	return &FileRepositoryImpl{store: repository.NewStore[File](db, "files")}
}

func (r *FileRepositoryImpl) Create(ctx context.Context, f *File) error {
	id, err := r.store.Insert(ctx, f)
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

func (r *FileRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*File, error) {
	return r.store.FindByID(ctx, id)
}

func (r *FileRepositoryImpl) ListByUploader(ctx context.Context, uploader primitive.ObjectID, page, limit int64) ([]File, int64, error) {
	return r.store.Find(ctx, bson.M{"uploaded_by": uploader}, page, limit, "created_at", "desc")
}
