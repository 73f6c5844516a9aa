package category

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/database"
	"go-helpdesk/internal/repository"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context, filter bson.M) ([]Category, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type CategoryRepositoryImpl struct {
	store *repository.Store[Category]
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.MongodbDB) CategoryRepository {
	return &CategoryRepositoryImpl{store: repository.NewStore[Category](db, "categories")}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *Category) error {
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	id, err := r.store.Insert(ctx, category)
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

func (r *CategoryRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	return r.store.FindByID(ctx, id)
}

func (r *CategoryRepositoryImpl) FindByName(ctx context.Context, name string) (*Category, error) {
	return r.store.FindOne(ctx, bson.M{"name": name})
}

func (r *CategoryRepositoryImpl) List(ctx context.Context, filter bson.M) ([]Category, error) {
	categories, _, err := r.store.Find(ctx, filter, 1, 0, "name", "asc")
	return categories, err
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	return r.store.UpdateByID(ctx, id, updates)
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.store.DeleteByID(ctx, id)
}

func (r *CategoryRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, bson.D{{Key: "name", Value: 1}}, true)
}
