package user

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/database"
	"go-helpdesk/internal/repository"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter bson.M, page, limit int64) ([]User, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	Count(ctx context.Context, filter bson.M) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type UserRepositoryImpl struct {
	store *repository.Store[User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{store: repository.NewStore[User](db, "users")}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()

	id, err := r.store.Insert(ctx, u)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return r.store.FindByID(ctx, id)
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.store.FindOne(ctx, bson.M{"email": email})
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter bson.M, page, limit int64) ([]User, int64, error) {
	return r.store.Find(ctx, filter, page, limit, "created_at", "desc")
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	return r.store.UpdateByID(ctx, id, updates)
}

func (r *UserRepositoryImpl) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.store.Count(ctx, filter)
}

// EnsureIndexes enforces email uniqueness at the persistence layer.
func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, bson.D{{Key: "email", Value: 1}}, true)
}
