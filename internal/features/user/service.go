package user

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
	"go-helpdesk/pkg/utils"
)

// DeactivationNotifier pushes a forced-logout signal to a live client when
// an admin disables the account.
type DeactivationNotifier interface {
	NotifyAccountDeactivated(userID string)
}

// UserService defines the interface for user management logic
type UserService interface {
	CreateUser(ctx context.Context, email, name, password string, role authz.Role, department string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, filters map[string]string, page, limit int64) ([]User, int64, error)
	UpdateUser(ctx context.Context, id string, updates map[string]any) (*User, error)
	Deactivate(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) error
	ValidateAssignee(ctx context.Context, id primitive.ObjectID) (*User, error)
	IsActive(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type UserServiceImpl struct {
	UserRepo UserRepository
	Notifier DeactivationNotifier
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, notifier DeactivationNotifier) UserService {
	return &UserServiceImpl{UserRepo: userRepo, Notifier: notifier}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, email, name, password string, role authz.Role, department string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || name == "" {
		return nil, apperr.Validation("email and name are required", nil)
	}
	if len(password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters", nil)
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role", map[string]any{"role": role})
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Department:   department,
		IsActive:     true,
	}

	if err := s.UserRepo.Create(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("email already registered", map[string]any{"email": email})
		}
		return nil, err
	}
	return u, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid user ID", nil)
	}

	u, err := s.UserRepo.FindByID(ctx, objID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user")
	}
	return u, err
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user")
	}
	return u, err
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, filters map[string]string, page, limit int64) ([]User, int64, error) {
	filter := bson.M{}
	if role := filters["role"]; role != "" {
		filter["role"] = role
	}
	if department := filters["department"]; department != "" {
		filter["department"] = department
	}
	if active := filters["is_active"]; active != "" {
		filter["is_active"] = active == "true"
	}
	if search := filters["search"]; search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"email": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	return s.UserRepo.List(ctx, filter, page, limit)
}

// UpdateUser updates name and department. Role and email are immutable
// through this path.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, updates map[string]any) (*User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid user ID", nil)
	}

	allowed := bson.M{}
	if name, ok := updates["name"].(string); ok && name != "" {
		allowed["name"] = name
	}
	if department, ok := updates["department"].(string); ok {
		allowed["department"] = department
	}
	if len(allowed) == 0 {
		return nil, apperr.Validation("no updatable fields provided", nil)
	}

	if err := s.UserRepo.Update(ctx, objID, allowed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, err
	}
	return s.UserRepo.FindByID(ctx, objID)
}

func (s *UserServiceImpl) Deactivate(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid user ID", nil)
	}

	if err := s.UserRepo.Update(ctx, objID, bson.M{"is_active": false}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user")
		}
		return err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyAccountDeactivated(objID.Hex())
	}
	return nil
}

func (s *UserServiceImpl) Reactivate(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid user ID", nil)
	}

	if err := s.UserRepo.Update(ctx, objID, bson.M{"is_active": true}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user")
		}
		return err
	}
	return nil
}

// IsActive reports whether the account exists and is not deactivated.
func (s *UserServiceImpl) IsActive(ctx context.Context, id primitive.ObjectID) (bool, error) {
	u, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.IsActive, nil
}

// ValidateAssignee checks that a prospective assignee exists, is active, and
// holds a handling role.
func (s *UserServiceImpl) ValidateAssignee(ctx context.Context, id primitive.ObjectID) (*User, error) {
	u, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("assignee")
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.Validation("assignee is deactivated", map[string]any{"user_id": id.Hex()})
	}
	if u.Role != authz.RoleAgent && u.Role != authz.RoleAdmin {
		return nil, apperr.Validation("assignee must be an agent or admin", map[string]any{"role": u.Role})
	}
	return u, nil
}
