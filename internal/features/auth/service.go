package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/features/user"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
	"go-helpdesk/pkg/utils"
)

type AuthService interface {
	Register(ctx context.Context, email, name, password, department string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	Me(ctx context.Context, userID string) (*user.User, error)
	UpdateProfile(ctx context.Context, userID string, name, department string) (*user.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type AuthServiceImpl struct {
	UserRepo    user.UserRepository
	UserService user.UserService
}

func NewAuthService(userRepo user.UserRepository, userService user.UserService) AuthService {
	return &AuthServiceImpl{
		UserRepo:    userRepo,
		UserService: userService,
	}
}

// Register creates a self-service account. Self-registration always
// produces an employee; agents and admins come from admin user management.
func (s *AuthServiceImpl) Register(ctx context.Context, email, name, password, department string) (*user.User, error) {
	return s.UserService.CreateUser(ctx, email, name, password, authz.RoleEmployee, department)
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	usr, err := s.UserService.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, apperr.Unauthorized("invalid credentials")
	}

	if err := utils.ComparePassword(usr.PasswordHash, password); err != nil {
		return "", nil, apperr.Unauthorized("invalid credentials")
	}

	if !usr.IsActive {
		return "", nil, apperr.AccountDeactivated()
	}

	now := time.Now()
	_ = s.UserRepo.Update(ctx, usr.ID, bson.M{"last_login": now})
	usr.LastLogin = &now

	token, err := utils.GenerateToken(usr.ID, string(usr.Role), usr.Email, usr.Name)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}

	return token, usr, nil
}

// Me loads the authenticated user's profile.
func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*user.User, error) {
	return s.UserService.GetUser(ctx, userID)
}

func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID string, name, department string) (*user.User, error) {
	return s.UserService.UpdateUser(ctx, userID, map[string]any{
		"name":       name,
		"department": department,
	})
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	usr, err := s.UserService.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := utils.ComparePassword(usr.PasswordHash, currentPassword); err != nil {
		return apperr.Validation("current password is incorrect", nil)
	}
	if len(newPassword) < 6 {
		return apperr.Validation("password must be at least 6 characters", nil)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := s.UserRepo.Update(ctx, usr.ID, bson.M{"password_hash": hash}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user")
		}
		return err
	}
	return nil
}
