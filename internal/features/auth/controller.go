package auth

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/middleware"
	"go-helpdesk/pkg/apperr"
)

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type registerRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

// Register godoc
// @Summary Register a new employee account
// @Tags auth
// @Router /api/auth/register [post]
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	usr, err := ctrl.AuthService.Register(c.UserContext(), req.Email, req.Name, req.Password, req.Department)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "registered successfully", usr)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Authenticate and receive a bearer token
// @Tags auth
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	token, usr, err := ctrl.AuthService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, "login successful", fiber.Map{
		"token": token,
		"user":  usr,
	})
}

// Logout is stateless on the server; the client discards its token.
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	return response.OK(c, "logged out", nil)
}

// Me returns the authenticated user's profile.
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	usr, err := ctrl.AuthService.Me(c.UserContext(), claims.UserID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "profile", usr)
}

type profileRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// UpdateProfile updates the caller's own name and department.
func (ctrl *AuthController) UpdateProfile(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	usr, err := ctrl.AuthService.UpdateProfile(c.UserContext(), claims.UserID, req.Name, req.Department)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "profile updated", usr)
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword changes the caller's password after verifying the current one.
func (ctrl *AuthController) ChangePassword(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	if err := ctrl.AuthService.ChangePassword(c.UserContext(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "password updated", nil)
}
