package category

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/pkg/apperr"
)

type CategoryController struct {
	CategoryService CategoryService
}

func NewCategoryController(categoryService CategoryService) *CategoryController {
	return &CategoryController{CategoryService: categoryService}
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Router /api/admin/categories [post]
func (ctrl *CategoryController) CreateCategory(c *fiber.Ctx) error {
	var category Category
	if err := c.BodyParser(&category); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	if err := ctrl.CategoryService.CreateCategory(c.UserContext(), &category); err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "category created", category)
}

// ListCategories lists all categories, optionally filtered by type.
func (ctrl *CategoryController) ListCategories(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	categories, err := ctrl.CategoryService.ListCategories(c.UserContext(), activeOnly, c.Query("type"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "categories", categories)
}

// ListActiveCategories is the employee-facing listing used by ticket forms.
func (ctrl *CategoryController) ListActiveCategories(c *fiber.Ctx) error {
	categories, err := ctrl.CategoryService.ListCategories(c.UserContext(), true, c.Query("type"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "categories", categories)
}

func (ctrl *CategoryController) GetCategory(c *fiber.Ctx) error {
	category, err := ctrl.CategoryService.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "category", category)
}

func (ctrl *CategoryController) UpdateCategory(c *fiber.Ctx) error {
	var updates map[string]any
	if err := c.BodyParser(&updates); err != nil {
		return response.Error(c, apperr.Validation("invalid request body", nil))
	}

	category, err := ctrl.CategoryService.UpdateCategory(c.UserContext(), c.Params("id"), updates)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "category updated", category)
}

func (ctrl *CategoryController) DeleteCategory(c *fiber.Ctx) error {
	if err := ctrl.CategoryService.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "category deleted", nil)
}
