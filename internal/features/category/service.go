package category

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context, activeOnly bool, categoryType string) ([]Category, error)
	UpdateCategory(ctx context.Context, id string, updates map[string]any) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ValidateClassification(ctx context.Context, categoryName, subcategory string) error
}

type CategoryServiceImpl struct {
	CategoryRepo CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo CategoryRepository) CategoryService {
	return &CategoryServiceImpl{CategoryRepo: categoryRepo}
}

func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, category *Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return apperr.Validation("category name is required", nil)
	}
	if !category.Type.Valid() {
		return apperr.Validation("category type must be Hardware or Software", map[string]any{"type": category.Type})
	}
	if category.Subcategories == nil {
		category.Subcategories = []string{}
	}
	category.IsActive = true

	if err := s.CategoryRepo.Create(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("category already exists", map[string]any{"name": category.Name})
		}
		return err
	}
	return nil
}

func (s *CategoryServiceImpl) GetCategory(ctx context.Context, id string) (*Category, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid category ID", nil)
	}

	category, err := s.CategoryRepo.FindByID(ctx, objID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("category")
	}
	return category, err
}

func (s *CategoryServiceImpl) ListCategories(ctx context.Context, activeOnly bool, categoryType string) ([]Category, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	if categoryType != "" {
		filter["type"] = categoryType
	}
	return s.CategoryRepo.List(ctx, filter)
}

func (s *CategoryServiceImpl) UpdateCategory(ctx context.Context, id string, updates map[string]any) (*Category, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid category ID", nil)
	}

	allowed := bson.M{}
	if name, ok := updates["name"].(string); ok && strings.TrimSpace(name) != "" {
		allowed["name"] = strings.TrimSpace(name)
	}
	if typ, ok := updates["type"].(string); ok {
		if !CategoryType(typ).Valid() {
			return nil, apperr.Validation("category type must be Hardware or Software", nil)
		}
		allowed["type"] = typ
	}
	if subs, ok := updates["subcategories"].([]any); ok {
		names := make([]string, 0, len(subs))
		for _, sub := range subs {
			if name, ok := sub.(string); ok && name != "" {
				names = append(names, name)
			}
		}
		allowed["subcategories"] = names
	}
	if active, ok := updates["is_active"].(bool); ok {
		allowed["is_active"] = active
	}
	if len(allowed) == 0 {
		return nil, apperr.Validation("no updatable fields provided", nil)
	}

	if err := s.CategoryRepo.Update(ctx, objID, allowed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("category")
		}
		return nil, err
	}
	return s.CategoryRepo.FindByID(ctx, objID)
}

func (s *CategoryServiceImpl) DeleteCategory(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid category ID", nil)
	}

	if err := s.CategoryRepo.Delete(ctx, objID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("category")
		}
		return err
	}
	return nil
}

// ValidateClassification checks a ticket's category/subcategory pair against
// the active category set.
func (s *CategoryServiceImpl) ValidateClassification(ctx context.Context, categoryName, subcategory string) error {
	category, err := s.CategoryRepo.FindByName(ctx, categoryName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Validation("unknown category", map[string]any{"category": categoryName})
		}
		return err
	}
	if !category.IsActive {
		return apperr.Validation("category is inactive", map[string]any{"category": categoryName})
	}
	if subcategory != "" && !slices.Contains(category.Subcategories, subcategory) {
		return apperr.Validation("unknown subcategory", map[string]any{
			"category":    categoryName,
			"subcategory": subcategory,
		})
	}
	return nil
}
