package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/repository"
)

type fakeCategoryRepo struct {
	categories map[string]*Category
}

func newFakeCategoryRepo(categories ...*Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: map[string]*Category{}}
	for _, c := range categories {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		r.categories[c.Name] = c
	}
	return r
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *Category) error {
	c.ID = primitive.NewObjectID()
	r.categories[c.Name] = c
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCategoryRepo) FindByName(_ context.Context, name string) (*Category, error) {
	c, ok := r.categories[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *fakeCategoryRepo) List(_ context.Context, filter bson.M) ([]Category, error) {
	var out []Category
	for _, c := range r.categories {
		if active, ok := filter["is_active"].(bool); ok && c.IsActive != active {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, id primitive.ObjectID, updates bson.M) error {
	c, err := r.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	if active, ok := updates["is_active"].(bool); ok {
		c.IsActive = active
	}
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for name, c := range r.categories {
		if c.ID == id {
			delete(r.categories, name)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCategoryRepo) EnsureIndexes(context.Context) error { return nil }

func hardwareCategory() *Category {
	return &Category{
		Name:          "Hardware",
		Type:          CategoryTypeHardware,
		Subcategories: []string{"Laptop", "Printer"},
		IsActive:      true,
	}
}

func TestValidateClassification(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo(hardwareCategory()))
	ctx := context.Background()

	assert.NoError(t, svc.ValidateClassification(ctx, "Hardware", "Laptop"))
	assert.NoError(t, svc.ValidateClassification(ctx, "Hardware", ""), "subcategory is optional")

	assert.Error(t, svc.ValidateClassification(ctx, "Networking", ""), "unknown category")
	assert.Error(t, svc.ValidateClassification(ctx, "Hardware", "Router"), "subcategory outside the list")
}

func TestValidateClassificationRejectsInactive(t *testing.T) {
	inactive := hardwareCategory()
	inactive.IsActive = false
	svc := NewCategoryService(newFakeCategoryRepo(inactive))

	err := svc.ValidateClassification(context.Background(), "Hardware", "Laptop")
	assert.Error(t, err)
}

func TestCreateCategoryValidation(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	err := svc.CreateCategory(ctx, &Category{Name: "", Type: CategoryTypeHardware})
	assert.Error(t, err, "name required")

	err = svc.CreateCategory(ctx, &Category{Name: "Facilities", Type: "Facilities"})
	assert.Error(t, err, "type outside Hardware/Software")

	c := &Category{Name: "Software", Type: CategoryTypeSoftware, Subcategories: []string{"Email"}}
	require.NoError(t, svc.CreateCategory(ctx, c))
	assert.True(t, c.IsActive, "new categories start active")
}
