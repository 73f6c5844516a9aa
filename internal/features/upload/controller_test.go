package upload

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/middleware"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/utils"
)

// fakeFileRepo keeps upload metadata in memory.
type fakeFileRepo struct {
	files map[primitive.ObjectID]*File
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[primitive.ObjectID]*File{}}
}

func (r *fakeFileRepo) Create(_ context.Context, f *File) error {
	f.ID = primitive.NewObjectID()
	r.files[f.ID] = f
	return nil
}

func (r *fakeFileRepo) FindByID(_ context.Context, id primitive.ObjectID) (*File, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *f
	return &out, nil
}

func (r *fakeFileRepo) ListByUploader(_ context.Context, uploader primitive.ObjectID, page, limit int64) ([]File, int64, error) {
	var out []File
	for _, f := range r.files {
		if f.UploadedBy == uploader {
			out = append(out, *f)
		}
	}
	return out, int64(len(out)), nil
}

type uploadFixture struct {
	app  *fiber.App
	repo *fakeFileRepo
}

func newUploadFixture() *uploadFixture {
	utils.SetSecret("test-secret", 1)

	repo := newFakeFileRepo()
	ctrl := &UploadController{UploadDir: ".", URLPrefix: "/fs/uploads", Files: repo}

	app := fiber.New()
	grp := app.Group("/api/upload", middleware.AuthMiddleware(nil))
	grp.Get("/", ctrl.ListUploads)
	grp.Get("/:id", ctrl.GetUpload)

	return &uploadFixture{app: app, repo: repo}
}

func bearerFor(t *testing.T, id primitive.ObjectID, role string) string {
	t.Helper()
	token, err := utils.GenerateToken(id, role, role+"@helpdesk.local", "Test User")
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *uploadFixture) get(t *testing.T, path, bearer string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Authorization", bearer)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func storedFile(repo *fakeFileRepo, owner primitive.ObjectID, name string) *File {
	f := &File{
		OriginalName: name,
		StoredName:   "x-" + name,
		URL:          "/fs/uploads/x-" + name,
		UploadedBy:   owner,
		CreatedAt:    time.Now(),
	}
	repo.Create(context.Background(), f)
	return f
}

func TestListUploadsScopedToCaller(t *testing.T) {
	f := newUploadFixture()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	storedFile(f.repo, alice, "report.pdf")
	storedFile(f.repo, alice, "notes.txt")
	storedFile(f.repo, bob, "photo.png")

	status, body := f.get(t, "/api/upload", bearerFor(t, alice, "employee"))
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, body["total"])
}

func TestGetUploadOwnership(t *testing.T) {
	f := newUploadFixture()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	file := storedFile(f.repo, alice, "report.pdf")

	status, _ := f.get(t, "/api/upload/"+file.ID.Hex(), bearerFor(t, alice, "employee"))
	assert.Equal(t, fiber.StatusOK, status)

	status, body := f.get(t, "/api/upload/"+file.ID.Hex(), bearerFor(t, bob, "employee"))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, false, body["success"])

	status, _ = f.get(t, "/api/upload/"+file.ID.Hex(), bearerFor(t, admin, "admin"))
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = f.get(t, "/api/upload/"+primitive.NewObjectID().Hex(), bearerFor(t, alice, "employee"))
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = f.get(t, "/api/upload/not-an-id", bearerFor(t, alice, "employee"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}
