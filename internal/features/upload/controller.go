package upload

import (
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/common/response"
	"go-helpdesk/internal/config"
	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/middleware"
	"go-helpdesk/internal/repository"
	"go-helpdesk/pkg/apperr"
	"go-helpdesk/pkg/utils"
)

const maxUploadBytes = 20 << 20

type UploadController struct {
	UploadDir string
	URLPrefix string
	Files     FileRepository
}

func NewUploadController(files FileRepository, cfg *config.Config) *UploadController {
	if _, err := os.Stat(cfg.FSPath); os.IsNotExist(err) {
		os.MkdirAll(cfg.FSPath, 0755)
	}
	return &UploadController{
		UploadDir: cfg.FSPath,
		URLPrefix: cfg.FSURL,
		Files:     files,
	}
}

func (ctrl *UploadController) saveOne(c *fiber.Ctx, header *multipart.FileHeader, uploader primitive.ObjectID) (*File, error) {
	if header.Size > maxUploadBytes {
		return nil, apperr.Validation("file exceeds upload size limit", map[string]any{"filename": header.Filename})
	}

	originalName := filepath.Base(header.Filename)
	storedName := uuid.NewString() + "-" + utils.Slugify(originalName)

	if err := c.SaveFile(header, filepath.Join(ctrl.UploadDir, storedName)); err != nil {
		return nil, apperr.Internal(err)
	}

	f := &File{
		OriginalName: originalName,
		StoredName:   storedName,
		URL:          strings.TrimRight(ctrl.URLPrefix, "/") + "/" + storedName,
		Size:         header.Size,
		MimeType:     header.Header.Get("Content-Type"),
		UploadedBy:   uploader,
		CreatedAt:    time.Now(),
	}
	if err := ctrl.Files.Create(c.UserContext(), f); err != nil {
		return nil, err
	}
	return f, nil
}

// Upload godoc
// @Summary Upload a single attachment
// @Tags uploads
// @Accept multipart/form-data
// @Router /api/upload [post]
func (ctrl *UploadController) Upload(c *fiber.Ctx) error {
	uploader, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	header, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, apperr.Validation("file field is required", nil))
	}

	f, err := ctrl.saveOne(c, header, uploader)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "file uploaded", f)
}

// UploadMultiple godoc
// @Summary Upload several attachments in one request
// @Tags uploads
// @Accept multipart/form-data
// @Router /api/upload/multiple [post]
func (ctrl *UploadController) UploadMultiple(c *fiber.Ctx) error {
	uploader, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, apperr.Validation("multipart form is required", nil))
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return response.Error(c, apperr.Validation("files field is required", nil))
	}

	saved := make([]*File, 0, len(headers))
	for _, header := range headers {
		f, err := ctrl.saveOne(c, header, uploader)
		if err != nil {
			return response.Error(c, err)
		}
		saved = append(saved, f)
	}
	return response.Created(c, "files uploaded", saved)
}

// ListUploads godoc
// @Summary List the caller's upload history
// @Tags uploads
// @Router /api/upload [get]
func (ctrl *UploadController) ListUploads(c *fiber.Ctx) error {
	uploader, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	files, total, err := ctrl.Files.ListByUploader(c.UserContext(), uploader, page, limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, "uploads", files, page, limit, total)
}

// GetUpload returns one file's metadata. Owners see their own uploads,
// admins see everything.
func (ctrl *UploadController) GetUpload(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("authentication required"))
	}

	objID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return response.Error(c, apperr.Validation("invalid file ID", nil))
	}

	f, err := ctrl.Files.FindByID(c.UserContext(), objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Error(c, apperr.NotFound("file"))
		}
		return response.Error(c, err)
	}

	if f.UploadedBy.Hex() != claims.UserID && claims.Role != string(authz.RoleAdmin) {
		return response.Error(c, apperr.Forbidden("not your upload"))
	}
	return response.OK(c, "upload", f)
}
