package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-helpdesk/pkg/apperr"
)

func perform(t *testing.T, handler fiber.Handler) (int, Envelope) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return resp.StatusCode, envelope
}

func TestOK(t *testing.T) {
	status, envelope := perform(t, func(c *fiber.Ctx) error {
		return OK(c, "ticket", fiber.Map{"id": "abc"})
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, envelope.Success)
	assert.Equal(t, "ticket", envelope.Message)
	assert.NotNil(t, envelope.Data)
	assert.Nil(t, envelope.Error)
	assert.Nil(t, envelope.Page)
}

func TestCreated(t *testing.T) {
	status, envelope := perform(t, func(c *fiber.Ctx) error {
		return Created(c, "created", nil)
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.True(t, envelope.Success)
}

func TestPaginatedComputesTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		limit int64
		total int64
		pages int64
	}{
		{"exact fit", 10, 30, 3},
		{"partial last page", 10, 31, 4},
		{"empty", 10, 0, 0},
		{"single record", 10, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := perform(t, func(c *fiber.Ctx) error {
				return Paginated(c, "items", []string{}, 1, tt.limit, tt.total)
			})
			assert.Equal(t, fiber.StatusOK, status)
			require.NotNil(t, envelope.TotalPages)
			assert.Equal(t, tt.pages, *envelope.TotalPages)
			require.NotNil(t, envelope.Total)
			assert.Equal(t, tt.total, *envelope.Total)
		})
	}
}

func TestErrorUsesTaxonomy(t *testing.T) {
	status, envelope := perform(t, func(c *fiber.Ctx) error {
		return Error(c, apperr.NotFound("ticket"))
	})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, envelope.Success)
	assert.Equal(t, "ticket not found", envelope.Message)

	errBody, ok := envelope.Error.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}

func TestErrorWrapsUnknownErrors(t *testing.T) {
	status, envelope := perform(t, func(c *fiber.Ctx) error {
		return Error(c, assert.AnError)
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.False(t, envelope.Success)

	errBody, ok := envelope.Error.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INTERNAL_ERROR", errBody["code"])
}

func TestErrorCarriesTransitionDetails(t *testing.T) {
	status, envelope := perform(t, func(c *fiber.Ctx) error {
		return Error(c, apperr.InvalidTransition("Open", "Closed"))
	})
	assert.Equal(t, fiber.StatusConflict, status)

	errBody, ok := envelope.Error.(map[string]any)
	require.True(t, ok)
	details, ok := errBody["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Open", details["from"])
	assert.Equal(t, "Closed", details["to"])
}
