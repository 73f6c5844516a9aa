package response

import (
	"github.com/gofiber/fiber/v2"

	"go-helpdesk/pkg/apperr"
)

// Envelope is the uniform JSON body every endpoint returns.
type Envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Error      any    `json:"error,omitempty"`
	Page       *int64 `json:"page,omitempty"`
	Limit      *int64 `json:"limit,omitempty"`
	Total      *int64 `json:"total,omitempty"`
	TotalPages *int64 `json:"totalPages,omitempty"`
}

// OK writes a success envelope with HTTP 200.
func OK(c *fiber.Ctx, message string, data any) error {
	return c.JSON(Envelope{Success: true, Message: message, Data: data})
}

// Created writes a success envelope with HTTP 201.
func Created(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Message: message, Data: data})
}

// Paginated writes a success envelope carrying pagination metadata.
func Paginated(c *fiber.Ctx, message string, data any, page, limit, total int64) error {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return c.JSON(Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Page:       &page,
		Limit:      &limit,
		Total:      &total,
		TotalPages: &totalPages,
	})
}

// Error maps any error to the envelope using the apperr taxonomy.
func Error(c *fiber.Ctx, err error) error {
	appErr := apperr.From(err)
	body := Envelope{Success: false, Message: appErr.Message}
	if appErr.Code != "" {
		errBody := fiber.Map{"code": appErr.Code}
		if len(appErr.Details) > 0 {
			errBody["details"] = appErr.Details
		}
		body.Error = errBody
	}
	return c.Status(appErr.HTTPStatus).JSON(body)
}
