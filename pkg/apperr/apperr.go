package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// Error standardizes application errors across domain services.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error.
func New(code, message string, status int, details map[string]any) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func Validation(message string, details map[string]any) error {
	return New("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NotFound(resource string) error {
	return New("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

func Unauthorized(message string) error {
	return New("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

// AccountDeactivated signals that the authenticated account was disabled;
// clients treat this code as a forced logout.
func AccountDeactivated() error {
	return New("ACCOUNT_DEACTIVATED", "account has been deactivated", http.StatusUnauthorized, nil)
}

func Forbidden(message string) error {
	return New("FORBIDDEN", message, http.StatusForbidden, nil)
}

func Conflict(message string, details map[string]any) error {
	return New("CONFLICT", message, http.StatusConflict, details)
}

// InvalidTransition rejects a status change that is not in the allowed-edges table.
func InvalidTransition(from, to string) error {
	return New("INVALID_TRANSITION",
		fmt.Sprintf("cannot transition from %s to %s", from, to),
		http.StatusConflict,
		map[string]any{"from": from, "to": to})
}

func Internal(err error) error {
	return &Error{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// From converts generic errors to *Error, mapping mongo misses to NOT_FOUND.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound("resource").(*Error)
	}
	return Internal(err).(*Error)
}
