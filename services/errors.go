package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Sentinel errors for the redemption workflow. Services return these so the
// reconciliation worker and tests can branch on them; handlers map them to
// HTTP statuses.
var (
	ErrCodeNotFound    = errors.New("access code not found")
	ErrCodeAlreadyUsed = errors.New("access code already used")
	ErrRoleMismatch    = errors.New("access code role mismatch")
	ErrValidation      = errors.New("invalid input")
	ErrTransientStore  = errors.New("transient store error")
)

// IsTransient reports whether err is worth a bounded retry. Anything the
// database driver returned that isn't a definite domain outcome counts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransientStore) {
		return true
	}
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, ErrCodeNotFound) ||
		errors.Is(err, ErrCodeAlreadyUsed) ||
		errors.Is(err, ErrRoleMismatch) ||
		errors.Is(err, ErrValidation) {
		return false
	}
	return true
}

// StatusForError maps a service error to the HTTP status the handlers return.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrCodeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrCodeAlreadyUsed):
		return fiber.StatusConflict
	case errors.Is(err, ErrRoleMismatch):
		return fiber.StatusForbidden
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
