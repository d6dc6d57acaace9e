package core

import (
	"errors"
	"fmt"
)

// Errors returned by the plant, user and attendance services. Coordinate validation errors
// come from the geo package unchanged.
var (
	ErrPlantNotFound    = errors.New("plant not found")
	ErrDuplicateKey     = errors.New("a plant with this zone and plant number already exists")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidImage     = errors.New("invalid image")

	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicatePhone      = errors.New("phone number is already registered")
	ErrProfileExists       = errors.New("profile already exists")
	ErrAccountsUnavailable = errors.New("account management is not configured")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
