package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrUnauthorized       = errors.New("unauthorized")        // 401
	ErrForbidden          = errors.New("forbidden")           // 403
	ErrNotFound           = errors.New("not found")           // 404
	ErrConflict           = errors.New("conflict")            // 400
	ErrInsufficientStock  = errors.New("insufficient stock")  // 400
	ErrEmptyCart          = errors.New("cart is empty")       // 400
	ErrInvalidTransition  = errors.New("invalid transition")  // 400
	ErrProductUnavailable = errors.New("product unavailable") // 400
	ErrInactiveAccount    = errors.New("account is inactive") // 400
)

// translate maps storage errors onto the service taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	default:
		return err
	}
}
