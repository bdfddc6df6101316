package domain

import (
	"errors"
	"fmt"
)

// Ошибки, которые use cases возвращают наружу. REST слой сопоставляет их со статусами через errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrIneligibleIdentity = errors.New("user is neither an agent nor a real estate company")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrTokenInvalid       = errors.New("invalid jwt token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// NewValidationError оборачивает ErrValidation с описанием конкретного нарушения.
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
