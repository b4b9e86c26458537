// Package apperrors defines the client-facing error taxonomy shared by services, middleware and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication and authorization failures.
// Messages are safe to return to clients as-is.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTwoFactorRequired    = errors.New("two-factor code required")
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")
	ErrMissingToken         = errors.New("access token required")
	ErrInvalidToken         = errors.New("invalid token")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("access denied: insufficient permissions")
	ErrNotFound             = errors.New("resource not found")
)

// DuplicateFieldError is returned when a unique field (username or email) is already taken
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// ValidationError is returned when request data is missing or malformed
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsDuplicateField reports whether err is a DuplicateFieldError and returns the conflicting field
func IsDuplicateField(err error) (string, bool) {
	var dup *DuplicateFieldError
	if errors.As(err, &dup) {
		return dup.Field, true
	}
	return "", false
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// InternalMessage is the only detail clients see for unexpected failures
const InternalMessage = "internal server error"

// HTTPStatus maps an error to the response status and client-facing message.
// Errors outside the taxonomy are reported as 500 with InternalMessage.
func HTTPStatus(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var dup *DuplicateFieldError
	var v *ValidationError
	switch {
	case errors.As(err, &v):
		return http.StatusBadRequest, v.Message
	case errors.As(err, &dup):
		return http.StatusBadRequest, dup.Error()
	case errors.Is(err, ErrTwoFactorRequired):
		return http.StatusBadRequest, ErrTwoFactorRequired.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrInvalidCredentials.Error()
	case errors.Is(err, ErrInvalidTwoFactorCode):
		return http.StatusUnauthorized, ErrInvalidTwoFactorCode.Error()
	case errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized, ErrMissingToken.Error()
	case errors.Is(err, ErrInvalidToken):
		return http.StatusForbidden, ErrInvalidToken.Error()
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrForbidden.Error()
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, ErrUserNotFound.Error()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrNotFound.Error()
	default:
		return http.StatusInternalServerError, InternalMessage
	}
}
