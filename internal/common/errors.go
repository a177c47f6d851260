// Package common defines shared constants and sentinel errors used across
// client and server layers of pdfdesk. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// ErrUserAlreadyInactive is returned when deactivating an inactive account.
	// It still matches ErrorNotFound so callers treating both cases alike keep working.
	ErrUserAlreadyInactive = fmt.Errorf("%w: user already deactivated", ErrorNotFound)

	// ErrQuotaExceeded is returned when an owner reached the document limit.
	ErrQuotaExceeded = errors.New("document quota exceeded")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError reports which input fields were missing or malformed.
// It matches ErrorValidation via errors.Is.
type ValidationError struct {
	Fields []string
	Reason string
}

// NewValidationError builds a ValidationError for the given fields.
func NewValidationError(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", ErrorValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrorValidation, e.Reason, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}
