package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("missing required fields", "name", "password")

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.False(t, errors.Is(err, ErrorNotFound))
	assert.Equal(t, "validation error: missing required fields: name, password", err.Error())

	wrapped := fmt.Errorf("register: %w", err)
	var ve *ValidationError
	if assert.True(t, errors.As(wrapped, &ve)) {
		assert.Equal(t, []string{"name", "password"}, ve.Fields)
	}
}

func TestValidationError_NoFields(t *testing.T) {
	err := NewValidationError("bad input")
	assert.Equal(t, "validation error: bad input", err.Error())
}

func TestUserAlreadyInactive_IsNotFoundKind(t *testing.T) {
	assert.True(t, errors.Is(ErrUserAlreadyInactive, ErrorNotFound))
	assert.False(t, errors.Is(ErrorNotFound, ErrUserAlreadyInactive))
}
