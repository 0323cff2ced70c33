package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"skillswap/internal/domain/shared/failure"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := failure.NotFound("chat: not found")
	wrapped := fmt.Errorf("load chat: %w", base)

	assert.ErrorIs(t, wrapped, failure.ErrNotFound)
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, failure.ErrNotFound, failure.Kind(wrapped))
	assert.Equal(t, "chat: not found", base.Error())
}

func TestKindUnknown(t *testing.T) {
	assert.Nil(t, failure.Kind(errors.New("boom")))
	assert.Equal(t, failure.ErrInvalidState, failure.Kind(failure.InvalidState("x")))
	assert.Equal(t, failure.ErrForbidden, failure.Kind(failure.Forbidden("x")))
	assert.Equal(t, failure.ErrValidation, failure.Kind(failure.Validation("x")))
	assert.Equal(t, failure.ErrConflict, failure.Kind(failure.Conflict("x")))
}
