package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/domain/shared/failure"
)

type sample struct {
	ChatID string `validate:"required"`
	Reason string `json:"reason" validate:"oneof=spam other"`
	Score  int    `validate:"min=1,max=5"`
}

func TestValidateReportsFields(t *testing.T) {
	err := New().Validate(context.Background(), sample{Reason: "rude", Score: 9})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrValidation)
	assert.Contains(t, err.Error(), "ChatID is required")
	assert.Contains(t, err.Error(), "reason must be one of [spam other]")
	assert.Contains(t, err.Error(), "Score must be at most 5")
}

func TestValidateAcceptsPointersAndNonStructs(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(context.Background(), &sample{ChatID: "c1", Reason: "spam", Score: 3}))
	assert.NoError(t, v.Validate(context.Background(), "plain"))
}
