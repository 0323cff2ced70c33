package swap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/domain/swap"
)

var t0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *swap.Swap {
	t.Helper()
	s, err := swap.NewSwap(swap.CreateParams{
		ID:             "swap-1",
		Requester:      "alice",
		Recipient:      "bob",
		RequestedSkill: swap.Skill{Name: " Python "},
		OfferedSkill:   swap.Skill{Name: "Guitar", Description: "chords"},
		CreatedAt:      t0,
	})
	require.NoError(t, err)
	s.ClearEvents()
	return s
}

func TestNewSwapValidation(t *testing.T) {
	_, err := swap.NewSwap(swap.CreateParams{Requester: "a", Recipient: "a", RequestedSkill: swap.Skill{Name: "x"}, OfferedSkill: swap.Skill{Name: "y"}})
	assert.ErrorIs(t, err, swap.ErrSelfSwap)

	_, err = swap.NewSwap(swap.CreateParams{Requester: "a", Recipient: "b", RequestedSkill: swap.Skill{Name: " "}, OfferedSkill: swap.Skill{Name: "y"}})
	assert.ErrorIs(t, err, swap.ErrSkillRequired)

	s := newPending(t)
	assert.Equal(t, "Python", s.RequestedSkill.Name)
	assert.Equal(t, swap.StatusPending, s.Status)
	assert.Equal(t, []string{"alice", "bob"}, []string{string(s.Participants()[0]), string(s.Participants()[1])})
}

func TestAcceptOnlyByRecipient(t *testing.T) {
	s := newPending(t)
	assert.ErrorIs(t, s.Accept("alice", t0), swap.ErrNotRecipient)

	require.NoError(t, s.Accept("bob", t0.Add(time.Minute)))
	assert.Equal(t, swap.StatusAccepted, s.Status)
	evs := s.PendingEvents()
	require.Len(t, evs, 1)
	accepted, ok := evs[0].(swap.Accepted)
	require.True(t, ok)
	assert.Equal(t, swap.ID("swap-1"), accepted.SwapID)
	assert.Equal(t, swap.EventAccepted, accepted.EventName())

	assert.ErrorIs(t, s.Accept("bob", t0), swap.ErrInvalidState)
	assert.ErrorIs(t, s.Reject("bob", t0), swap.ErrInvalidState)
}

func TestCompleteAndRate(t *testing.T) {
	s := newPending(t)
	assert.ErrorIs(t, s.Complete("alice", t0), swap.ErrInvalidState)
	require.NoError(t, s.Accept("bob", t0))
	assert.ErrorIs(t, s.Complete("mallory", t0), swap.ErrNotParticipant)
	require.NoError(t, s.Complete("alice", t0.Add(time.Hour)))
	assert.Equal(t, t0.Add(time.Hour), s.CompletedAt)

	assert.ErrorIs(t, s.Rate("alice", 6, "", t0), swap.ErrInvalidRating)
	require.NoError(t, s.Rate("alice", 5, "great", t0))
	require.NoError(t, s.Rate("bob", 4, "", t0))
	assert.ErrorIs(t, s.Rate("alice", 3, "", t0), swap.ErrAlreadyRated)
	assert.Equal(t, 5, s.RequesterRating.Score)
	assert.Equal(t, 4, s.RecipientRating.Score)
}

func TestCancel(t *testing.T) {
	s := newPending(t)
	require.NoError(t, s.Cancel("alice", t0))
	assert.Equal(t, swap.StatusCancelled, s.Status)
	assert.ErrorIs(t, s.Cancel("alice", t0), swap.ErrInvalidState)
}
