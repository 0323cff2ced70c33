package swaps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "skillswap/internal/app/outbox"
	domainswap "skillswap/internal/domain/swap"
	"skillswap/internal/infra/storage/memory"
)

func newHandler(t *testing.T) (*Handler, *memory.Outbox, *time.Time) {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	box := memory.NewOutbox(appoutbox.NewRouter(), nil)
	h := &Handler{
		UoWFactory: memory.Factory{Store: memory.NewStore(), Outbox: box},
		Outbox:     box,
		Clock:      func() time.Time { return now },
	}
	return h, box, &now
}

func request(t *testing.T, h *Handler, from, to string) string {
	t.Helper()
	sw, err := h.Request(context.Background(), RequestSwapCommand{
		RequesterID:    from,
		RecipientID:    to,
		RequestedSkill: SkillInput{Name: "Go"},
		OfferedSkill:   SkillInput{Name: "Piano"},
	})
	require.NoError(t, err)
	return sw.ID
}

func TestSwapLifecycleRecordsEvents(t *testing.T) {
	h, box, _ := newHandler(t)
	ctx := context.Background()
	id := request(t, h, "alice", "bob")

	_, err := h.Respond(ctx, RespondSwapCommand{SwapID: id, UserID: "alice", Action: ActionAccept})
	assert.ErrorIs(t, err, domainswap.ErrNotRecipient)

	sw, err := h.Respond(ctx, RespondSwapCommand{SwapID: id, UserID: "bob", Action: ActionAccept})
	require.NoError(t, err)
	assert.Equal(t, string(domainswap.StatusAccepted), sw.Status)

	sw, err = h.Respond(ctx, RespondSwapCommand{SwapID: id, UserID: "alice", Action: ActionComplete})
	require.NoError(t, err)
	require.NotNil(t, sw.CompletedAt)

	sw, err = h.Rate(ctx, RateSwapCommand{SwapID: id, UserID: "bob", Score: 5, Comment: "great"})
	require.NoError(t, err)
	require.NotNil(t, sw.RecipientRating)
	assert.Equal(t, 5, sw.RecipientRating.Score)

	_, err = h.Rate(ctx, RateSwapCommand{SwapID: id, UserID: "bob", Score: 4})
	assert.ErrorIs(t, err, domainswap.ErrAlreadyRated)

	var names []string
	for _, rec := range box.Pending() {
		names = append(names, rec.Name)
	}
	assert.Contains(t, names, domainswap.EventAccepted)
}

func TestListSwapsNewestFirstWithStatusFilter(t *testing.T) {
	h, _, now := newHandler(t)
	ctx := context.Background()
	first := request(t, h, "alice", "bob")
	*now = now.Add(time.Hour)
	second := request(t, h, "carol", "alice")
	_, err := h.Respond(ctx, RespondSwapCommand{SwapID: first, UserID: "bob", Action: ActionReject})
	require.NoError(t, err)

	all, err := h.List(ctx, ListSwapsQuery{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, second, all.Items[0].ID)

	pending, err := h.List(ctx, ListSwapsQuery{UserID: "alice", Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, second, pending.Items[0].ID)
}

func TestGetSwapOnlyForParties(t *testing.T) {
	h, _, _ := newHandler(t)
	id := request(t, h, "alice", "bob")

	_, err := h.Get(context.Background(), GetSwapQuery{SwapID: id, ViewerID: "mallory"})
	assert.ErrorIs(t, err, domainswap.ErrNotParticipant)

	sw, err := h.Get(context.Background(), GetSwapQuery{SwapID: id, ViewerID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "alice", sw.Requester)
}
