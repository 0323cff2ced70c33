package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "skillswap/internal/app/outbox"
	"skillswap/internal/app/uow"
	"skillswap/internal/domain/chat"
	"skillswap/internal/domain/shared/failure"
	"skillswap/internal/domain/swap"
	"skillswap/internal/domain/user"
)

var t0 = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

func openChat(t *testing.T, id chat.ID, swapID swap.ID) *chat.Chat {
	t.Helper()
	c, err := chat.Open(chat.OpenParams{ID: id, SwapID: swapID, Participants: []user.ID{"a", "b"}, Now: t0})
	require.NoError(t, err)
	return c
}

func begin(t *testing.T, f Factory) uow.UnitOfWork {
	t.Helper()
	unit, err := f.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return unit
}

func TestCommitAppliesAndRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	f := Factory{Store: NewStore()}

	unit := begin(t, f)
	require.NoError(t, unit.Chats().Save(ctx, openChat(t, "c1", "s1")))
	require.NoError(t, unit.Rollback(ctx))

	_, err := begin(t, f).Chats().ByID(ctx, "c1")
	assert.ErrorIs(t, err, chat.ErrNotFound)

	unit = begin(t, f)
	require.NoError(t, unit.Chats().Save(ctx, openChat(t, "c1", "s1")))
	require.NoError(t, unit.Commit(ctx))

	stored, err := begin(t, f).Chats().ByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.Empty(t, stored.PendingEvents())
}

func TestConcurrentSaveLosesToFirstCommit(t *testing.T) {
	ctx := context.Background()
	f := Factory{Store: NewStore()}
	seed := begin(t, f)
	require.NoError(t, seed.Chats().Save(ctx, openChat(t, "c1", "s1")))
	require.NoError(t, seed.Commit(ctx))

	first, second := begin(t, f), begin(t, f)
	c1, err := first.Chats().ByID(ctx, "c1")
	require.NoError(t, err)
	c2, err := second.Chats().ByID(ctx, "c1")
	require.NoError(t, err)

	c1.AgreeToGuidelines(t0)
	c2.RemindGuidelines(t0)
	require.NoError(t, first.Chats().Save(ctx, c1))
	require.NoError(t, second.Chats().Save(ctx, c2))
	require.NoError(t, first.Commit(ctx))

	err = second.Commit(ctx)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.ErrorIs(t, err, failure.ErrConflict)
}

func TestOneChatPerSwap(t *testing.T) {
	ctx := context.Background()
	f := Factory{Store: NewStore()}
	unit := begin(t, f)
	require.NoError(t, unit.Chats().Save(ctx, openChat(t, "c1", "s1")))
	require.NoError(t, unit.Commit(ctx))

	unit = begin(t, f)
	err := unit.Chats().Save(ctx, openChat(t, "c2", "s1"))
	if err == nil {
		err = unit.Commit(ctx)
	}
	assert.Error(t, err)

	found, err := begin(t, f).Chats().BySwapID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, chat.ID("c1"), found.ID)
}

func TestReadOnlyUnitRejectsCommit(t *testing.T) {
	unit, err := Factory{Store: NewStore()}.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	assert.ErrorIs(t, unit.Commit(context.Background()), ErrReadOnly)
}

func TestListFlaggedPagesByLatestFlag(t *testing.T) {
	ctx := context.Background()
	f := Factory{Store: NewStore()}
	unit := begin(t, f)
	for i, id := range []chat.ID{"c1", "c2", "c3"} {
		c := openChat(t, id, swap.ID("s-"+string(id)))
		msg := c.AddMessage(chat.NewMessage{ID: chat.MessageID("m-" + string(id)), Sender: chat.UserSender("a"), Content: "hi", Type: chat.MessageText}, t0)
		if id != "c3" {
			c.FlagMessage(msg.ID, "b", chat.FlagSpam, t0.Add(time.Duration(i)*time.Minute))
		}
		require.NoError(t, unit.Chats().Save(ctx, c))
	}
	require.NoError(t, unit.Commit(ctx))

	chats, total, err := begin(t, f).Chats().ListFlagged(ctx, chat.Page{Number: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, chats, 1)
	assert.Equal(t, chat.ID("c2"), chats[0].ID)

	chats, _, err = begin(t, f).Chats().ListFlagged(ctx, chat.Page{Number: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, chat.ID("c1"), chats[0].ID)
}

func TestOutboxQueuesRecordsOnlyAfterCommit(t *testing.T) {
	ctx := context.Background()
	router := appoutbox.NewRouter()
	var routed []string
	router.Subscribe("chat.opened", func(ctx context.Context, rec appoutbox.EventRecord) error {
		routed = append(routed, rec.Aggregate)
		return nil
	})
	box := NewOutbox(router, nil)
	f := Factory{Store: NewStore(), Outbox: box}

	unit := begin(t, f)
	unitCtx := uow.Attach(ctx, unit)
	c := openChat(t, "c1", "s1")
	require.NoError(t, unit.Chats().Save(unitCtx, c))
	require.NoError(t, appoutbox.Publisher{Outbox: box}.Collect(unitCtx, c))
	assert.Empty(t, box.Pending())

	require.NoError(t, unit.Commit(unitCtx))
	require.Len(t, box.Pending(), 1)
	require.NoError(t, box.Flush(ctx))
	assert.Equal(t, []string{"c1"}, routed)
	assert.Empty(t, box.Pending())
}
