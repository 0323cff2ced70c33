package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skillswap/internal/app/outbox"
	"skillswap/internal/domain/user"
	"skillswap/internal/infra/storage/memory"
)

func TestMemoryBansCachesLookup(t *testing.T) {
	calls := 0
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	bans := NewMemoryBans(func(ctx context.Context, id user.ID) (bool, error) {
		calls++
		return false, nil
	}, time.Minute)
	bans.Clock = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		banned, err := bans.IsBanned(context.Background(), "u1")
		require.NoError(t, err)
		require.False(t, banned)
	}
	require.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	_, err := bans.IsBanned(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestOnUserBannedMarksAccount(t *testing.T) {
	bans := NewMemoryBans(func(ctx context.Context, id user.ID) (bool, error) { return false, nil }, time.Hour)
	payload, err := json.Marshal(user.Banned{UserID: "u2", Reason: "Chat violation: harassment", BannedBy: "admin"})
	require.NoError(t, err)

	err = OnUserBanned(bans)(context.Background(), outbox.EventRecord{Name: "user.banned", Payload: payload, Aggregate: "u2"})
	require.NoError(t, err)

	banned, err := bans.IsBanned(context.Background(), "u2")
	require.NoError(t, err)
	require.True(t, banned)
}

func TestRepositoryLookup(t *testing.T) {
	store := memory.NewStore()
	u, err := user.NewUser(user.CreateParams{ID: "u3", FirstName: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	require.NoError(t, u.Ban("spam", "admin", time.Now()))
	store.PutUser(u)
	lookup := RepositoryLookup(memory.Factory{Store: store})

	banned, err := lookup(context.Background(), "u3")
	require.NoError(t, err)
	require.True(t, banned)

	banned, err = lookup(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, banned)
}
