package user_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/domain/shared/failure"
	"skillswap/internal/domain/user"
)

func TestNewUserNormalizes(t *testing.T) {
	u, err := user.NewUser(user.CreateParams{
		ID:        "u-1",
		FirstName: "  Ada ",
		LastName:  "Lovelace",
		Email:     " ADA@Example.org ",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", u.Email)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.Equal(t, "Ada Lovelace", u.DisplayName())
	assert.False(t, u.IsAdmin())
}

func TestNewUserRejectsUnknownRole(t *testing.T) {
	_, err := user.NewUser(user.CreateParams{ID: "u-1", FirstName: "A", Email: "a@b.c", Role: "root"})
	assert.ErrorIs(t, err, user.ErrInvalidRole)
	assert.ErrorIs(t, err, failure.ErrValidation)
}

func TestBanRecordsMetadataAndEvent(t *testing.T) {
	u, err := user.NewUser(user.CreateParams{ID: "u-1", FirstName: "A", Email: "a@b.c"})
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, u.Ban("Chat violation: severe", "admin-1", now))

	assert.True(t, u.IsBanned)
	assert.Equal(t, "Chat violation: severe", u.BanReason)
	assert.Equal(t, user.ID("admin-1"), u.BannedBy)
	assert.Equal(t, now, u.BannedAt)
	evs := u.PendingEvents()
	require.Len(t, evs, 1)
	assert.Equal(t, "user.banned", evs[0].EventName())

	assert.ErrorIs(t, u.Ban("again", "admin-1", now), user.ErrAlreadyBanned)
}

func TestUnbanClearsMetadata(t *testing.T) {
	u, err := user.NewUser(user.CreateParams{ID: "u-1", FirstName: "A", Email: "a@b.c"})
	require.NoError(t, err)
	assert.ErrorIs(t, u.Unban(time.Now()), user.ErrNotBanned)

	require.NoError(t, u.Ban("spam", "admin-1", time.Now()))
	require.NoError(t, u.Unban(time.Now()))
	assert.False(t, u.IsBanned)
	assert.Empty(t, u.BanReason)
	assert.True(t, u.BannedAt.IsZero())
	assert.Empty(t, u.BannedBy)
}
