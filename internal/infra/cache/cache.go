package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skillswap/internal/app/handlers/support"
	"skillswap/internal/app/outbox"
	"skillswap/internal/app/uow"
	"skillswap/internal/domain/shared/failure"
	"skillswap/internal/domain/user"
)

// LookupFunc resolves the authoritative ban flag on a cache miss.
type LookupFunc func(ctx context.Context, id user.ID) (bool, error)

// Marker records a fresh ban in the cache.
type Marker interface {
	MarkBanned(ctx context.Context, id user.ID) error
}

// RepositoryLookup reads the ban flag from the user repository. Unknown users are not banned.
func RepositoryLookup(factory uow.UoWFactory) LookupFunc {
	return func(ctx context.Context, id user.ID) (bool, error) {
		var banned bool
		err := support.Read(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) error {
			u, err := unit.Users().ByID(ctx, id)
			if err != nil {
				return err
			}
			banned = u.IsBanned
			return nil
		})
		if errors.Is(err, failure.ErrNotFound) {
			return false, nil
		}
		return banned, err
	}
}

// OnUserBanned returns a subscriber that marks the banned account in m.
func OnUserBanned(m Marker) outbox.Subscriber {
	return func(ctx context.Context, rec outbox.EventRecord) error {
		var ev user.Banned
		if err := json.Unmarshal(rec.Payload, &ev); err != nil {
			return fmt.Errorf("cache: decode %s: %w", rec.Name, err)
		}
		if ev.UserID == "" {
			ev.UserID = user.ID(rec.Aggregate)
		}
		return m.MarkBanned(ctx, ev.UserID)
	}
}
