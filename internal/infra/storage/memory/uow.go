package memory

import (
	"context"

	"skillswap/internal/app/outbox"
	"skillswap/internal/app/uow"
	"skillswap/internal/domain/chat"
	"skillswap/internal/domain/swap"
	"skillswap/internal/domain/user"
)

// Factory opens units of work over a Store.
type Factory struct {
	Store  *Store
	Outbox *Outbox
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	store := f.Store
	if store == nil {
		return nil, ErrUnitClosed
	}
	u := &Unit{store: store, outbox: f.Outbox, readOnly: opts.ReadOnly}
	u.users = newView(&store.mu, store.users)
	u.swaps = newView(&store.mu, store.swaps)
	u.chats = newView(&store.mu, store.chats)
	return u, nil
}

// Unit stages writes and event records until Commit.
type Unit struct {
	store    *Store
	outbox   *Outbox
	readOnly bool
	done     bool
	users    *view[user.ID, *user.User]
	swaps    *view[swap.ID, *swap.Swap]
	chats    *view[chat.ID, *chat.Chat]
	records  []outbox.EventRecord
}

func (u *Unit) Users() user.Repository { return &UserRepository{unit: u, rows: u.users} }

func (u *Unit) Swaps() swap.Repository { return &SwapRepository{unit: u, rows: u.swaps} }

func (u *Unit) Chats() chat.Repository { return &ChatRepository{unit: u, rows: u.chats} }

func (u *Unit) Commit(ctx context.Context) error {
	if err := u.writable(); err != nil {
		return err
	}
	u.store.mu.Lock()
	err := u.checkAll()
	if err == nil {
		u.users.apply()
		u.swaps.apply()
		u.chats.apply()
	}
	u.store.mu.Unlock()
	if err != nil {
		return err
	}
	u.done = true
	if u.outbox != nil && len(u.records) > 0 {
		u.outbox.enqueue(u.records)
	}
	u.records = nil
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.done = true
	u.records = nil
	return nil
}

func (u *Unit) checkAll() error {
	for _, check := range []func() error{u.users.check, u.swaps.check, u.chats.check, u.uniqueSwapChats} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// uniqueSwapChats keeps one chat per swap, as the unique swap_id index does in Mongo.
func (u *Unit) uniqueSwapChats() error {
	for id, row := range u.chats.staged {
		for storedID, stored := range u.store.chats.rows {
			if storedID != id && stored.SwapID == row.value.SwapID {
				return ErrConcurrentUpdate
			}
		}
	}
	return nil
}

func (u *Unit) writable() error {
	if u.done {
		return ErrUnitClosed
	}
	if u.readOnly {
		return ErrReadOnly
	}
	return nil
}

var _ uow.UoWFactory = Factory{}
