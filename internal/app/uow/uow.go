package uow

import (
	"context"

	domainchat "skillswap/internal/domain/chat"
	domainswap "skillswap/internal/domain/swap"
	domainuser "skillswap/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Users() domainuser.Repository
	Swaps() domainswap.Repository
	Chats() domainchat.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
