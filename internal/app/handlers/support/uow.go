package support

import (
	"context"

	"skillswap/internal/app/uow"
)

// Within runs fn in the unit of work already carried by ctx, or in a new one that is
// committed when fn succeeds and rolled back otherwise.
func Within(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return err
	}
	execCtx := uow.Attach(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()
	if err := fn(execCtx, unit); err != nil {
		return err
	}
	if opts.ReadOnly {
		return nil
	}
	if err := unit.Commit(execCtx); err != nil {
		return err
	}
	committed = true
	return nil
}

// Read is Within with a read-only unit.
func Read(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	return Within(ctx, factory, uow.TxOptions{ReadOnly: true}, fn)
}
