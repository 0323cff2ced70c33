package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/app/commands"
	"skillswap/internal/app/middleware"
	"skillswap/internal/app/uow"
	"skillswap/internal/domain/shared/failure"
	"skillswap/internal/domain/user"
	"skillswap/internal/infra/storage/memory"
)

type counterResult struct {
	N int `json:"n"`
}

type bumpCommand struct {
	By   user.ID
	Idem string
}

func (bumpCommand) Key() string              { return "test.bump" }
func (c bumpCommand) Actor() user.ID         { return c.By }
func (c bumpCommand) IdempotencyKey() string { return c.Idem }
func (bumpCommand) ResultPrototype() any     { return &counterResult{} }

type failCommand struct{ Idem string }

func (failCommand) Key() string              { return "test.fail" }
func (c failCommand) IdempotencyKey() string { return c.Idem }
func (failCommand) ResultPrototype() any     { return &counterResult{} }

type staticBans map[user.ID]bool

func (b staticBans) IsBanned(ctx context.Context, id user.ID) (bool, error) { return b[id], nil }

func newBus(calls *int) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[bumpCommand, counterResult](bus, commands.HandlerFunc[bumpCommand, counterResult](
		func(ctx context.Context, cmd bumpCommand) (counterResult, error) {
			*calls++
			return counterResult{N: *calls}, nil
		},
	))
	commands.RegisterHandler[failCommand, counterResult](bus, commands.HandlerFunc[failCommand, counterResult](
		func(ctx context.Context, cmd failCommand) (counterResult, error) {
			*calls++
			return counterResult{}, failure.NotFound("thing: not found")
		},
	))
	return bus
}

func TestIdempotencyReplaysResultPerActor(t *testing.T) {
	var calls int
	bus := middleware.ChainCommands(newBus(&calls), middleware.Idempotency(memory.NewIdempotencyStore(0), nil))
	ctx := context.Background()

	first, err := commands.Dispatch[bumpCommand, counterResult](ctx, bus, bumpCommand{By: "alice", Idem: "k1"})
	require.NoError(t, err)
	again, err := commands.Dispatch[bumpCommand, counterResult](ctx, bus, bumpCommand{By: "alice", Idem: "k1"})
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, calls)

	other, err := commands.Dispatch[bumpCommand, counterResult](ctx, bus, bumpCommand{By: "bob", Idem: "k1"})
	require.NoError(t, err)
	assert.Equal(t, 2, other.N)

	_, err = commands.Dispatch[bumpCommand, counterResult](ctx, bus, bumpCommand{By: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestIdempotencyReplaysErrorKind(t *testing.T) {
	var calls int
	bus := middleware.ChainCommands(newBus(&calls), middleware.Idempotency(memory.NewIdempotencyStore(0), nil))

	_, err := commands.Dispatch[failCommand, counterResult](context.Background(), bus, failCommand{Idem: "k"})
	assert.ErrorIs(t, err, failure.ErrNotFound)
	_, err = commands.Dispatch[failCommand, counterResult](context.Background(), bus, failCommand{Idem: "k"})
	assert.ErrorIs(t, err, failure.ErrNotFound)
	assert.Contains(t, err.Error(), "thing: not found")
	assert.Equal(t, 1, calls)
}

func TestRejectBannedActors(t *testing.T) {
	var calls int
	bus := middleware.ChainCommands(newBus(&calls), middleware.RejectBannedActors(staticBans{"mallory": true}))

	_, err := commands.Dispatch[bumpCommand, counterResult](context.Background(), bus, bumpCommand{By: "mallory"})
	assert.ErrorIs(t, err, middleware.ErrActorBanned)
	assert.ErrorIs(t, err, failure.ErrForbidden)
	assert.Zero(t, calls)

	_, err = commands.Dispatch[bumpCommand, counterResult](context.Background(), bus, bumpCommand{By: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type recordingFactory struct {
	memory.Factory
	units []uow.UnitOfWork
}

func (f *recordingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.Factory.Begin(ctx, opts)
	if err == nil {
		f.units = append(f.units, unit)
	}
	return unit, err
}

func TestTransactionAttachesUnitAndSkipsNested(t *testing.T) {
	factory := &recordingFactory{Factory: memory.Factory{Store: memory.NewStore()}}
	var seen []bool
	inner := commands.NewInMemoryBus()
	commands.RegisterHandler[bumpCommand, counterResult](inner, commands.HandlerFunc[bumpCommand, counterResult](
		func(ctx context.Context, cmd bumpCommand) (counterResult, error) {
			_, ok := uow.FromContext(ctx)
			seen = append(seen, ok)
			return counterResult{}, nil
		},
	))
	commands.RegisterHandler[failCommand, counterResult](inner, commands.HandlerFunc[failCommand, counterResult](
		func(ctx context.Context, cmd failCommand) (counterResult, error) {
			return counterResult{}, errors.New("boom")
		},
	))
	bus := middleware.ChainCommands(inner, middleware.Transaction(factory, nil))

	_, err := commands.Dispatch[bumpCommand, counterResult](context.Background(), bus, bumpCommand{})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, seen)
	require.Len(t, factory.units, 1)
	assert.ErrorIs(t, factory.units[0].Commit(context.Background()), memory.ErrUnitClosed)

	_, err = commands.Dispatch[failCommand, counterResult](context.Background(), bus, failCommand{})
	assert.EqualError(t, err, "boom")
	require.Len(t, factory.units, 2)
	assert.ErrorIs(t, factory.units[1].Commit(context.Background()), memory.ErrUnitClosed)

	outer, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	_, err = commands.Dispatch[bumpCommand, counterResult](uow.Attach(context.Background(), outer), bus, bumpCommand{})
	require.NoError(t, err)
	assert.Len(t, factory.units, 3)
}

type flakyCommand struct{ Idem string }

func (flakyCommand) Key() string              { return "test.flaky" }
func (c flakyCommand) IdempotencyKey() string { return c.Idem }
func (flakyCommand) ResultPrototype() any     { return &counterResult{} }

func TestIdempotencyDoesNotPinRetryableErrors(t *testing.T) {
	failures := []error{failure.Conflict("thing: concurrent update"), errors.New("connection reset")}
	var calls int
	inner := commands.NewInMemoryBus()
	commands.RegisterHandler[flakyCommand, counterResult](inner, commands.HandlerFunc[flakyCommand, counterResult](
		func(ctx context.Context, cmd flakyCommand) (counterResult, error) {
			calls++
			if calls <= len(failures) {
				return counterResult{}, failures[calls-1]
			}
			return counterResult{N: calls}, nil
		},
	))
	bus := middleware.ChainCommands(inner, middleware.Idempotency(memory.NewIdempotencyStore(0), nil))
	cmd := flakyCommand{Idem: "k"}

	_, err := commands.Dispatch[flakyCommand, counterResult](context.Background(), bus, cmd)
	assert.ErrorIs(t, err, failure.ErrConflict)
	_, err = commands.Dispatch[flakyCommand, counterResult](context.Background(), bus, cmd)
	assert.EqualError(t, err, "connection reset")

	res, err := commands.Dispatch[flakyCommand, counterResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, 3, res.N)

	again, err := commands.Dispatch[flakyCommand, counterResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, res, again)
	assert.Equal(t, 3, calls)
}
