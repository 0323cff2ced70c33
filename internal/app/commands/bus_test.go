package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/app/commands"
)

type echoCommand struct{ Text string }

func (echoCommand) Key() string { return "test.echo" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTyped(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[echoCommand, string](bus, commands.HandlerFunc[echoCommand, string](
		func(ctx context.Context, cmd echoCommand) (string, error) { return cmd.Text + "!", nil },
	))

	out, err := commands.Dispatch[echoCommand, string](context.Background(), bus, echoCommand{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi!", out)
	assert.Equal(t, []string{"test.echo"}, bus.Keys())

	_, err = commands.Dispatch[echoCommand, int](context.Background(), bus, echoCommand{})
	assert.ErrorIs(t, err, commands.ErrResultType)

	_, err = bus.Dispatch(context.Background(), otherCommand{})
	assert.ErrorIs(t, err, commands.ErrHandlerNotFound)

	_, err = commands.Dispatch[echoCommand, string](context.Background(), nil, echoCommand{})
	assert.ErrorIs(t, err, commands.ErrNilBus)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := commands.NewInMemoryBus()
	h := commands.HandlerFunc[echoCommand, string](func(context.Context, echoCommand) (string, error) { return "", nil })
	commands.RegisterHandler[echoCommand, string](bus, h)
	assert.Panics(t, func() { commands.RegisterHandler[echoCommand, string](bus, h) })
}
