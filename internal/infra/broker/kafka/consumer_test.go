package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "skillswap/internal/app/outbox"
	"skillswap/internal/infra/inbox"
	infraoutbox "skillswap/internal/infra/outbox"
)

func envelope(t *testing.T, id, name string) *sarama.ConsumerMessage {
	t.Helper()
	body, _, err := infraoutbox.Encode(appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"userId":"bob"}`),
		Aggregate:  "bob",
		OccurredAt: time.Now(),
	}, "app://test")
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: infraoutbox.TopicFor("", name), Value: body}
}

func TestRoutingHandlerDeliversOncePerEventID(t *testing.T) {
	router := appoutbox.NewRouter()
	var delivered []string
	router.Subscribe("user.banned", func(ctx context.Context, rec appoutbox.EventRecord) error {
		delivered = append(delivered, rec.ID)
		return nil
	})
	h := &RoutingHandler{Router: router, Inbox: inbox.NewMemory()}
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, envelope(t, "e1", "user.banned")))
	require.NoError(t, h.Handle(ctx, envelope(t, "e1", "user.banned")))
	require.NoError(t, h.Handle(ctx, envelope(t, "e2", "user.banned")))
	require.NoError(t, h.Handle(ctx, envelope(t, "e3", "swap.requested")))
	require.NoError(t, h.Handle(ctx, &sarama.ConsumerMessage{Value: []byte("not json")}))

	assert.Equal(t, []string{"e1", "e2"}, delivered)
}

func TestRoutingHandlerForgetsFailedDeliveries(t *testing.T) {
	router := appoutbox.NewRouter()
	attempts := 0
	router.Subscribe("swap.accepted", func(ctx context.Context, rec appoutbox.EventRecord) error {
		attempts++
		if attempts == 1 {
			return errors.New("store unavailable")
		}
		return nil
	})
	h := &RoutingHandler{Router: router, Inbox: inbox.NewMemory()}
	msg := envelope(t, "e1", "swap.accepted")

	assert.Error(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, 2, attempts)
}
