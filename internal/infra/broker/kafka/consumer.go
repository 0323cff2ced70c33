package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"

	appoutbox "skillswap/internal/app/outbox"
	infraoutbox "skillswap/internal/infra/outbox"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: g, handler: handler}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, consumerGroupHandler{handler: c.handler}); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim leaves failed messages unmarked so the group redelivers them after a
// rebalance.
func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.Handle(sess.Context(), message); err != nil {
			continue
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

// Inbox deduplicates deliveries by event id.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// RoutingHandler decodes envelopes and hands them to the in-process router once per
// event id.
type RoutingHandler struct {
	Router *appoutbox.Router
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *RoutingHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	rec, err := infraoutbox.Decode(msg.Value)
	if err != nil {
		h.log(ctx, slog.LevelWarn, "dropping undecodable message", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if !h.Router.Handles(rec.Name) {
		return nil
	}
	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, rec.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	if err := h.Router.Route(ctx, rec); err != nil {
		h.log(ctx, slog.LevelError, "event handling failed", "event", rec.Name, "id", rec.ID, "error", err)
		if h.Inbox != nil {
			if ferr := h.Inbox.Forget(ctx, rec.ID); ferr != nil {
				return errors.Join(err, ferr)
			}
		}
		return err
	}
	h.log(ctx, slog.LevelDebug, "event handled", "event", rec.Name, "id", rec.ID)
	return nil
}

func (h *RoutingHandler) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.Log(ctx, level, msg, args...)
	}
}
