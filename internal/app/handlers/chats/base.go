package chats

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillswap/internal/app/outbox"
	"skillswap/internal/app/uow"
	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/user"
)

// Base carries what every chat command handler needs besides the unit of work.
type Base struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   func() time.Time
	NewID   func() string
}

func (b *Base) now() time.Time {
	if b.Clock != nil {
		return b.Clock().UTC()
	}
	return time.Now().UTC()
}

func (b *Base) id() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

func (b *Base) publish(ctx context.Context, sources ...outbox.EventSource) error {
	return outbox.Publisher{Outbox: b.Outbox, Encoder: b.Encoder}.Collect(ctx, sources...)
}

func (b *Base) info(ctx context.Context, msg string, args ...any) {
	if b.Logger != nil {
		b.Logger.InfoContext(ctx, msg, args...)
	}
}

func unitFrom(ctx context.Context) (uow.UnitOfWork, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return unit, nil
}

// loadForParticipant returns the chat when actor takes part in it.
func loadForParticipant(ctx context.Context, unit uow.UnitOfWork, chatID string, actor string) (*domainchat.Chat, error) {
	chat, err := unit.Chats().ByID(ctx, domainchat.ID(strings.TrimSpace(chatID)))
	if err != nil {
		return nil, err
	}
	if !chat.IsParticipant(user.ID(actor)) {
		return nil, domainchat.ErrNotParticipant
	}
	return chat, nil
}
