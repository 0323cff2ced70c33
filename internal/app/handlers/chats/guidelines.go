package chats

import (
	"context"

	"skillswap/internal/app/dto"
	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/user"
)

const (
	agreeGuidelinesKey    = "chats.guidelines.agree"
	remindGuidelinesKey   = "chats.guidelines.remind"
	getGuidelinesKey      = "chats.guidelines.get"
	acknowledgeWarningKey = "chats.warnings.acknowledge"
)

type AgreeGuidelinesCommand struct {
	ChatID string `validate:"required"`
	UserID string `validate:"required"`
}

func (c AgreeGuidelinesCommand) Key() string    { return agreeGuidelinesKey }
func (c AgreeGuidelinesCommand) Actor() user.ID { return user.ID(c.UserID) }

type AgreeGuidelinesHandler struct {
	Base
}

// Handle marks the chat's shared guidelines flag; one participant agreeing covers both.
func (h *AgreeGuidelinesHandler) Handle(ctx context.Context, cmd AgreeGuidelinesCommand) (dto.Ack, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.Ack{}, err
	}
	chat, err := loadForParticipant(ctx, unit, cmd.ChatID, cmd.UserID)
	if err != nil {
		return dto.Ack{}, err
	}
	chat.AgreeToGuidelines(h.now())
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return dto.Ack{}, err
	}
	h.info(ctx, "guidelines agreed", "chat_id", chat.ID, "user_id", cmd.UserID)
	return dto.Ack{ChatID: string(chat.ID), Message: "Guidelines agreed to successfully"}, nil
}

type RemindGuidelinesCommand struct {
	ChatID string `validate:"required"`
	UserID string `validate:"required"`
}

func (c RemindGuidelinesCommand) Key() string    { return remindGuidelinesKey }
func (c RemindGuidelinesCommand) Actor() user.ID { return user.ID(c.UserID) }

type RemindGuidelinesHandler struct {
	Base
}

func (h *RemindGuidelinesHandler) Handle(ctx context.Context, cmd RemindGuidelinesCommand) (dto.Ack, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.Ack{}, err
	}
	chat, err := loadForParticipant(ctx, unit, cmd.ChatID, cmd.UserID)
	if err != nil {
		return dto.Ack{}, err
	}
	chat.RemindGuidelines(h.now())
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return dto.Ack{}, err
	}
	return dto.Ack{ChatID: string(chat.ID), Message: "Guidelines reminder recorded"}, nil
}

type GetGuidelinesQuery struct{}

func (q GetGuidelinesQuery) Key() string { return getGuidelinesKey }

type GetGuidelinesHandler struct{}

func (h GetGuidelinesHandler) Handle(context.Context, GetGuidelinesQuery) (dto.GuidelinesText, error) {
	return dto.MapGuidelinesText(domainchat.StudyGuidelines()), nil
}

type AcknowledgeWarningCommand struct {
	ChatID    string `validate:"required"`
	WarningID string `validate:"required"`
	UserID    string `validate:"required"`
}

func (c AcknowledgeWarningCommand) Key() string    { return acknowledgeWarningKey }
func (c AcknowledgeWarningCommand) Actor() user.ID { return user.ID(c.UserID) }

type AcknowledgeWarningHandler struct {
	Base
}

// Handle lets the warned user confirm a warning. Banned users are no longer
// participants, so only the chat and the warning target are checked.
func (h *AcknowledgeWarningHandler) Handle(ctx context.Context, cmd AcknowledgeWarningCommand) (dto.Warning, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.Warning{}, err
	}
	chat, err := unit.Chats().ByID(ctx, domainchat.ID(cmd.ChatID))
	if err != nil {
		return dto.Warning{}, err
	}
	userID := user.ID(cmd.UserID)
	if err := chat.AcknowledgeWarning(domainchat.WarningID(cmd.WarningID), userID, h.now()); err != nil {
		return dto.Warning{}, err
	}
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return dto.Warning{}, err
	}
	for _, w := range chat.WarningsFor(userID) {
		if w.ID == domainchat.WarningID(cmd.WarningID) {
			return dto.MapWarning(w), nil
		}
	}
	return dto.Warning{}, domainchat.ErrWarningNotFound
}
