package chats

import (
	"context"
	"errors"

	"skillswap/internal/app/dto"
	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/user"
)

const banUserKey = "chats.admin.ban"

type BanUserCommand struct {
	ChatID  string `validate:"required"`
	UserID  string `validate:"required"`
	AdminID string `validate:"required"`
	Reason  string `validate:"max=500"`
}

func (c BanUserCommand) Key() string    { return banUserKey }
func (c BanUserCommand) Actor() user.ID { return user.ID(c.AdminID) }

type BanUserHandler struct {
	Base
}

// Handle bans the user from the chat. Reasons naming "severe" or "harassment" also ban
// the account platform-wide in the same unit of work; an unknown account is skipped.
func (h *BanUserHandler) Handle(ctx context.Context, cmd BanUserCommand) (dto.BanResult, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.BanResult{}, err
	}
	chat, err := unit.Chats().ByID(ctx, domainchat.ID(cmd.ChatID))
	if err != nil {
		return dto.BanResult{}, err
	}
	now := h.now()
	target := user.ID(cmd.UserID)
	admin := user.ID(cmd.AdminID)
	outcome, err := chat.BanParticipant(domainchat.BanParams{
		UserID:    target,
		Reason:    cmd.Reason,
		IssuedBy:  admin,
		WarningID: domainchat.WarningID(h.id()),
		NoticeID:  domainchat.MessageID(h.id()),
		Now:       now,
	})
	if err != nil {
		return dto.BanResult{}, err
	}
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return dto.BanResult{}, err
	}
	if err := h.publish(ctx, chat); err != nil {
		return dto.BanResult{}, err
	}

	platformBanned := false
	if outcome.Escalate {
		platformBanned, err = h.banAccount(ctx, target, admin, cmd.Reason)
		if err != nil {
			return dto.BanResult{}, err
		}
	}
	h.info(ctx, "user banned from chat", "chat_id", chat.ID, "user_id", target, "admin_id", admin, "platform_ban", platformBanned)
	return dto.BanResult{
		ChatID:         string(chat.ID),
		UserID:         string(target),
		Warning:        dto.MapWarning(outcome.Warning),
		PlatformBanned: platformBanned,
	}, nil
}

func (h *BanUserHandler) banAccount(ctx context.Context, target, admin user.ID, reason string) (bool, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return false, err
	}
	account, err := unit.Users().ByID(ctx, target)
	if errors.Is(err, user.ErrNotFound) {
		if h.Logger != nil {
			h.Logger.WarnContext(ctx, "platform ban skipped, unknown account", "user_id", target)
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := account.Ban(domainchat.PlatformBanReason(reason), admin, h.now()); err != nil {
		if errors.Is(err, user.ErrAlreadyBanned) {
			return true, nil
		}
		return false, err
	}
	if err := unit.Users().Save(ctx, account); err != nil {
		return false, err
	}
	if err := h.publish(ctx, account); err != nil {
		return false, err
	}
	return true, nil
}
