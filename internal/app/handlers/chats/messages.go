package chats

import (
	"context"

	"skillswap/internal/app/dto"
	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/user"
)

const (
	sendMessageKey   = "chats.messages.send"
	markReadKey      = "chats.messages.read"
	flagMessageKey   = "chats.messages.flag"
	deleteMessageKey = "chats.messages.delete"
)

type SendMessageCommand struct {
	ChatID          string `validate:"required"`
	SenderID        string `validate:"required"`
	Content         string
	Type            string
	FileURL         string `validate:"omitempty,url"`
	FileName        string
	IdempotencyKeyV string
}

func (c SendMessageCommand) Key() string            { return sendMessageKey }
func (c SendMessageCommand) Actor() user.ID         { return user.ID(c.SenderID) }
func (c SendMessageCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c SendMessageCommand) ResultPrototype() any   { return &dto.SendMessageResult{} }

type SendMessageHandler struct {
	Base
	MaxContentLength int
}

// Handle appends the message. Content caught by the keyword filter is stored, flagged
// as inappropriate on behalf of the sender and reported back as rejected.
func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (dto.SendMessageResult, error) {
	if err := domainchat.ValidateContent(cmd.Content, h.MaxContentLength); err != nil {
		return dto.SendMessageResult{}, err
	}
	msgType, err := domainchat.ParseMessageType(cmd.Type)
	if err != nil {
		return dto.SendMessageResult{}, err
	}
	if msgType == domainchat.MessageSystem {
		return dto.SendMessageResult{}, domainchat.ErrInvalidMessageType
	}
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.SendMessageResult{}, err
	}
	chat, err := unit.Chats().ByID(ctx, domainchat.ID(cmd.ChatID))
	if err != nil {
		return dto.SendMessageResult{}, err
	}
	sender := user.ID(cmd.SenderID)
	if err := chat.EnsureWritable(sender); err != nil {
		return dto.SendMessageResult{}, err
	}

	now := h.now()
	msg := chat.AddMessage(domainchat.NewMessage{
		ID:       domainchat.MessageID(h.id()),
		Sender:   domainchat.UserSender(sender),
		Content:  cmd.Content,
		Type:     msgType,
		FileURL:  cmd.FileURL,
		FileName: cmd.FileName,
	}, now)
	rejected := domainchat.ContainsBlockedContent(cmd.Content)
	if rejected {
		chat.FlagMessage(msg.ID, sender, domainchat.FlagInappropriate, now)
		msg, _ = chat.Message(msg.ID)
	}
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return dto.SendMessageResult{}, err
	}
	if err := h.publish(ctx, chat); err != nil {
		return dto.SendMessageResult{}, err
	}
	if rejected {
		h.info(ctx, "message auto-flagged", "chat_id", chat.ID, "message_id", msg.ID, "sender_id", sender)
	} else {
		h.info(ctx, "message sent", "chat_id", chat.ID, "message_id", msg.ID, "sender_id", sender)
	}
	return dto.SendMessageResult{Message: dto.MapChatMessage(msg), Rejected: rejected}, nil
}

type MarkReadCommand struct {
	ChatID    string `validate:"required"`
	MessageID string `validate:"required"`
	ReaderID  string `validate:"required"`
}

func (c MarkReadCommand) Key() string    { return markReadKey }
func (c MarkReadCommand) Actor() user.ID { return user.ID(c.ReaderID) }

type MarkReadHandler struct {
	Base
}

func (h *MarkReadHandler) Handle(ctx context.Context, cmd MarkReadCommand) (dto.Ack, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.Ack{}, err
	}
	chat, err := loadForParticipant(ctx, unit, cmd.ChatID, cmd.ReaderID)
	if err != nil {
		return dto.Ack{}, err
	}
	if chat.MarkMessageAsRead(domainchat.MessageID(cmd.MessageID), user.ID(cmd.ReaderID), h.now()) {
		if err := unit.Chats().Save(ctx, chat); err != nil {
			return dto.Ack{}, err
		}
	}
	return dto.Ack{ChatID: string(chat.ID), Message: "Message marked as read"}, nil
}

type FlagMessageCommand struct {
	ChatID    string `validate:"required"`
	MessageID string `validate:"required"`
	UserID    string `validate:"required"`
	Reason    string
}

func (c FlagMessageCommand) Key() string    { return flagMessageKey }
func (c FlagMessageCommand) Actor() user.ID { return user.ID(c.UserID) }

type FlagMessageHandler struct {
	Base
}

func (h *FlagMessageHandler) Handle(ctx context.Context, cmd FlagMessageCommand) (dto.Ack, error) {
	reason, err := domainchat.ParseFlagReason(cmd.Reason)
	if err != nil {
		return dto.Ack{}, err
	}
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.Ack{}, err
	}
	chat, err := loadForParticipant(ctx, unit, cmd.ChatID, cmd.UserID)
	if err != nil {
		return dto.Ack{}, err
	}
	if chat.FlagMessage(domainchat.MessageID(cmd.MessageID), user.ID(cmd.UserID), reason, h.now()) {
		if err := unit.Chats().Save(ctx, chat); err != nil {
			return dto.Ack{}, err
		}
		if err := h.publish(ctx, chat); err != nil {
			return dto.Ack{}, err
		}
		h.info(ctx, "message flagged", "chat_id", chat.ID, "message_id", cmd.MessageID, "flagged_by", cmd.UserID, "reason", reason)
	}
	return dto.Ack{ChatID: string(chat.ID), Message: "Message flagged for moderation"}, nil
}

type DeleteMessageCommand struct {
	ChatID    string `validate:"required"`
	MessageID string `validate:"required"`
	UserID    string `validate:"required"`
	AsAdmin   bool
}

func (c DeleteMessageCommand) Key() string    { return deleteMessageKey }
func (c DeleteMessageCommand) Actor() user.ID { return user.ID(c.UserID) }

type DeleteMessageHandler struct {
	Base
}

// Handle soft-deletes a message. Senders delete their own messages; admins any message
// without being a participant.
func (h *DeleteMessageHandler) Handle(ctx context.Context, cmd DeleteMessageCommand) (dto.Ack, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.Ack{}, err
	}
	var chat *domainchat.Chat
	if cmd.AsAdmin {
		chat, err = unit.Chats().ByID(ctx, domainchat.ID(cmd.ChatID))
	} else {
		chat, err = loadForParticipant(ctx, unit, cmd.ChatID, cmd.UserID)
	}
	if err != nil {
		return dto.Ack{}, err
	}
	if err := chat.DeleteMessage(domainchat.MessageID(cmd.MessageID), user.ID(cmd.UserID), cmd.AsAdmin, h.now()); err != nil {
		return dto.Ack{}, err
	}
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return dto.Ack{}, err
	}
	h.info(ctx, "message deleted", "chat_id", chat.ID, "message_id", cmd.MessageID, "deleted_by", cmd.UserID)
	return dto.Ack{ChatID: string(chat.ID), Message: "Message deleted"}, nil
}
