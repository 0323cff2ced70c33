package chats

import (
	"context"
	"fmt"
	"strings"

	"skillswap/internal/app/dto"
	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/user"
)

const (
	startSessionKey = "chats.sessions.start"
	endSessionKey   = "chats.sessions.end"
)

type StartSessionCommand struct {
	ChatID string `validate:"required"`
	UserID string `validate:"required"`
	Topic  string
}

func (c StartSessionCommand) Key() string    { return startSessionKey }
func (c StartSessionCommand) Actor() user.ID { return user.ID(c.UserID) }

type StartSessionHandler struct {
	Base
}

func (h *StartSessionHandler) Handle(ctx context.Context, cmd StartSessionCommand) (dto.StudySession, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.StudySession{}, err
	}
	chat, err := unit.Chats().ByID(ctx, domainchat.ID(cmd.ChatID))
	if err != nil {
		return dto.StudySession{}, err
	}
	initiator := user.ID(cmd.UserID)
	if err := chat.EnsureWritable(initiator); err != nil {
		return dto.StudySession{}, err
	}
	now := h.now()
	session, err := chat.StartStudySession(domainchat.SessionID(h.id()), initiator, cmd.Topic, now)
	if err != nil {
		return dto.StudySession{}, err
	}
	chat.AddMessage(domainchat.NewMessage{
		ID:      domainchat.MessageID(h.id()),
		Sender:  domainchat.SystemSender(),
		Content: "Study session started: " + session.Topic,
		Type:    domainchat.MessageSystem,
	}, now)
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return dto.StudySession{}, err
	}
	h.info(ctx, "study session started", "chat_id", chat.ID, "session_id", session.ID, "initiated_by", initiator)
	return dto.MapStudySession(session), nil
}

type EndSessionCommand struct {
	ChatID    string `validate:"required"`
	SessionID string `validate:"required"`
	UserID    string `validate:"required"`
	Notes     string `validate:"max=2000"`
}

func (c EndSessionCommand) Key() string    { return endSessionKey }
func (c EndSessionCommand) Actor() user.ID { return user.ID(c.UserID) }

type EndSessionHandler struct {
	Base
}

func (h *EndSessionHandler) Handle(ctx context.Context, cmd EndSessionCommand) (dto.StudySession, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return dto.StudySession{}, err
	}
	chat, err := loadForParticipant(ctx, unit, cmd.ChatID, cmd.UserID)
	if err != nil {
		return dto.StudySession{}, err
	}
	now := h.now()
	notes := strings.TrimSpace(cmd.Notes)
	session, err := chat.EndStudySession(domainchat.SessionID(cmd.SessionID), notes, now)
	if err != nil {
		return dto.StudySession{}, err
	}
	chat.AddMessage(domainchat.NewMessage{
		ID:      domainchat.MessageID(h.id()),
		Sender:  domainchat.SystemSender(),
		Content: sessionEndedNotice(session),
		Type:    domainchat.MessageSystem,
	}, now)
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return dto.StudySession{}, err
	}
	if err := h.publish(ctx, chat); err != nil {
		return dto.StudySession{}, err
	}
	h.info(ctx, "study session ended", "chat_id", chat.ID, "session_id", session.ID, "duration_minutes", session.Duration)
	return dto.MapStudySession(session), nil
}

func sessionEndedNotice(s domainchat.StudySession) string {
	notes := s.Notes
	if notes == "" {
		notes = "No notes"
	}
	return fmt.Sprintf("Study session ended. Duration: %d minutes. Notes: %s", s.Duration, notes)
}
