package chat

import (
	"strings"
	"time"

	"skillswap/internal/domain/user"
)

type MessageID string

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageImage  MessageType = "image"
	MessageSystem MessageType = "system"
)

func ParseMessageType(raw string) (MessageType, error) {
	switch MessageType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MessageText:
		return MessageText, nil
	case MessageFile:
		return MessageFile, nil
	case MessageImage:
		return MessageImage, nil
	case MessageSystem:
		return MessageSystem, nil
	default:
		return "", ErrInvalidMessageType
	}
}

type FlagReason string

const (
	FlagSpam          FlagReason = "spam"
	FlagInappropriate FlagReason = "inappropriate"
	FlagHarassment    FlagReason = "harassment"
	FlagOther         FlagReason = "other"
)

func ParseFlagReason(raw string) (FlagReason, error) {
	switch FlagReason(strings.ToLower(strings.TrimSpace(raw))) {
	case FlagSpam:
		return FlagSpam, nil
	case FlagInappropriate:
		return FlagInappropriate, nil
	case FlagHarassment:
		return FlagHarassment, nil
	case FlagOther:
		return FlagOther, nil
	case "":
		return "", ErrReasonRequired
	default:
		return "", ErrInvalidFlagReason
	}
}

// SystemSenderID is how the system actor is spelled in storage and views.
const SystemSenderID = "system"

// Sender is either a user or the system actor; the two never share an id space.
type Sender struct {
	user   user.ID
	system bool
}

func UserSender(id user.ID) Sender { return Sender{user: id} }

func SystemSender() Sender { return Sender{system: true} }

// ParseSender restores a sender from its stored form.
func ParseSender(raw string) Sender {
	if raw == SystemSenderID {
		return SystemSender()
	}
	return UserSender(user.ID(raw))
}

func (s Sender) IsSystem() bool { return s.system }

// User returns the user id when the sender is a person.
func (s Sender) User() (user.ID, bool) {
	if s.system || s.user == "" {
		return "", false
	}
	return s.user, true
}

func (s Sender) Is(id user.ID) bool {
	uid, ok := s.User()
	return ok && uid == id
}

func (s Sender) String() string {
	if s.system {
		return SystemSenderID
	}
	return string(s.user)
}

type Message struct {
	ID         MessageID
	Sender     Sender
	Content    string
	Type       MessageType
	FileURL    string
	FileName   string
	IsRead     bool
	ReadAt     time.Time
	IsFlagged  bool
	FlaggedBy  user.ID
	FlagReason FlagReason
	FlaggedAt  time.Time
	IsDeleted  bool
	DeletedBy  user.ID
	DeletedAt  time.Time
	CreatedAt  time.Time
}

type NewMessage struct {
	ID       MessageID
	Sender   Sender
	Content  string
	Type     MessageType
	FileURL  string
	FileName string
}

// AddMessage appends unconditionally; participant, activity and content checks
// belong to the caller.
func (c *Chat) AddMessage(m NewMessage, now time.Time) Message {
	c.touch(now)
	msgType := m.Type
	if msgType == "" {
		msgType = MessageText
	}
	msg := Message{
		ID:        m.ID,
		Sender:    m.Sender,
		Content:   m.Content,
		Type:      msgType,
		FileURL:   m.FileURL,
		FileName:  m.FileName,
		CreatedAt: c.UpdatedAt,
	}
	c.Messages = append(c.Messages, msg)
	c.Stats.TotalMessages++
	c.Stats.LastActivity = c.UpdatedAt
	return msg
}

func (c *Chat) postSystemMessage(id MessageID, content string, now time.Time) Message {
	return c.AddMessage(NewMessage{ID: id, Sender: SystemSender(), Content: content, Type: MessageSystem}, now)
}

func (c *Chat) Message(id MessageID) (Message, bool) {
	if idx := c.messageIndex(id); idx >= 0 {
		return c.Messages[idx], true
	}
	return Message{}, false
}

// MarkMessageAsRead is a no-op for unknown or already read messages.
func (c *Chat) MarkMessageAsRead(id MessageID, reader user.ID, now time.Time) bool {
	idx := c.messageIndex(id)
	if idx < 0 || c.Messages[idx].IsRead {
		return false
	}
	c.touch(now)
	c.Messages[idx].IsRead = true
	c.Messages[idx].ReadAt = c.UpdatedAt
	return true
}

// FlagMessage overwrites any previous flag on the message. Unknown ids are ignored.
func (c *Chat) FlagMessage(id MessageID, by user.ID, reason FlagReason, now time.Time) bool {
	idx := c.messageIndex(id)
	if idx < 0 {
		return false
	}
	c.touch(now)
	msg := &c.Messages[idx]
	msg.IsFlagged = true
	msg.FlaggedBy = by
	msg.FlagReason = reason
	msg.FlaggedAt = c.UpdatedAt
	c.Record(MessageFlagged{ChatID: c.ID, MessageID: id, FlaggedBy: by, Reason: reason, At: c.UpdatedAt})
	return true
}

// DeleteMessage soft-deletes; the entry stays in place and keeps counting in stats.
func (c *Chat) DeleteMessage(id MessageID, by user.ID, asAdmin bool, now time.Time) error {
	idx := c.messageIndex(id)
	if idx < 0 {
		return ErrMessageNotFound
	}
	msg := &c.Messages[idx]
	if !asAdmin && !msg.Sender.Is(by) {
		return ErrDeleteForbidden
	}
	if msg.IsDeleted {
		return nil
	}
	c.touch(now)
	msg.IsDeleted = true
	msg.DeletedBy = by
	msg.DeletedAt = c.UpdatedAt
	return nil
}

func (c *Chat) FlaggedMessages() []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.IsFlagged {
			out = append(out, m)
		}
	}
	return out
}

// UnreadCount counts unread, undeleted messages the viewer did not send.
func (c *Chat) UnreadCount(viewer user.ID) int {
	n := 0
	for _, m := range c.Messages {
		if m.IsRead || m.IsDeleted || m.Sender.Is(viewer) {
			continue
		}
		n++
	}
	return n
}

func (c *Chat) messageIndex(id MessageID) int {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return i
		}
	}
	return -1
}
