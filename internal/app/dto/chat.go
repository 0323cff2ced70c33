package dto

import (
	"time"

	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/user"
)

// DeletedMessagePlaceholder replaces the content of soft-deleted messages in views.
const DeletedMessagePlaceholder = "This message was deleted"

type ChatMessage struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"sender_id"`
	System     bool       `json:"system,omitempty"`
	Content    string     `json:"content"`
	Type       string     `json:"message_type"`
	FileURL    string     `json:"file_url,omitempty"`
	FileName   string     `json:"file_name,omitempty"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	IsFlagged  bool       `json:"is_flagged"`
	FlagReason string     `json:"flag_reason,omitempty"`
	IsDeleted  bool       `json:"is_deleted"`
	CreatedAt  time.Time  `json:"created_at"`
}

type StudySession struct {
	ID          string     `json:"id"`
	Topic       string     `json:"topic"`
	Notes       string     `json:"notes,omitempty"`
	InitiatedBy string     `json:"initiated_by"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Duration    int        `json:"duration_minutes"`
	Active      bool       `json:"active"`
}

type Warning struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Reason       string    `json:"reason"`
	IssuedBy     string    `json:"issued_by"`
	IssuedAt     time.Time `json:"issued_at"`
	Acknowledged bool      `json:"acknowledged"`
}

type GuidelinesState struct {
	Agreed       bool       `json:"agreed_to_guidelines"`
	AgreedAt     *time.Time `json:"agreed_at,omitempty"`
	LastReminder *time.Time `json:"last_reminder,omitempty"`
}

type ChatStats struct {
	TotalMessages  int       `json:"total_messages"`
	TotalStudyTime int       `json:"total_study_time"`
	LastActivity   time.Time `json:"last_activity"`
}

// ChatSummary is the list entry shown to a participant.
type ChatSummary struct {
	ID           string       `json:"id"`
	SwapID       string       `json:"swap_id"`
	Participants []string     `json:"participants"`
	IsActive     bool         `json:"is_active"`
	UnreadCount  int          `json:"unread_count"`
	LastMessage  *ChatMessage `json:"last_message,omitempty"`
	Stats        ChatStats    `json:"stats"`
}

type ChatList struct {
	Items []ChatSummary `json:"items"`
}

type ChatDetail struct {
	ID            string          `json:"id"`
	SwapID        string          `json:"swap_id"`
	Participants  []string        `json:"participants"`
	Messages      []ChatMessage   `json:"messages"`
	StudySessions []StudySession  `json:"study_sessions"`
	Guidelines    GuidelinesState `json:"guidelines"`
	Warnings      []Warning       `json:"warnings"`
	Stats         ChatStats       `json:"stats"`
	IsActive      bool            `json:"is_active"`
	UnreadCount   int             `json:"unread_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SendMessageResult carries the stored message. Rejected is set when the content
// filter flagged it; the message is stored regardless.
type SendMessageResult struct {
	Message  ChatMessage `json:"message"`
	Rejected bool        `json:"rejected"`
}

type Ack struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type GuidelinesText struct {
	Title        string   `json:"title"`
	Rules        []string `json:"rules"`
	Consequences []string `json:"consequences"`
}

type FlaggedMessage struct {
	ChatID       string    `json:"chat_id"`
	MessageID    string    `json:"message_id"`
	Content      string    `json:"content"`
	SenderID     string    `json:"sender_id"`
	FlaggedBy    string    `json:"flagged_by"`
	FlagReason   string    `json:"flag_reason"`
	FlaggedAt    time.Time `json:"flagged_at"`
	Participants []string  `json:"participants"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type FlaggedMessageList struct {
	Items      []FlaggedMessage `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

type BanResult struct {
	ChatID         string  `json:"chat_id"`
	UserID         string  `json:"user_id"`
	Warning        Warning `json:"warning"`
	PlatformBanned bool    `json:"platform_banned"`
}

func MapChatMessage(m domainchat.Message) ChatMessage {
	view := ChatMessage{
		ID:         string(m.ID),
		SenderID:   m.Sender.String(),
		System:     m.Sender.IsSystem(),
		Content:    m.Content,
		Type:       string(m.Type),
		FileURL:    m.FileURL,
		FileName:   m.FileName,
		IsRead:     m.IsRead,
		ReadAt:     optionalTime(m.ReadAt),
		IsFlagged:  m.IsFlagged,
		FlagReason: string(m.FlagReason),
		IsDeleted:  m.IsDeleted,
		CreatedAt:  m.CreatedAt,
	}
	if m.IsDeleted {
		view.Content = DeletedMessagePlaceholder
		view.FileURL = ""
		view.FileName = ""
	}
	return view
}

func MapStudySession(s domainchat.StudySession) StudySession {
	return StudySession{
		ID:          string(s.ID),
		Topic:       s.Topic,
		Notes:       s.Notes,
		InitiatedBy: string(s.InitiatedBy),
		StartTime:   s.StartTime,
		EndTime:     optionalTime(s.EndTime),
		Duration:    s.Duration,
		Active:      s.Active(),
	}
}

func MapWarning(w domainchat.Warning) Warning {
	return Warning{
		ID:           string(w.ID),
		UserID:       string(w.UserID),
		Reason:       w.Reason,
		IssuedBy:     string(w.IssuedBy),
		IssuedAt:     w.IssuedAt,
		Acknowledged: w.Acknowledged,
	}
}

func MapChatSummary(c *domainchat.Chat, viewer user.ID) ChatSummary {
	summary := ChatSummary{
		ID:           string(c.ID),
		SwapID:       string(c.SwapID),
		Participants: userIDs(c.Participants),
		IsActive:     c.IsActive,
		UnreadCount:  c.UnreadCount(viewer),
		Stats:        mapStats(c.Stats),
	}
	if n := len(c.Messages); n > 0 {
		last := MapChatMessage(c.Messages[n-1])
		summary.LastMessage = &last
	}
	return summary
}

// MapChatDetail renders the full chat. Warnings are limited to those addressed to
// the viewer unless all is set.
func MapChatDetail(c *domainchat.Chat, viewer user.ID, all bool) ChatDetail {
	detail := ChatDetail{
		ID:            string(c.ID),
		SwapID:        string(c.SwapID),
		Participants:  userIDs(c.Participants),
		Messages:      make([]ChatMessage, 0, len(c.Messages)),
		StudySessions: make([]StudySession, 0, len(c.StudySessions)),
		Warnings:      []Warning{},
		Guidelines: GuidelinesState{
			Agreed:       c.Guidelines.Agreed,
			AgreedAt:     optionalTime(c.Guidelines.AgreedAt),
			LastReminder: optionalTime(c.Guidelines.LastReminder),
		},
		Stats:       mapStats(c.Stats),
		IsActive:    c.IsActive,
		UnreadCount: c.UnreadCount(viewer),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, m := range c.Messages {
		detail.Messages = append(detail.Messages, MapChatMessage(m))
	}
	for _, s := range c.StudySessions {
		detail.StudySessions = append(detail.StudySessions, MapStudySession(s))
	}
	for _, w := range c.Warnings {
		if all || w.UserID == viewer {
			detail.Warnings = append(detail.Warnings, MapWarning(w))
		}
	}
	return detail
}

// MapFlaggedMessages flattens the flagged messages of each chat, in chat order.
func MapFlaggedMessages(chats []*domainchat.Chat) []FlaggedMessage {
	items := make([]FlaggedMessage, 0)
	for _, c := range chats {
		participants := userIDs(c.Participants)
		for _, m := range c.FlaggedMessages() {
			items = append(items, FlaggedMessage{
				ChatID:       string(c.ID),
				MessageID:    string(m.ID),
				Content:      m.Content,
				SenderID:     m.Sender.String(),
				FlaggedBy:    string(m.FlaggedBy),
				FlagReason:   string(m.FlagReason),
				FlaggedAt:    m.FlaggedAt,
				Participants: participants,
			})
		}
	}
	return items
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func MapGuidelinesText(g domainchat.GuidelinesText) GuidelinesText {
	return GuidelinesText{
		Title:        g.Title,
		Rules:        append([]string(nil), g.Rules...),
		Consequences: append([]string(nil), g.Consequences...),
	}
}

func mapStats(s domainchat.Stats) ChatStats {
	return ChatStats{TotalMessages: s.TotalMessages, TotalStudyTime: s.TotalStudyTime, LastActivity: s.LastActivity}
}

func userIDs(ids []user.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
