package chat

import (
	"time"

	"skillswap/internal/domain/swap"
	"skillswap/internal/domain/user"
)

type Opened struct {
	ChatID       ID        `json:"chat_id"`
	SwapID       swap.ID   `json:"swap_id"`
	Participants []user.ID `json:"participants"`
	At           time.Time `json:"at"`
}

func (e Opened) EventName() string     { return "chat.opened" }
func (e Opened) AggregateID() string   { return string(e.ChatID) }
func (e Opened) OccurredAt() time.Time { return e.At }

type MessageFlagged struct {
	ChatID    ID         `json:"chat_id"`
	MessageID MessageID  `json:"message_id"`
	FlaggedBy user.ID    `json:"flagged_by"`
	Reason    FlagReason `json:"reason"`
	At        time.Time  `json:"at"`
}

func (e MessageFlagged) EventName() string     { return "chat.message_flagged" }
func (e MessageFlagged) AggregateID() string   { return string(e.ChatID) }
func (e MessageFlagged) OccurredAt() time.Time { return e.At }

type ParticipantBanned struct {
	ChatID    ID        `json:"chat_id"`
	UserID    user.ID   `json:"user_id"`
	Reason    string    `json:"reason"`
	IssuedBy  user.ID   `json:"issued_by"`
	Escalated bool      `json:"escalated"`
	At        time.Time `json:"at"`
}

func (e ParticipantBanned) EventName() string     { return "chat.user_banned" }
func (e ParticipantBanned) AggregateID() string   { return string(e.ChatID) }
func (e ParticipantBanned) OccurredAt() time.Time { return e.At }

type StudySessionEnded struct {
	ChatID    ID        `json:"chat_id"`
	SessionID SessionID `json:"session_id"`
	Duration  int       `json:"duration_minutes"`
	At        time.Time `json:"at"`
}

func (e StudySessionEnded) EventName() string     { return "chat.session_ended" }
func (e StudySessionEnded) AggregateID() string   { return string(e.ChatID) }
func (e StudySessionEnded) OccurredAt() time.Time { return e.At }
