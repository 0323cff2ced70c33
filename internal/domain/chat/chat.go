package chat

import (
	"context"
	"time"

	"skillswap/internal/domain/shared/events"
	"skillswap/internal/domain/shared/failure"
	"skillswap/internal/domain/swap"
	"skillswap/internal/domain/user"
)

var (
	ErrNotFound            = failure.NotFound("chat: not found")
	ErrMessageNotFound     = failure.NotFound("chat: message not found")
	ErrSessionNotFound     = failure.NotFound("chat: study session not found")
	ErrWarningNotFound     = failure.NotFound("chat: warning not found")
	ErrBanTargetMissing    = failure.NotFound("chat: user is not a participant of this chat")
	ErrNotParticipant      = failure.Forbidden("chat: access denied")
	ErrInactive            = failure.InvalidState("chat: chat is not active")
	ErrSessionActive       = failure.InvalidState("chat: there is already an active study session")
	ErrSessionEnded        = failure.InvalidState("chat: study session already ended")
	ErrContentFiltered     = failure.InvalidState("chat: message contains inappropriate content and has been flagged")
	ErrParticipantsInvalid = failure.Validation("chat: exactly two distinct participants required")
	ErrSwapRequired        = failure.Validation("chat: swap id is required")
	ErrContentRequired     = failure.Validation("chat: message content is required")
	ErrContentTooLong      = failure.Validation("chat: message content is too long")
	ErrTopicRequired       = failure.Validation("chat: study topic is required")
	ErrReasonRequired      = failure.Validation("chat: reason is required")
	ErrInvalidFlagReason   = failure.Validation("chat: invalid flag reason")
	ErrInvalidMessageType  = failure.Validation("chat: invalid message type")
	ErrDeleteForbidden     = failure.Forbidden("chat: only the sender can delete a message")
)

type ID string

type Guidelines struct {
	Agreed       bool
	AgreedAt     time.Time
	LastReminder time.Time
}

// Stats is maintained on every mutation rather than derived from the nested lists.
type Stats struct {
	TotalMessages  int
	TotalStudyTime int
	LastActivity   time.Time
}

// Chat is the aggregate attached to an accepted swap. Messages, study sessions and
// warnings are owned by it and never addressed outside of it.
type Chat struct {
	ID            ID
	SwapID        swap.ID
	Participants  []user.ID
	Messages      []Message
	StudySessions []StudySession
	Guidelines    Guidelines
	Warnings      []Warning
	Stats         Stats
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Chat, error)
	BySwapID(ctx context.Context, swapID swap.ID) (*Chat, error)
	// ListByParticipant returns active chats of the user, most recent activity first.
	ListByParticipant(ctx context.Context, userID user.ID) ([]*Chat, error)
	// ListFlagged pages over chats holding at least one flagged message and reports
	// how many such chats exist.
	ListFlagged(ctx context.Context, page Page) ([]*Chat, int, error)
	Save(ctx context.Context, chat *Chat) error
}

type Page struct {
	Number int
	Limit  int
}

// Normalized clamps the page to 1-based numbering and a positive limit.
func (p Page) Normalized(defaultLimit int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

type OpenParams struct {
	ID           ID
	SwapID       swap.ID
	Participants []user.ID
	Now          time.Time
}

func Open(params OpenParams) (*Chat, error) {
	if params.SwapID == "" {
		return nil, ErrSwapRequired
	}
	if len(params.Participants) != 2 || params.Participants[0] == "" || params.Participants[1] == "" ||
		params.Participants[0] == params.Participants[1] {
		return nil, ErrParticipantsInvalid
	}
	now := params.Now.UTC()
	c := &Chat{
		ID:           params.ID,
		SwapID:       params.SwapID,
		Participants: append([]user.ID(nil), params.Participants...),
		IsActive:     true,
		Stats:        Stats{LastActivity: now},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.Record(Opened{ChatID: c.ID, SwapID: c.SwapID, Participants: c.Participants, At: now})
	return c, nil
}

func (c *Chat) IsParticipant(id user.ID) bool {
	if id == "" {
		return false
	}
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// EnsureWritable is the gate every participant-initiated mutation passes.
func (c *Chat) EnsureWritable(actor user.ID) error {
	if !c.IsParticipant(actor) {
		return ErrNotParticipant
	}
	if !c.IsActive {
		return ErrInactive
	}
	return nil
}

func (c *Chat) AgreeToGuidelines(now time.Time) {
	c.touch(now)
	c.Guidelines.Agreed = true
	c.Guidelines.AgreedAt = c.UpdatedAt
}

func (c *Chat) RemindGuidelines(now time.Time) {
	c.touch(now)
	c.Guidelines.LastReminder = c.UpdatedAt
}

func (c *Chat) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	c.UpdatedAt = now.UTC()
}
