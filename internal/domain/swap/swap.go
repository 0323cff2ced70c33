package swap

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"skillswap/internal/domain/shared/events"
	"skillswap/internal/domain/shared/failure"
	"skillswap/internal/domain/user"
)

const (
	maxSkillDescription = 200
	maxMessage          = 500
	maxRatingComment    = 300
)

var (
	ErrNotFound          = failure.NotFound("swap: not found")
	ErrInvalidState      = failure.InvalidState("swap: invalid state transition")
	ErrNotParticipant    = failure.Forbidden("swap: user is not a party of the swap")
	ErrNotRecipient      = failure.Forbidden("swap: only the recipient can answer a request")
	ErrSelfSwap          = failure.Validation("swap: cannot swap with yourself")
	ErrSkillRequired     = failure.Validation("swap: skill name is required")
	ErrDescriptionLength = failure.Validation("swap: skill description is too long")
	ErrMessageLength     = failure.Validation("swap: message is too long")
	ErrInvalidRating     = failure.Validation("swap: rating must be between 1 and 5")
	ErrCommentLength     = failure.Validation("swap: rating comment is too long")
	ErrAlreadyRated      = failure.InvalidState("swap: rating already submitted")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Skill struct {
	Name        string
	Description string
}

type Rating struct {
	Score       int
	Comment     string
	SubmittedAt time.Time
}

type Swap struct {
	ID              ID
	Requester       user.ID
	Recipient       user.ID
	RequestedSkill  Skill
	OfferedSkill    Skill
	Status          Status
	Message         string
	ScheduledDate   time.Time
	CompletedAt     time.Time
	RequesterRating *Rating
	RecipientRating *Rating
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Swap, error)
	Save(ctx context.Context, swap *Swap) error
	ListByUser(ctx context.Context, userID user.ID) ([]*Swap, error)
}

type CreateParams struct {
	ID             ID
	Requester      user.ID
	Recipient      user.ID
	RequestedSkill Skill
	OfferedSkill   Skill
	Message        string
	ScheduledDate  time.Time
	CreatedAt      time.Time
}

func NewSwap(params CreateParams) (*Swap, error) {
	if params.Requester == "" || params.Recipient == "" {
		return nil, ErrNotParticipant
	}
	if params.Requester == params.Recipient {
		return nil, ErrSelfSwap
	}
	requested, err := normalizeSkill(params.RequestedSkill)
	if err != nil {
		return nil, err
	}
	offered, err := normalizeSkill(params.OfferedSkill)
	if err != nil {
		return nil, err
	}
	message := strings.TrimSpace(params.Message)
	if utf8.RuneCountInString(message) > maxMessage {
		return nil, ErrMessageLength
	}
	now := params.CreatedAt.UTC()
	s := &Swap{
		ID:             params.ID,
		Requester:      params.Requester,
		Recipient:      params.Recipient,
		RequestedSkill: requested,
		OfferedSkill:   offered,
		Status:         StatusPending,
		Message:        message,
		ScheduledDate:  params.ScheduledDate.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Record(Requested{SwapID: s.ID, Requester: s.Requester, Recipient: s.Recipient, At: now})
	return s, nil
}

func (s *Swap) IsParticipant(id user.ID) bool {
	return id != "" && (id == s.Requester || id == s.Recipient)
}

// Participants returns the two parties, requester first.
func (s *Swap) Participants() []user.ID {
	return []user.ID{s.Requester, s.Recipient}
}

func (s *Swap) Accept(by user.ID, now time.Time) error {
	if by != s.Recipient {
		return ErrNotRecipient
	}
	if s.Status != StatusPending {
		return ErrInvalidState
	}
	s.Status = StatusAccepted
	s.UpdatedAt = now.UTC()
	s.Record(Accepted{SwapID: s.ID, Requester: s.Requester, Recipient: s.Recipient, At: s.UpdatedAt})
	return nil
}

func (s *Swap) Reject(by user.ID, now time.Time) error {
	if by != s.Recipient {
		return ErrNotRecipient
	}
	if s.Status != StatusPending {
		return ErrInvalidState
	}
	s.Status = StatusRejected
	s.UpdatedAt = now.UTC()
	s.Record(Rejected{SwapID: s.ID, At: s.UpdatedAt})
	return nil
}

func (s *Swap) Complete(by user.ID, now time.Time) error {
	if !s.IsParticipant(by) {
		return ErrNotParticipant
	}
	if s.Status != StatusAccepted {
		return ErrInvalidState
	}
	s.Status = StatusCompleted
	s.UpdatedAt = now.UTC()
	if s.CompletedAt.IsZero() {
		s.CompletedAt = s.UpdatedAt
	}
	s.Record(Completed{SwapID: s.ID, At: s.UpdatedAt})
	return nil
}

func (s *Swap) Cancel(by user.ID, now time.Time) error {
	if !s.IsParticipant(by) {
		return ErrNotParticipant
	}
	switch s.Status {
	case StatusPending, StatusAccepted:
	default:
		return ErrInvalidState
	}
	s.Status = StatusCancelled
	s.UpdatedAt = now.UTC()
	s.Record(Cancelled{SwapID: s.ID, CancelledBy: by, At: s.UpdatedAt})
	return nil
}

// Rate stores the rating the given party submits for the exchange. Each side rates once.
func (s *Swap) Rate(by user.ID, score int, comment string, now time.Time) error {
	if !s.IsParticipant(by) {
		return ErrNotParticipant
	}
	if s.Status != StatusCompleted {
		return ErrInvalidState
	}
	if score < 1 || score > 5 {
		return ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxRatingComment {
		return ErrCommentLength
	}
	slot := &s.RecipientRating
	if by == s.Requester {
		slot = &s.RequesterRating
	}
	if *slot != nil {
		return ErrAlreadyRated
	}
	s.UpdatedAt = now.UTC()
	*slot = &Rating{Score: score, Comment: comment, SubmittedAt: s.UpdatedAt}
	return nil
}

func normalizeSkill(skill Skill) (Skill, error) {
	skill.Name = strings.TrimSpace(skill.Name)
	skill.Description = strings.TrimSpace(skill.Description)
	if skill.Name == "" {
		return Skill{}, ErrSkillRequired
	}
	if utf8.RuneCountInString(skill.Description) > maxSkillDescription {
		return Skill{}, ErrDescriptionLength
	}
	return skill, nil
}
