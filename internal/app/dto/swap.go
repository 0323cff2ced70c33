package dto

import (
	"time"

	domainswap "skillswap/internal/domain/swap"
)

type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Rating struct {
	Score       int       `json:"score"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Swap struct {
	ID              string     `json:"id"`
	Requester       string     `json:"requester"`
	Recipient       string     `json:"recipient"`
	RequestedSkill  Skill      `json:"requested_skill"`
	OfferedSkill    Skill      `json:"offered_skill"`
	Status          string     `json:"status"`
	Message         string     `json:"message,omitempty"`
	ScheduledDate   *time.Time `json:"scheduled_date,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RequesterRating *Rating    `json:"requester_rating,omitempty"`
	RecipientRating *Rating    `json:"recipient_rating,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type SwapList struct {
	Items []Swap `json:"items"`
}

func MapSwap(s *domainswap.Swap) Swap {
	return Swap{
		ID:              string(s.ID),
		Requester:       string(s.Requester),
		Recipient:       string(s.Recipient),
		RequestedSkill:  Skill{Name: s.RequestedSkill.Name, Description: s.RequestedSkill.Description},
		OfferedSkill:    Skill{Name: s.OfferedSkill.Name, Description: s.OfferedSkill.Description},
		Status:          string(s.Status),
		Message:         s.Message,
		ScheduledDate:   optionalTime(s.ScheduledDate),
		CompletedAt:     optionalTime(s.CompletedAt),
		RequesterRating: mapRating(s.RequesterRating),
		RecipientRating: mapRating(s.RecipientRating),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func mapRating(r *domainswap.Rating) *Rating {
	if r == nil {
		return nil
	}
	return &Rating{Score: r.Score, Comment: r.Comment, SubmittedAt: r.SubmittedAt}
}
