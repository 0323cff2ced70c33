package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"skillswap/internal/domain/user"
)

// DefaultMaxContentLength bounds message content.
const DefaultMaxContentLength = 1000

var blockedKeywords = []string{"spam", "inappropriate", "harassment"}

// escalationMarkers promote a chat ban to a platform ban. Matched case-sensitively
// against the raw reason text.
var escalationMarkers = []string{"severe", "harassment"}

// ContainsBlockedContent is a case-insensitive substring match against the keyword list.
func ContainsBlockedContent(content string) bool {
	lower := strings.ToLower(content)
	for _, word := range blockedKeywords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// RequiresPlatformBan reports whether a chat ban reason escalates to an account ban.
func RequiresPlatformBan(reason string) bool {
	for _, marker := range escalationMarkers {
		if strings.Contains(reason, marker) {
			return true
		}
	}
	return false
}

func PlatformBanReason(reason string) string {
	return "Chat violation: " + reason
}

// ValidateContent rejects blank content and content above max runes (0 means default).
func ValidateContent(content string, max int) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentRequired
	}
	if max <= 0 {
		max = DefaultMaxContentLength
	}
	if utf8.RuneCountInString(content) > max {
		return ErrContentTooLong
	}
	return nil
}

type WarningID string

type Warning struct {
	ID           WarningID
	UserID       user.ID
	Reason       string
	IssuedBy     user.ID
	IssuedAt     time.Time
	Acknowledged bool
}

func (c *Chat) AddWarning(id WarningID, userID user.ID, reason string, issuedBy user.ID, now time.Time) (Warning, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Warning{}, ErrReasonRequired
	}
	c.touch(now)
	w := Warning{
		ID:       id,
		UserID:   userID,
		Reason:   reason,
		IssuedBy: issuedBy,
		IssuedAt: c.UpdatedAt,
	}
	c.Warnings = append(c.Warnings, w)
	return w, nil
}

func (c *Chat) AcknowledgeWarning(id WarningID, userID user.ID, now time.Time) error {
	for i := range c.Warnings {
		w := &c.Warnings[i]
		if w.ID != id {
			continue
		}
		if w.UserID != userID {
			return ErrNotParticipant
		}
		if !w.Acknowledged {
			c.touch(now)
			w.Acknowledged = true
		}
		return nil
	}
	return ErrWarningNotFound
}

func (c *Chat) WarningsFor(userID user.ID) []Warning {
	var out []Warning
	for _, w := range c.Warnings {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out
}

// RemoveParticipant drops the user from the participant list.
func (c *Chat) RemoveParticipant(id user.ID) bool {
	kept := make([]user.ID, 0, len(c.Participants))
	removed := false
	for _, p := range c.Participants {
		if p == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	c.Participants = kept
	return removed
}

func (c *Chat) Deactivate(now time.Time) {
	c.touch(now)
	c.IsActive = false
}

type BanParams struct {
	UserID    user.ID
	Reason    string
	IssuedBy  user.ID
	WarningID WarningID
	NoticeID  MessageID
	Now       time.Time
}

type BanOutcome struct {
	Warning Warning
	Notice  Message
	// Escalate tells the caller the account itself must be banned.
	Escalate bool
}

// BanParticipant warns the user, removes them, deactivates the chat and posts one
// system notice. The user must still be a participant.
func (c *Chat) BanParticipant(params BanParams) (BanOutcome, error) {
	if strings.TrimSpace(params.Reason) == "" {
		return BanOutcome{}, ErrReasonRequired
	}
	if !c.IsParticipant(params.UserID) {
		return BanOutcome{}, ErrBanTargetMissing
	}
	warning, err := c.AddWarning(params.WarningID, params.UserID, params.Reason, params.IssuedBy, params.Now)
	if err != nil {
		return BanOutcome{}, err
	}
	c.RemoveParticipant(params.UserID)
	c.Deactivate(params.Now)
	notice := c.postSystemMessage(params.NoticeID, "User has been banned from this chat. Reason: "+params.Reason, params.Now)
	escalate := RequiresPlatformBan(params.Reason)
	c.Record(ParticipantBanned{
		ChatID:    c.ID,
		UserID:    params.UserID,
		Reason:    params.Reason,
		IssuedBy:  params.IssuedBy,
		Escalated: escalate,
		At:        c.UpdatedAt,
	})
	return BanOutcome{Warning: warning, Notice: notice, Escalate: escalate}, nil
}
