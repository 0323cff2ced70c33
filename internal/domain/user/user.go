package user

import (
	"context"
	"strings"
	"time"

	"skillswap/internal/domain/shared/events"
	"skillswap/internal/domain/shared/failure"
)

var (
	ErrIDRequired    = failure.Validation("user: id is required")
	ErrEmailRequired = failure.Validation("user: email is required")
	ErrNameRequired  = failure.Validation("user: name is required")
	ErrInvalidRole   = failure.Validation("user: invalid role")
	ErrReasonMissing = failure.Validation("user: ban reason is required")
	ErrAlreadyBanned = failure.InvalidState("user: already banned")
	ErrNotBanned     = failure.InvalidState("user: not banned")
	ErrNotFound      = failure.NotFound("user: not found")
)

type ID string

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        ID
	FirstName string
	LastName  string
	Email     string
	Role      Role
	IsBanned  bool
	BanReason string
	BannedAt  time.Time
	BannedBy  ID
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID        ID
	FirstName string
	LastName  string
	Email     string
	Role      Role
	CreatedAt time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	first := strings.TrimSpace(params.FirstName)
	if first == "" {
		return nil, ErrNameRequired
	}
	role, err := ParseRole(string(params.Role))
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &User{
		ID:        ID(id),
		FirstName: first,
		LastName:  strings.TrimSpace(params.LastName),
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ParseRole normalizes a role name; empty input means RoleUser.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Ban blocks the account platform-wide.
func (u *User) Ban(reason string, by ID, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonMissing
	}
	if u.IsBanned {
		return ErrAlreadyBanned
	}
	u.touch(now)
	u.IsBanned = true
	u.BanReason = reason
	u.BannedAt = u.UpdatedAt
	u.BannedBy = by
	u.Record(Banned{UserID: u.ID, Reason: reason, BannedBy: by, At: u.BannedAt})
	return nil
}

func (u *User) Unban(now time.Time) error {
	if !u.IsBanned {
		return ErrNotBanned
	}
	u.IsBanned = false
	u.BanReason = ""
	u.BannedAt = time.Time{}
	u.BannedBy = ""
	u.touch(now)
	return nil
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

type Banned struct {
	UserID   ID        `json:"user_id"`
	Reason   string    `json:"reason"`
	BannedBy ID        `json:"banned_by"`
	At       time.Time `json:"at"`
}

func (e Banned) EventName() string     { return "user.banned" }
func (e Banned) AggregateID() string   { return string(e.UserID) }
func (e Banned) OccurredAt() time.Time { return e.At }
