package dto

import (
	"time"

	domainuser "skillswap/internal/domain/user"
)

type User struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsBanned  bool       `json:"is_banned"`
	BanReason string     `json:"ban_reason,omitempty"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
	BannedBy  string     `json:"banned_by,omitempty"`
}

func MapUser(u *domainuser.User) User {
	return User{
		ID:        string(u.ID),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		IsBanned:  u.IsBanned,
		BanReason: u.BanReason,
		BannedAt:  optionalTime(u.BannedAt),
		BannedBy:  string(u.BannedBy),
	}
}
