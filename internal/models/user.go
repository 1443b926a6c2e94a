package models

import (
	"time"
)

// Invite statuses. A user's invite becomes active on their first
// completed deposit and never flips back.
const (
	InviteStatusInactive = "inactive"
	InviteStatusActive   = "active"
)

// User is a wallet account. The ID is issued by the front-end auth
// provider, so it is a string key rather than an autoincrement.
type User struct {
	ID             string  `gorm:"primaryKey" json:"id"`
	Name           string  `json:"name"`
	Email          string  `gorm:"index" json:"email"`
	Balance        float64 `gorm:"not null;default:0" json:"balance"`
	TotalEarned    float64 `gorm:"not null;default:0" json:"totalEarned"`
	TotalWithdrawn float64 `gorm:"not null;default:0" json:"totalWithdrawn"`
	Spins          int     `gorm:"not null;default:0" json:"spins"`
	InvitedBy      *string `gorm:"index" json:"invitedBy,omitempty"`
	InviteStatus   string  `gorm:"not null;default:'inactive'" json:"inviteStatus"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
