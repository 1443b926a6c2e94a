package models

import (
	"time"
)

// Withdrawal statuses. The processing -> completed/rejected transition
// is performed by an operator outside this service.
const (
	WithdrawalStatusProcessing = "processing"
	WithdrawalStatusCompleted  = "completed"
	WithdrawalStatusRejected   = "rejected"
)

// PIX key types accepted for payouts.
const (
	PixTypeEmail  = "email"
	PixTypeCPF    = "cpf"
	PixTypePhone  = "phone"
	PixTypeRandom = "random"
)

// ValidPixType reports whether v is one of the accepted PIX key types.
func ValidPixType(v string) bool {
	switch v {
	case PixTypeEmail, PixTypeCPF, PixTypePhone, PixTypeRandom:
		return true
	}
	return false
}

// Withdrawal is a payout request. The fee is flat 10% of the requested
// amount; NetAmount is what actually leaves via PIX.
type Withdrawal struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	UserID    string  `gorm:"index;not null" json:"userId"`
	Amount    float64 `gorm:"not null" json:"amount"`
	Fee       float64 `gorm:"not null" json:"fee"`
	NetAmount float64 `gorm:"not null" json:"netAmount"`
	PixKey    string  `gorm:"not null" json:"pixKey"`
	PixType   string  `gorm:"not null" json:"pixType"`
	Status    string  `gorm:"index;not null;default:'processing'" json:"status"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
