package models

import (
	"time"
)

// Transaction types
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeBonus      = "bonus"
)

// Transaction statuses
const (
	TransactionStatusProcessing = "processing"
	TransactionStatusCompleted  = "completed"
)

// Transaction is a per-user history entry. Append-only; never mutated
// or deleted.
type Transaction struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	UserID        string  `gorm:"index;not null" json:"userId"`
	Type          string  `gorm:"not null" json:"type"`
	Amount        float64 `gorm:"not null" json:"amount"`
	Status        string  `gorm:"not null" json:"status"`
	Description   string  `json:"description"`
	Gateway       string  `json:"gateway,omitempty"`
	TransactionID string  `gorm:"index" json:"transactionId,omitempty"` // gateway reference, for traceability
	CreatedAt     time.Time
}
