package models

import (
	"time"
)

// Deposit statuses. Only pending -> completed is performed here;
// failed/expired are terminal states reported by the gateway.
const (
	DepositStatusPending   = "pending"
	DepositStatusCompleted = "completed"
	DepositStatusFailed    = "failed"
	DepositStatusExpired   = "expired"
)

// Deposit is a PIX charge awaiting confirmation. TransactionID is the
// gateway-issued identifier and is unique per gateway.
type Deposit struct {
	ID            string  `gorm:"primaryKey" json:"id"`
	UserID        string  `gorm:"index;not null" json:"userId"`
	UserName      string  `json:"userName"`
	Amount        float64 `gorm:"not null" json:"amount"`
	PixCode       string  `json:"pixCode"`
	QRImage       string  `json:"qrImage"`
	TransactionID string  `gorm:"uniqueIndex;not null" json:"transactionId"`
	Gateway       string  `json:"gateway"`
	Status        string  `gorm:"index;not null;default:'pending'" json:"status"`
	CreatedAt     time.Time
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}
