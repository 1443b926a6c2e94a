// Package account serves the wallet's read side: the balance snapshot
// the front-end polls and the per-user transaction history.
package account

import (
	"context"
	"errors"

	"monety/internal/models"
	"monety/internal/repositories"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

var (
	ErrMissingUserID = errors.New("userId is required")
	ErrUserNotFound  = errors.New("user not found")
)

// Balance is the wallet snapshot returned to the front-end.
type Balance struct {
	Balance        float64
	TotalEarned    float64
	TotalWithdrawn float64
	Spins          int
	InviteStatus   string
}

// Service reads wallet state. Reads go through the ledger's cached user
// path; they never mutate.
type Service interface {
	GetBalance(ctx context.Context, userID string) (*Balance, error)
	GetTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

type service struct {
	ledger repositories.Ledger
}

// NewService creates an account service.
func NewService(ledger repositories.Ledger) Service {
	if ledger == nil {
		panic("ledger is required")
	}
	return &service{ledger: ledger}
}

func (s *service) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	user, err := s.ledger.GetUser(userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Balance{
		Balance:        user.Balance,
		TotalEarned:    user.TotalEarned,
		TotalWithdrawn: user.TotalWithdrawn,
		Spins:          user.Spins,
		InviteStatus:   user.InviteStatus,
	}, nil
}

// GetTransactions returns history entries newest first. The limit is
// clamped to [1, 100] with a default of 50; a negative offset reads
// from the start.
func (s *service) GetTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.GetTransactionHistory(userID, limit, offset)
}
