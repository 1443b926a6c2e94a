// Package withdrawal handles PIX payout requests: validation, the
// service-hours window, and the transactional balance debit.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"monety/internal/models"
	"monety/internal/repositories"

	"github.com/google/uuid"
)

const (
	// MinAmount is the minimum withdrawal in currency units.
	MinAmount = 35.0

	// FeeRate is the flat fee charged on top of the requested amount.
	FeeRate = 0.10

	// Withdrawals are accepted from 09:00 up to (not including) 17:00,
	// Brasília time.
	serviceHourStart = 9
	serviceHourEnd   = 17

	serviceTimezone = "America/Sao_Paulo"
)

var (
	ErrMissingFields       = errors.New("userId, amount, pixKey and pixType are required")
	ErrInvalidPixType      = errors.New("pixType must be one of email, cpf, phone, random")
	ErrAmountBelowMinimum  = fmt.Errorf("minimum withdrawal is %.2f", MinAmount)
	ErrOutsideServiceHours = errors.New("withdrawals are only accepted from 09:00 to 17:00 Brasília time")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrMissingWithdrawalID = errors.New("withdrawalId is required")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
)

// CreateRequest is a withdrawal intake request.
type CreateRequest struct {
	UserID  string
	Amount  float64
	PixKey  string
	PixType string
}

// CreateResult identifies the created withdrawal.
type CreateResult struct {
	WithdrawalID string
	Fee          float64
	NetAmount    float64
}

// Service creates processing withdrawals and serves status lookups.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	Status(ctx context.Context, withdrawalID string) (*models.Withdrawal, error)
}

type service struct {
	ledger repositories.Ledger
	loc    *time.Location
	now    func() time.Time
}

// NewService creates a withdrawal service.
func NewService(ledger repositories.Ledger) Service {
	if ledger == nil {
		panic("ledger is required")
	}
	loc, err := time.LoadLocation(serviceTimezone)
	if err != nil {
		log.Printf("failed to load %s tzdata, using fixed offset: %v", serviceTimezone, err)
		loc = time.FixedZone("BRT", -3*60*60)
	}
	return &service{
		ledger: ledger,
		loc:    loc,
		now:    time.Now,
	}
}

// Create validates the request and, inside one ledger transaction,
// asserts balance sufficiency, debits the fee-inclusive total and
// records the withdrawal plus its history entry. The check and the
// debit share the transaction so two concurrent withdrawals for the
// same user cannot overdraw.
func (s *service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.UserID == "" || req.Amount == 0 || req.PixKey == "" || req.PixType == "" {
		return nil, ErrMissingFields
	}
	if !models.ValidPixType(req.PixType) {
		return nil, ErrInvalidPixType
	}
	if req.Amount < MinAmount {
		return nil, ErrAmountBelowMinimum
	}

	hour := s.now().In(s.loc).Hour()
	if hour < serviceHourStart || hour >= serviceHourEnd {
		return nil, ErrOutsideServiceHours
	}

	fee := req.Amount * FeeRate
	totalDebit := req.Amount + fee

	withdrawal := &models.Withdrawal{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Amount:    req.Amount,
		Fee:       fee,
		NetAmount: req.Amount - fee,
		PixKey:    req.PixKey,
		PixType:   req.PixType,
		Status:    models.WithdrawalStatusProcessing,
	}

	err := s.ledger.ExecuteInTransaction(func(tx repositories.Ledger) error {
		user, err := tx.GetUserForUpdate(req.UserID)
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if user.Balance < totalDebit {
			return ErrInsufficientBalance
		}

		user.Balance -= totalDebit
		user.TotalWithdrawn += req.Amount
		if err := tx.UpdateUser(user); err != nil {
			return err
		}

		if err := tx.CreateWithdrawal(withdrawal); err != nil {
			return err
		}

		return tx.CreateTransaction(&models.Transaction{
			UserID:      req.UserID,
			Type:        models.TransactionTypeWithdrawal,
			Amount:      req.Amount,
			Status:      models.TransactionStatusProcessing,
			Description: fmt.Sprintf("PIX withdrawal (%s: %s)", req.PixType, req.PixKey),
		})
	})
	if err != nil {
		return nil, err
	}

	return &CreateResult{
		WithdrawalID: withdrawal.ID,
		Fee:          withdrawal.Fee,
		NetAmount:    withdrawal.NetAmount,
	}, nil
}

// Status returns a withdrawal by id so callers can poll the
// processing -> completed/rejected transition made by the operator.
func (s *service) Status(ctx context.Context, withdrawalID string) (*models.Withdrawal, error) {
	if withdrawalID == "" {
		return nil, ErrMissingWithdrawalID
	}
	withdrawal, err := s.ledger.GetWithdrawal(withdrawalID)
	if errors.Is(err, repositories.ErrWithdrawalNotFound) {
		return nil, ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}
