// Package settlement turns a gateway payment callback into the atomic
// state transition that completes a pending deposit: credit the user,
// activate the referral, append history. The gateway delivers callbacks
// at least once and in no particular order; idempotency comes from the
// business precondition that only a deposit still in pending state may
// be settled, not from deduplicating delivery ids.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monety/internal/gateway"
	"monety/internal/models"
	"monety/internal/repositories"
)

var (
	ErrMissingTransactionID = errors.New("transaction id missing from callback")
	ErrOwnerUnresolved      = errors.New("deposit owner could not be resolved")
	ErrUserNotFound         = errors.New("user not found")
)

// Result is the outcome of processing one callback.
type Result struct {
	Settled bool
	UserID  string
	Amount  float64
	Reason  string // set when the callback was acknowledged without writes
}

// Service processes gateway payment callbacks.
type Service interface {
	Settle(ctx context.Context, payload gateway.WebhookPayload) (*Result, error)
}

type service struct {
	ledger repositories.Ledger
}

// NewService creates a settlement service.
func NewService(ledger repositories.Ledger) Service {
	if ledger == nil {
		panic("ledger is required")
	}
	return &service{ledger: ledger}
}

// Settle applies a payment callback. Non-success statuses and callbacks
// that match no pending deposit are acknowledged without writes, which
// makes replays and unknown transactions harmless. Any error aborts the
// whole transaction: the deposit stays pending and the balance is
// untouched, so the gateway's retry re-delivers safely.
func (s *service) Settle(ctx context.Context, payload gateway.WebhookPayload) (*Result, error) {
	if !payload.IsSuccessful() {
		return &Result{Reason: fmt.Sprintf("status %q not processed", payload.NormalizedStatus())}, nil
	}

	transactionID := payload.NormalizedTransactionID()
	if transactionID == "" {
		return nil, ErrMissingTransactionID
	}

	var result *Result
	err := s.ledger.ExecuteInTransaction(func(tx repositories.Ledger) error {
		deposit, err := tx.FindPendingDepositByTransactionID(transactionID)
		if errors.Is(err, repositories.ErrDepositNotFound) {
			// Already settled by an earlier delivery, or not ours.
			result = &Result{Reason: "deposit already processed or not found"}
			return nil
		}
		if err != nil {
			return err
		}

		userID := deposit.UserID
		if userID == "" {
			userID = payload.NormalizedExternalReference()
		}
		if userID == "" {
			return ErrOwnerUnresolved
		}

		amount := deposit.Amount
		if amount == 0 {
			amount = payload.NormalizedAmount()
		}

		user, err := tx.GetUserForUpdate(userID)
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		if err != nil {
			return err
		}

		firstDeposit, err := s.isFirstCompletedDeposit(tx, userID)
		if err != nil {
			return err
		}

		if firstDeposit {
			user.InviteStatus = models.InviteStatusActive
		}
		user.Balance += amount
		user.TotalEarned += amount
		user.Spins++ // one spin per PIX deposit, flat
		if err := tx.UpdateUser(user); err != nil {
			return err
		}

		if firstDeposit && user.InvitedBy != nil {
			if err := s.creditInviter(tx, *user.InvitedBy, user); err != nil {
				return err
			}
		}

		now := time.Now()
		deposit.Status = models.DepositStatusCompleted
		deposit.CompletedAt = &now
		if err := tx.UpdateDeposit(deposit); err != nil {
			return err
		}

		if err := tx.CreateTransaction(&models.Transaction{
			UserID:        userID,
			Type:          models.TransactionTypeDeposit,
			Amount:        amount,
			Status:        models.TransactionStatusCompleted,
			Description:   "PIX deposit",
			Gateway:       deposit.Gateway,
			TransactionID: transactionID,
		}); err != nil {
			return err
		}

		result = &Result{Settled: true, UserID: userID, Amount: amount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// isFirstCompletedDeposit reports whether the user has no completed
// deposits yet. Evaluated inside the settlement transaction so a
// concurrent settlement for the same user cannot both see "first".
func (s *service) isFirstCompletedDeposit(tx repositories.Ledger, userID string) (bool, error) {
	hasCompleted, err := tx.HasCompletedDeposit(userID)
	if err != nil {
		return false, err
	}
	return !hasCompleted, nil
}

// creditInviter grants the referring user one spin and records a
// zero-amount bonus entry. A missing inviter record is not an error;
// the referee's settlement must not fail because the inviter left.
func (s *service) creditInviter(tx repositories.Ledger, inviterID string, referee *models.User) error {
	inviter, err := tx.GetUserForUpdate(inviterID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	inviter.Spins++
	if err := tx.UpdateUser(inviter); err != nil {
		return err
	}

	refereeName := referee.Email
	if refereeName == "" {
		refereeName = referee.Name
	}
	if refereeName == "" {
		refereeName = "referred user"
	}

	return tx.CreateTransaction(&models.Transaction{
		UserID:      inviterID,
		Type:        models.TransactionTypeBonus,
		Amount:      0,
		Status:      models.TransactionStatusCompleted,
		Description: fmt.Sprintf("Referral bonus: %s made a deposit", refereeName),
	})
}
