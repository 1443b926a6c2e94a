// Package repositories provides the data access layer.
// It handles all database operations and data persistence logic.
package repositories

import (
	"errors"

	"monety/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDepositNotFound    = errors.New("deposit not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrTransactionFailed  = errors.New("transaction failed")
)

// Ledger defines the database operations for users, deposits,
// withdrawals and transaction history.
//
// ExecuteInTransaction runs fn against a Ledger bound to a database
// transaction: every write made through it commits atomically or not at
// all. GetUserForUpdate and FindPendingDepositByTransactionID take row
// locks, so concurrent settlements or withdrawals touching the same
// user/deposit serialize against each other.
type Ledger interface {
	// User operations
	GetUser(id string) (*models.User, error)
	GetUserForUpdate(id string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error

	// Deposit operations
	CreateDeposit(deposit *models.Deposit) error
	FindPendingDepositByTransactionID(transactionID string) (*models.Deposit, error)
	HasCompletedDeposit(userID string) (bool, error)
	UpdateDeposit(deposit *models.Deposit) error

	// Withdrawal operations
	CreateWithdrawal(withdrawal *models.Withdrawal) error
	GetWithdrawal(id string) (*models.Withdrawal, error)

	// Transaction history
	CreateTransaction(tx *models.Transaction) error
	GetTransactionHistory(userID string, limit, offset int) ([]models.Transaction, error)

	// Transactional execution
	ExecuteInTransaction(fn func(Ledger) error) error
}
