// Package testutil provides shared test doubles for service tests.
package testutil

import (
	"sort"

	"monety/internal/models"
	"monety/internal/repositories"
)

// MemoryLedger is an in-memory repositories.Ledger for tests. It is not
// safe for concurrent use. ExecuteInTransaction snapshots all state and
// restores it when fn fails, mirroring the all-or-nothing semantics of
// the real implementation.
type MemoryLedger struct {
	Users        map[string]models.User
	Deposits     map[string]models.Deposit
	Withdrawals  map[string]models.Withdrawal
	Transactions []models.Transaction

	// CreateTransactionErr, when set, makes CreateTransaction fail.
	// Used to exercise rollback paths.
	CreateTransactionErr error

	nextTransactionID uint
}

var _ repositories.Ledger = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		Users:       make(map[string]models.User),
		Deposits:    make(map[string]models.Deposit),
		Withdrawals: make(map[string]models.Withdrawal),
	}
}

func (l *MemoryLedger) GetUser(id string) (*models.User, error) {
	user, ok := l.Users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &user, nil
}

func (l *MemoryLedger) GetUserForUpdate(id string) (*models.User, error) {
	return l.GetUser(id)
}

func (l *MemoryLedger) CreateUser(user *models.User) error {
	l.Users[user.ID] = *user
	return nil
}

func (l *MemoryLedger) UpdateUser(user *models.User) error {
	if _, ok := l.Users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	l.Users[user.ID] = *user
	return nil
}

func (l *MemoryLedger) CreateDeposit(deposit *models.Deposit) error {
	l.Deposits[deposit.ID] = *deposit
	return nil
}

func (l *MemoryLedger) FindPendingDepositByTransactionID(transactionID string) (*models.Deposit, error) {
	var matches []models.Deposit
	for _, d := range l.Deposits {
		if d.TransactionID == transactionID && d.Status == models.DepositStatusPending {
			matches = append(matches, d)
		}
	}
	if len(matches) == 0 {
		return nil, repositories.ErrDepositNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return &matches[0], nil
}

func (l *MemoryLedger) HasCompletedDeposit(userID string) (bool, error) {
	for _, d := range l.Deposits {
		if d.UserID == userID && d.Status == models.DepositStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (l *MemoryLedger) UpdateDeposit(deposit *models.Deposit) error {
	if _, ok := l.Deposits[deposit.ID]; !ok {
		return repositories.ErrDepositNotFound
	}
	l.Deposits[deposit.ID] = *deposit
	return nil
}

func (l *MemoryLedger) CreateWithdrawal(withdrawal *models.Withdrawal) error {
	l.Withdrawals[withdrawal.ID] = *withdrawal
	return nil
}

func (l *MemoryLedger) GetWithdrawal(id string) (*models.Withdrawal, error) {
	withdrawal, ok := l.Withdrawals[id]
	if !ok {
		return nil, repositories.ErrWithdrawalNotFound
	}
	return &withdrawal, nil
}

func (l *MemoryLedger) CreateTransaction(tx *models.Transaction) error {
	if l.CreateTransactionErr != nil {
		return l.CreateTransactionErr
	}
	l.nextTransactionID++
	record := *tx
	record.ID = l.nextTransactionID
	l.Transactions = append(l.Transactions, record)
	return nil
}

func (l *MemoryLedger) GetTransactionHistory(userID string, limit, offset int) ([]models.Transaction, error) {
	var history []models.Transaction
	for i := len(l.Transactions) - 1; i >= 0; i-- {
		if l.Transactions[i].UserID == userID {
			history = append(history, l.Transactions[i])
		}
	}
	if offset >= len(history) {
		return nil, nil
	}
	history = history[offset:]
	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	return history, nil
}

func (l *MemoryLedger) ExecuteInTransaction(fn func(repositories.Ledger) error) error {
	users := cloneMap(l.Users)
	deposits := cloneMap(l.Deposits)
	withdrawals := cloneMap(l.Withdrawals)
	transactions := append([]models.Transaction(nil), l.Transactions...)
	nextID := l.nextTransactionID

	if err := fn(l); err != nil {
		l.Users = users
		l.Deposits = deposits
		l.Withdrawals = withdrawals
		l.Transactions = transactions
		l.nextTransactionID = nextID
		return err
	}
	return nil
}

// UserTransactions returns the history entries recorded for a user, in
// insertion order.
func (l *MemoryLedger) UserTransactions(userID string) []models.Transaction {
	var out []models.Transaction
	for _, tx := range l.Transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
