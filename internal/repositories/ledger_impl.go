package repositories

import (
	"context"
	"fmt"
	"log"

	"monety/internal/models"
	"monety/internal/repositories/cache"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewLedger creates a Ledger backed by GORM. The cache is optional; when
// present, user reads go through it and user writes invalidate it.
func NewLedger(db *gorm.DB, cacheService *cache.CacheService) Ledger {
	return &ledgerRepository{db: db, cache: cacheService}
}

func (r *ledgerRepository) GetUser(id string) (*models.User, error) {
	if r.cache != nil {
		if user, err := r.cache.GetUser(context.Background(), id); err == nil {
			return user, nil
		}
	}

	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.CacheUser(context.Background(), &user); err != nil {
			log.Printf("failed to cache user %s: %v", id, err)
		}
	}
	return &user, nil
}

func (r *ledgerRepository) GetUserForUpdate(id string) (*models.User, error) {
	var user models.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	return &user, nil
}

func (r *ledgerRepository) CreateUser(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *ledgerRepository) UpdateUser(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if r.cache != nil {
		if err := r.cache.InvalidateUser(context.Background(), user.ID); err != nil {
			log.Printf("failed to invalidate user cache %s: %v", user.ID, err)
		}
	}
	return nil
}

func (r *ledgerRepository) CreateDeposit(deposit *models.Deposit) error {
	if err := r.db.Create(deposit).Error; err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}
	return nil
}

// FindPendingDepositByTransactionID locks and returns the pending deposit
// for a gateway transaction. TransactionID carries a unique index, so more
// than one match means a data integrity fault; the oldest wins and the
// rest are logged.
func (r *ledgerRepository) FindPendingDepositByTransactionID(transactionID string) (*models.Deposit, error) {
	var deposits []models.Deposit
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ? AND status = ?", transactionID, models.DepositStatusPending).
		Order("created_at ASC").
		Find(&deposits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending deposit: %w", err)
	}
	if len(deposits) == 0 {
		return nil, ErrDepositNotFound
	}
	if len(deposits) > 1 {
		log.Printf("integrity fault: %d pending deposits share transaction id %s", len(deposits), transactionID)
	}
	return &deposits[0], nil
}

func (r *ledgerRepository) HasCompletedDeposit(userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Deposit{}).
		Where("user_id = ? AND status = ?", userID, models.DepositStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count completed deposits: %w", err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) UpdateDeposit(deposit *models.Deposit) error {
	if err := r.db.Save(deposit).Error; err != nil {
		return fmt.Errorf("failed to update deposit: %w", err)
	}
	return nil
}

func (r *ledgerRepository) CreateWithdrawal(withdrawal *models.Withdrawal) error {
	if err := r.db.Create(withdrawal).Error; err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetWithdrawal(id string) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	if err := r.db.First(&withdrawal, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return &withdrawal, nil
}

func (r *ledgerRepository) CreateTransaction(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetTransactionHistory(userID string, limit, offset int) ([]models.Transaction, error) {
	var history []models.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return history, nil
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(Ledger) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &ledgerRepository{db: tx, cache: r.cache}
		return fn(txRepo)
	})
}
