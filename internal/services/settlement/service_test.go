package settlement

import (
	"context"
	"errors"
	"testing"

	"monety/internal/gateway"
	"monety/internal/models"
	"monety/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingDeposit(id, userID, transactionID string, amount float64) models.Deposit {
	return models.Deposit{
		ID:            id,
		UserID:        userID,
		Amount:        amount,
		TransactionID: transactionID,
		Gateway:       "vizzionpay",
		Status:        models.DepositStatusPending,
	}
}

func TestSettleCreditsUserAndCompletesDeposit(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1", Balance: 10, Spins: 2, InviteStatus: models.InviteStatusInactive}
	ledger.Deposits["d1"] = pendingDeposit("d1", "u1", "tx-1", 50)

	svc := NewService(ledger)
	result, err := svc.Settle(context.Background(), gateway.WebhookPayload{
		Status:        "COMPLETED",
		TransactionID: "tx-1",
		Amount:        50,
	})

	require.NoError(t, err)
	assert.True(t, result.Settled)
	assert.Equal(t, "u1", result.UserID)
	assert.Equal(t, 50.0, result.Amount)

	user := ledger.Users["u1"]
	assert.Equal(t, 60.0, user.Balance)
	assert.Equal(t, 50.0, user.TotalEarned)
	assert.Equal(t, 3, user.Spins)
	assert.Equal(t, models.InviteStatusActive, user.InviteStatus)

	dep := ledger.Deposits["d1"]
	assert.Equal(t, models.DepositStatusCompleted, dep.Status)
	require.NotNil(t, dep.CompletedAt)

	history := ledger.UserTransactions("u1")
	require.Len(t, history, 1)
	assert.Equal(t, models.TransactionTypeDeposit, history[0].Type)
	assert.Equal(t, 50.0, history[0].Amount)
	assert.Equal(t, "vizzionpay", history[0].Gateway)
	assert.Equal(t, "tx-1", history[0].TransactionID)
}

func TestSettleIsIdempotent(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1"}
	ledger.Deposits["d1"] = pendingDeposit("d1", "u1", "tx-1", 50)

	svc := NewService(ledger)
	payload := gateway.WebhookPayload{Status: "COMPLETED", TransactionID: "tx-1", Amount: 50}

	first, err := svc.Settle(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, first.Settled)

	// At-least-once delivery: the duplicate is acknowledged, not erred,
	// and nothing moves twice.
	second, err := svc.Settle(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, second.Settled)
	assert.NotEmpty(t, second.Reason)

	assert.Equal(t, 50.0, ledger.Users["u1"].Balance)
	assert.Equal(t, 1, ledger.Users["u1"].Spins)
	assert.Len(t, ledger.UserTransactions("u1"), 1)
}

func TestSettleIgnoresNonSuccessStatuses(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1"}
	ledger.Deposits["d1"] = pendingDeposit("d1", "u1", "tx-1", 50)

	svc := NewService(ledger)
	for _, status := range []string{"PENDING", "FAILED", "EXPIRED", ""} {
		result, err := svc.Settle(context.Background(), gateway.WebhookPayload{
			Status:        status,
			TransactionID: "tx-1",
		})
		require.NoError(t, err)
		assert.False(t, result.Settled)
	}

	assert.Equal(t, 0.0, ledger.Users["u1"].Balance)
	assert.Equal(t, models.DepositStatusPending, ledger.Deposits["d1"].Status)
}

func TestSettleIgnoresUnknownTransaction(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1"}

	svc := NewService(ledger)
	result, err := svc.Settle(context.Background(), gateway.WebhookPayload{
		Status:        "COMPLETED",
		TransactionID: "nonexistent",
	})

	require.NoError(t, err)
	assert.False(t, result.Settled)
	assert.Empty(t, ledger.Transactions)
	assert.Equal(t, 0.0, ledger.Users["u1"].Balance)
}

func TestSettleMissingTransactionID(t *testing.T) {
	svc := NewService(testutil.NewMemoryLedger())
	_, err := svc.Settle(context.Background(), gateway.WebhookPayload{Status: "COMPLETED"})
	assert.ErrorIs(t, err, ErrMissingTransactionID)
}

func TestSettleUserMissingAbortsWithoutWrites(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Deposits["d1"] = pendingDeposit("d1", "ghost", "tx-1", 50)

	svc := NewService(ledger)
	_, err := svc.Settle(context.Background(), gateway.WebhookPayload{
		Status:        "COMPLETED",
		TransactionID: "tx-1",
	})

	require.ErrorIs(t, err, ErrUserNotFound)
	// The deposit stays pending so a later callback or manual
	// reconciliation can retry.
	assert.Equal(t, models.DepositStatusPending, ledger.Deposits["d1"].Status)
	assert.Empty(t, ledger.Transactions)
}

func TestSettleRollsBackOnHistoryWriteFailure(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1", Balance: 10}
	ledger.Deposits["d1"] = pendingDeposit("d1", "u1", "tx-1", 50)
	ledger.CreateTransactionErr = errors.New("disk full")

	svc := NewService(ledger)
	_, err := svc.Settle(context.Background(), gateway.WebhookPayload{
		Status:        "COMPLETED",
		TransactionID: "tx-1",
	})

	require.Error(t, err)
	assert.Equal(t, 10.0, ledger.Users["u1"].Balance)
	assert.Equal(t, models.DepositStatusPending, ledger.Deposits["d1"].Status)
}

func TestSettleOwnerFallsBackToExternalReference(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1"}
	// Legacy deposit rows may miss the owner.
	ledger.Deposits["d1"] = pendingDeposit("d1", "", "tx-1", 50)

	svc := NewService(ledger)
	result, err := svc.Settle(context.Background(), gateway.WebhookPayload{
		Status:            "COMPLETED",
		TransactionID:     "tx-1",
		ExternalReference: "u1",
	})

	require.NoError(t, err)
	assert.True(t, result.Settled)
	assert.Equal(t, "u1", result.UserID)
	assert.Equal(t, 50.0, ledger.Users["u1"].Balance)
}

func TestSettleOwnerUnresolved(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Deposits["d1"] = pendingDeposit("d1", "", "tx-1", 50)

	svc := NewService(ledger)
	_, err := svc.Settle(context.Background(), gateway.WebhookPayload{
		Status:        "COMPLETED",
		TransactionID: "tx-1",
	})

	assert.ErrorIs(t, err, ErrOwnerUnresolved)
	assert.Equal(t, models.DepositStatusPending, ledger.Deposits["d1"].Status)
}

func TestSettleReferralBonusOnFirstDepositOnly(t *testing.T) {
	inviterID := "inviter"
	ledger := testutil.NewMemoryLedger()
	ledger.Users[inviterID] = models.User{ID: inviterID, Spins: 5}
	ledger.Users["u1"] = models.User{ID: "u1", Email: "ana@example.com", InvitedBy: &inviterID}
	ledger.Deposits["d1"] = pendingDeposit("d1", "u1", "tx-1", 50)
	ledger.Deposits["d2"] = pendingDeposit("d2", "u1", "tx-2", 80)

	svc := NewService(ledger)

	// First deposit: inviter earns one spin and one bonus entry.
	_, err := svc.Settle(context.Background(), gateway.WebhookPayload{Status: "COMPLETED", TransactionID: "tx-1"})
	require.NoError(t, err)

	assert.Equal(t, 6, ledger.Users[inviterID].Spins)
	bonuses := ledger.UserTransactions(inviterID)
	require.Len(t, bonuses, 1)
	assert.Equal(t, models.TransactionTypeBonus, bonuses[0].Type)
	assert.Equal(t, 0.0, bonuses[0].Amount)
	assert.Contains(t, bonuses[0].Description, "ana@example.com")

	// Second deposit: the referee is credited but the inviter is not.
	_, err = svc.Settle(context.Background(), gateway.WebhookPayload{Status: "COMPLETED", TransactionID: "tx-2"})
	require.NoError(t, err)

	assert.Equal(t, 6, ledger.Users[inviterID].Spins)
	assert.Len(t, ledger.UserTransactions(inviterID), 1)
	assert.Equal(t, 130.0, ledger.Users["u1"].Balance)
}

func TestSettleMissingInviterDoesNotFailSettlement(t *testing.T) {
	goneID := "gone"
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1", InvitedBy: &goneID}
	ledger.Deposits["d1"] = pendingDeposit("d1", "u1", "tx-1", 50)

	svc := NewService(ledger)
	result, err := svc.Settle(context.Background(), gateway.WebhookPayload{Status: "COMPLETED", TransactionID: "tx-1"})

	require.NoError(t, err)
	assert.True(t, result.Settled)
	assert.Equal(t, 50.0, ledger.Users["u1"].Balance)
}

func TestSettleInviteAlreadyActiveStaysActive(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1", InviteStatus: models.InviteStatusActive}
	ledger.Deposits["d0"] = models.Deposit{
		ID: "d0", UserID: "u1", Amount: 30, TransactionID: "tx-0",
		Status: models.DepositStatusCompleted,
	}
	ledger.Deposits["d1"] = pendingDeposit("d1", "u1", "tx-1", 50)

	svc := NewService(ledger)
	_, err := svc.Settle(context.Background(), gateway.WebhookPayload{Status: "COMPLETED", TransactionID: "tx-1"})

	require.NoError(t, err)
	assert.Equal(t, models.InviteStatusActive, ledger.Users["u1"].InviteStatus)
}
