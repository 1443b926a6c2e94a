// Package deposit handles PIX charge creation and status polling.
package deposit

import (
	"context"
	"errors"
	"fmt"

	"monety/internal/gateway"
	"monety/internal/models"
	"monety/internal/repositories"

	"github.com/google/uuid"
)

// MinAmount is the minimum deposit in currency units.
const MinAmount = 30.0

const gatewayName = "vizzionpay"

var (
	ErrMissingFields        = errors.New("amount, userId and userName are required")
	ErrAmountBelowMinimum   = fmt.Errorf("minimum deposit is %.2f", MinAmount)
	ErrMissingTransactionID = errors.New("transactionId is required")
)

// GatewayClient is the slice of the gateway API this service needs.
type GatewayClient interface {
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
	GetChargeStatus(ctx context.Context, transactionID string) (*gateway.ChargeStatus, error)
}

// CreateRequest is a deposit intake request.
type CreateRequest struct {
	Amount   float64
	UserID   string
	UserName string
}

// CreateResult carries the PIX payload back to the caller for display.
type CreateResult struct {
	DepositID     string
	TransactionID string
	PixCode       string
	QRImage       string
}

// Service creates pending deposits and proxies status queries.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	CheckPayment(ctx context.Context, transactionID string) (*gateway.ChargeStatus, error)
}

type service struct {
	ledger  repositories.Ledger
	gateway GatewayClient
}

// NewService creates a deposit service.
func NewService(ledger repositories.Ledger, gw GatewayClient) Service {
	if ledger == nil {
		panic("ledger is required")
	}
	if gw == nil {
		panic("gateway client is required")
	}
	return &service{ledger: ledger, gateway: gw}
}

// Create validates the request, obtains a PIX charge from the gateway and
// persists the deposit as pending. A gateway failure writes nothing.
func (s *service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Amount == 0 || req.UserID == "" || req.UserName == "" {
		return nil, ErrMissingFields
	}
	if req.Amount < MinAmount {
		return nil, ErrAmountBelowMinimum
	}

	charge, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		Amount:   req.Amount,
		UserID:   req.UserID,
		UserName: req.UserName,
	})
	if err != nil {
		return nil, err
	}

	deposit := &models.Deposit{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		UserName:      req.UserName,
		Amount:        req.Amount,
		PixCode:       charge.PixCode,
		QRImage:       charge.QRImage,
		TransactionID: charge.TransactionID,
		Gateway:       gatewayName,
		Status:        models.DepositStatusPending,
	}
	if err := s.ledger.CreateDeposit(deposit); err != nil {
		// The charge exists upstream but was never recorded here; the
		// webhook for it will be acknowledged as unknown and the charge
		// eventually expires unpaid.
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	return &CreateResult{
		DepositID:     deposit.ID,
		TransactionID: deposit.TransactionID,
		PixCode:       deposit.PixCode,
		QRImage:       deposit.QRImage,
	}, nil
}

// CheckPayment returns the gateway's live status for a transaction.
func (s *service) CheckPayment(ctx context.Context, transactionID string) (*gateway.ChargeStatus, error) {
	if transactionID == "" {
		return nil, ErrMissingTransactionID
	}
	return s.gateway.GetChargeStatus(ctx, transactionID)
}
