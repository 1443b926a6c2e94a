// Package gateway wraps the VizzionPay PIX API: charge creation, charge
// status, payouts and payout status. Pure request/response mapping; no
// state beyond the HTTP client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	token      string
	webhookURL string
	httpClient *http.Client
}

// NewClient builds a gateway client. webhookURL is where the gateway
// posts payment confirmations for charges created by this client.
func NewClient(baseURL, token, webhookURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// ChargeRequest describes a PIX charge to create.
type ChargeRequest struct {
	Amount      float64
	UserID      string
	UserName    string
	Description string
}

// Charge is a created PIX charge ready for display.
type Charge struct {
	TransactionID string
	PixCode       string
	QRImage       string
}

// ChargeStatus is the gateway's live view of a charge.
type ChargeStatus struct {
	Status string  `json:"status"` // PENDING, COMPLETED, FAILED, EXPIRED
	Amount float64 `json:"amount"`
	PaidAt string  `json:"paidAt"`
}

// PayoutRequest describes a PIX transfer to a user's key.
type PayoutRequest struct {
	Amount      float64
	PixKey      string
	PixType     string // email, cpf, phone, random
	ExternalID  string
	Description string
}

// Payout is a created PIX transfer.
type Payout struct {
	TransactionID string
	Status        string
}

// PayoutStatus is the gateway's live view of a transfer.
type PayoutStatus struct {
	Status        string `json:"status"` // PROCESSING, COMPLETED, FAILED
	CompletedAt   string `json:"completedAt"`
	FailureReason string `json:"failureReason,omitempty"`
}

// CreateCharge creates a PIX charge and returns its copy-paste code, QR
// image and gateway transaction id.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Monety deposit - %s", req.UserName)
	}

	body := map[string]interface{}{
		"amount":      req.Amount,
		"description": description,
		"customer": map[string]string{
			"name":        req.UserName,
			"external_id": req.UserID,
		},
		"callback_url": c.webhookURL,
	}

	var payload chargePayload
	if err := c.post(ctx, "create charge", "/pix/payment", body, &payload); err != nil {
		return nil, err
	}

	charge := &Charge{
		TransactionID: payload.transactionID(),
		PixCode:       payload.pixCode(),
		QRImage:       payload.qrImage(),
	}
	if charge.TransactionID == "" {
		return nil, &UpstreamError{Op: "create charge", Detail: "response carried no transaction id"}
	}
	return charge, nil
}

// GetChargeStatus queries the live status of a charge.
func (c *Client) GetChargeStatus(ctx context.Context, transactionID string) (*ChargeStatus, error) {
	var payload chargeStatusPayload
	if err := c.get(ctx, "check charge status", "/pix/payment/"+transactionID, &payload); err != nil {
		return nil, err
	}
	return &ChargeStatus{
		Status: payload.Status,
		Amount: payload.Amount,
		PaidAt: payload.paidAt(),
	}, nil
}

// CreatePayout creates a PIX transfer to the given key.
func (c *Client) CreatePayout(ctx context.Context, req PayoutRequest) (*Payout, error) {
	description := req.Description
	if description == "" {
		description = "Monety withdrawal"
	}

	body := map[string]interface{}{
		"amount":       req.Amount,
		"pix_key":      req.PixKey,
		"pix_key_type": req.PixType,
		"external_id":  req.ExternalID,
		"description":  description,
	}

	var payload payoutPayload
	if err := c.post(ctx, "create payout", "/pix/transfer", body, &payload); err != nil {
		return nil, err
	}
	return &Payout{
		TransactionID: payload.transactionID(),
		Status:        payload.Status,
	}, nil
}

// GetPayoutStatus queries the live status of a transfer.
func (c *Client) GetPayoutStatus(ctx context.Context, transactionID string) (*PayoutStatus, error) {
	var payload payoutStatusPayload
	if err := c.get(ctx, "check payout status", "/pix/transfer/"+transactionID, &payload); err != nil {
		return nil, err
	}
	return &PayoutStatus{
		Status:        payload.Status,
		CompletedAt:   payload.CompletedAt,
		FailureReason: payload.FailureReason,
	}, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, dest interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.New().String())

	return c.do(op, req, dest)
}

func (c *Client) get(ctx context.Context, op, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(op, req, dest)
}

func (c *Client) do(op string, req *http.Request, dest interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Detail: string(respBody)}
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Detail: "malformed response: " + err.Error()}
	}
	return nil
}
