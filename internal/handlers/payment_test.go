package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"monety/internal/gateway"
	"monety/internal/models"
	"monety/internal/services/account"
	"monety/internal/services/deposit"
	"monety/internal/services/settlement"
	"monety/internal/services/withdrawal"
	"monety/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	charge *gateway.Charge
	status *gateway.ChargeStatus
	err    error
}

func (s *stubGateway) CreateCharge(context.Context, gateway.ChargeRequest) (*gateway.Charge, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.charge, nil
}

func (s *stubGateway) GetChargeStatus(context.Context, string) (*gateway.ChargeStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.status, nil
}

func newTestApp(ledger *testutil.MemoryLedger, gw deposit.GatewayClient) *fiber.App {
	app := fiber.New()

	paymentHandler := NewPaymentHandler(
		deposit.NewService(ledger, gw),
		settlement.NewService(ledger),
	)
	withdrawalHandler := NewWithdrawalHandler(withdrawal.NewService(ledger))
	accountHandler := NewAccountHandler(account.NewService(ledger))

	api := app.Group("/api")
	api.Post("/create-payment", paymentHandler.CreatePayment)
	api.Get("/check-payment", paymentHandler.CheckPayment)
	api.Post("/create-withdraw", withdrawalHandler.CreateWithdraw)
	api.Get("/check-withdraw", withdrawalHandler.CheckWithdraw)
	api.Post("/webhook-payment", paymentHandler.HandleWebhook)
	api.Get("/balance", accountHandler.GetBalance)
	api.Get("/transactions", accountHandler.GetTransactions)
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	return resp, parsed
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	return resp, parsed
}

func TestCreatePaymentAndWebhookEndToEnd(t *testing.T) {
	ledger := testutil.NewMemoryLedger()
	ledger.Users["u1"] = models.User{ID: "u1"}
	gw := &stubGateway{charge: &gateway.Charge{
		TransactionID: "tx-1",
		PixCode:       "00020126abc",
		QRImage:       "https://cdn/qr.png",
	}}
	app := newTestApp(ledger, gw)

	resp, body := postJSON(t, app, "/api/create-payment", fiber.Map{
		"amount": 50, "userId": "u1", "userName": "ana",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "tx-1", body["transactionId"])
	assert.Equal(t, "00020126abc", body["pixCode"])

	depositID := body["depositId"].(string)
	assert.Equal(t, models.DepositStatusPending, ledger.Deposits[depositID].Status)

	resp, body = postJSON(t, app, "/api/webhook-payment", fiber.Map{
		"status": "COMPLETED", "transaction_id": "tx-1", "amount": 50,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "u1", body["userId"])
	assert.Equal(t, 50.0, body["amount"])

	assert.Equal(t, 50.0, ledger.Users["u1"].Balance)
	assert.Equal(t, 50.0, ledger.Users["u1"].TotalEarned)
	assert.Equal(t, models.DepositStatusCompleted, ledger.Deposits[depositID].Status)

	// Replayed delivery: acknowledged, no double credit.
	resp, body = postJSON(t, app, "/api/webhook-payment", fiber.Map{
		"status": "COMPLETED", "transaction_id": "tx-1", "amount": 50,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "success")
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, 50.0, ledger.Users["u1"].Balance)
}

func TestCreatePaymentValidationErrors(t *testing.T) {
	app := newTestApp(testutil.NewMemoryLedger(), &stubGateway{})

	resp, _ := postJSON(t, app, "/api/create-payment", fiber.Map{"amount": 50, "userId": "u1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, app, "/api/create-payment", fiber.Map{"amount": 10, "userId": "u1", "userName": "ana"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreatePaymentGatewayFailure(t *testing.T) {
	gw := &stubGateway{err: &gateway.UpstreamError{Op: "create charge", StatusCode: 502, Detail: "raw provider error"}}
	app := newTestApp(testutil.NewMemoryLedger(), gw)

	resp, body := postJSON(t, app, "/api/create-payment", fiber.Map{
		"amount": 50, "userId": "u1", "userName": "ana",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	// The raw upstream detail stays server-side.
	assert.NotContains(t, body["error"], "raw provider error")
}

func TestCheckPaymentRequiresTransactionID(t *testing.T) {
	app := newTestApp(testutil.NewMemoryLedger(), &stubGateway{})

	req := httptest.NewRequest(http.MethodGet, "/api/check-payment", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookMissingTransactionID(t *testing.T) {
	app := newTestApp(testutil.NewMemoryLedger(), &stubGateway{})

	resp, _ := postJSON(t, app, "/api/webhook-payment", fiber.Map{"status": "COMPLETED"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookIgnoredStatusAcknowledged(t *testing.T) {
	app := newTestApp(testutil.NewMemoryLedger(), &stubGateway{})

	resp, body := postJSON(t, app, "/api/webhook-payment", fiber.Map{
		"status": "FAILED", "transaction_id": "tx-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["message"])
}

func TestCreateWithdrawValidationErrors(t *testing.T) {
	app := newTestApp(testutil.NewMemoryLedger(), &stubGateway{})

	resp, _ := postJSON(t, app, "/api/create-withdraw", fiber.Map{"userId": "u1", "amount": 40})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, app, "/api/create-withdraw", fiber.Map{
		"userId": "u1", "amount": 10, "pixKey": "x@y.com", "pixType": "email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
