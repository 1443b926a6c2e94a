package handlers

import (
	"errors"
	"log"

	"monety/internal/gateway"
	"monety/internal/services/deposit"
	"monety/internal/services/settlement"
	"monety/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler serves charge creation, status polling and the
// gateway's confirmation webhook.
type PaymentHandler struct {
	deposits    deposit.Service
	settlements settlement.Service
}

func NewPaymentHandler(deposits deposit.Service, settlements settlement.Service) *PaymentHandler {
	return &PaymentHandler{
		deposits:    deposits,
		settlements: settlements,
	}
}

// CreatePayment handles POST /api/create-payment.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var input struct {
		Amount   float64 `json:"amount"`
		UserID   string  `json:"userId"`
		UserName string  `json:"userName"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	result, err := h.deposits.Create(c.Context(), deposit.CreateRequest{
		Amount:   input.Amount,
		UserID:   input.UserID,
		UserName: input.UserName,
	})
	if err != nil {
		switch {
		case errors.Is(err, deposit.ErrMissingFields),
			errors.Is(err, deposit.ErrAmountBelowMinimum):
			return utils.BadRequest(c, err.Error())
		default:
			logUpstreamDetail("create-payment", err)
			return utils.InternalError(c, "Failed to generate PIX charge")
		}
	}

	return utils.Success(c, fiber.Map{
		"success":       true,
		"pixCode":       result.PixCode,
		"qrImage":       result.QRImage,
		"transactionId": result.TransactionID,
		"depositId":     result.DepositID,
		"message":       "PIX charge created",
	})
}

// CheckPayment handles GET /api/check-payment?transactionId=.
func (h *PaymentHandler) CheckPayment(c *fiber.Ctx) error {
	transactionID := c.Query("transactionId")

	status, err := h.deposits.CheckPayment(c.Context(), transactionID)
	if err != nil {
		if errors.Is(err, deposit.ErrMissingTransactionID) {
			return utils.BadRequest(c, err.Error())
		}
		logUpstreamDetail("check-payment", err)
		return utils.InternalError(c, "Failed to check payment status")
	}

	return utils.Success(c, fiber.Map{
		"success": true,
		"status":  status.Status,
		"amount":  status.Amount,
		"paidAt":  status.PaidAt,
	})
}

// HandleWebhook handles POST /api/webhook-payment, the gateway's
// asynchronous payment confirmation. Delivery is at-least-once, so
// ignored and duplicate callbacks are acknowledged with 200; only a
// failed settlement returns 500, which makes the gateway retry.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload gateway.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	result, err := h.settlements.Settle(c.Context(), payload)
	if err != nil {
		if errors.Is(err, settlement.ErrMissingTransactionID) {
			return utils.BadRequest(c, err.Error())
		}
		log.Printf("webhook-payment: settlement failed: %v", err)
		return utils.InternalError(c, "Failed to process payment")
	}

	if !result.Settled {
		return utils.Success(c, fiber.Map{"message": result.Reason})
	}

	return utils.Success(c, fiber.Map{
		"success": true,
		"message": "Payment confirmed",
		"userId":  result.UserID,
		"amount":  result.Amount,
	})
}

// logUpstreamDetail records the raw gateway error detail server-side;
// only the generic message ever reaches the caller.
func logUpstreamDetail(endpoint string, err error) {
	var upstream *gateway.UpstreamError
	if errors.As(err, &upstream) {
		log.Printf("%s: gateway %s returned status %d: %s", endpoint, upstream.Op, upstream.StatusCode, upstream.Detail)
		return
	}
	log.Printf("%s: %v", endpoint, err)
}
