package handlers

import (
	"errors"
	"log"

	"monety/internal/services/withdrawal"
	"monety/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// WithdrawalHandler serves withdrawal requests.
type WithdrawalHandler struct {
	withdrawals withdrawal.Service
}

func NewWithdrawalHandler(withdrawals withdrawal.Service) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// CreateWithdraw handles POST /api/create-withdraw.
func (h *WithdrawalHandler) CreateWithdraw(c *fiber.Ctx) error {
	var input struct {
		UserID  string  `json:"userId"`
		Amount  float64 `json:"amount"`
		PixKey  string  `json:"pixKey"`
		PixType string  `json:"pixType"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	result, err := h.withdrawals.Create(c.Context(), withdrawal.CreateRequest{
		UserID:  input.UserID,
		Amount:  input.Amount,
		PixKey:  input.PixKey,
		PixType: input.PixType,
	})
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrMissingFields),
			errors.Is(err, withdrawal.ErrInvalidPixType),
			errors.Is(err, withdrawal.ErrAmountBelowMinimum),
			errors.Is(err, withdrawal.ErrOutsideServiceHours),
			errors.Is(err, withdrawal.ErrInsufficientBalance):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, withdrawal.ErrUserNotFound):
			return utils.NotFound(c, err.Error())
		default:
			log.Printf("create-withdraw: %v", err)
			return utils.InternalError(c, "Failed to process withdrawal")
		}
	}

	return utils.Success(c, fiber.Map{
		"success":      true,
		"withdrawalId": result.WithdrawalID,
		"message":      "Withdrawal requested",
		"note":         "Pending operator approval",
	})
}

// CheckWithdraw handles GET /api/check-withdraw?withdrawalId=.
func (h *WithdrawalHandler) CheckWithdraw(c *fiber.Ctx) error {
	result, err := h.withdrawals.Status(c.Context(), c.Query("withdrawalId"))
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrMissingWithdrawalID):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, withdrawal.ErrWithdrawalNotFound):
			return utils.NotFound(c, err.Error())
		default:
			log.Printf("check-withdraw: %v", err)
			return utils.InternalError(c, "Failed to check withdrawal status")
		}
	}

	return utils.Success(c, fiber.Map{
		"success":   true,
		"status":    result.Status,
		"amount":    result.Amount,
		"fee":       result.Fee,
		"netAmount": result.NetAmount,
	})
}
