package handlers

import (
	"errors"
	"log"

	"monety/internal/services/account"
	"monety/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler serves wallet reads.
type AccountHandler struct {
	accounts account.Service
}

func NewAccountHandler(accounts account.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// GetBalance handles GET /api/balance?userId=.
func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	balance, err := h.accounts.GetBalance(c.Context(), c.Query("userId"))
	if err != nil {
		switch {
		case errors.Is(err, account.ErrMissingUserID):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, account.ErrUserNotFound):
			return utils.NotFound(c, err.Error())
		default:
			log.Printf("balance: %v", err)
			return utils.InternalError(c, "Failed to read balance")
		}
	}

	return utils.Success(c, fiber.Map{
		"success":        true,
		"balance":        balance.Balance,
		"totalEarned":    balance.TotalEarned,
		"totalWithdrawn": balance.TotalWithdrawn,
		"spins":          balance.Spins,
		"inviteStatus":   balance.InviteStatus,
	})
}

// GetTransactions handles GET /api/transactions?userId=&limit=&offset=.
func (h *AccountHandler) GetTransactions(c *fiber.Ctx) error {
	history, err := h.accounts.GetTransactions(
		c.Context(),
		c.Query("userId"),
		c.QueryInt("limit", 0),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		if errors.Is(err, account.ErrMissingUserID) {
			return utils.BadRequest(c, err.Error())
		}
		log.Printf("transactions: %v", err)
		return utils.InternalError(c, "Failed to read transaction history")
	}

	return utils.Success(c, fiber.Map{
		"success":      true,
		"transactions": history,
	})
}
