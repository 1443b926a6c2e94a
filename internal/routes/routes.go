// Package routes defines the API routing configuration.
// It wires repositories, services and handlers together and registers
// the HTTP routes.
package routes

import (
	"monety/internal/config"
	"monety/internal/gateway"
	"monety/internal/handlers"
	"monety/internal/repositories"
	"monety/internal/repositories/cache"
	"monety/internal/services/account"
	"monety/internal/services/deposit"
	"monety/internal/services/settlement"
	"monety/internal/services/withdrawal"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheService *cache.CacheService) {
	ledger := repositories.NewLedger(db, cacheService)

	gatewayClient := gateway.NewClient(
		config.GetEnv("VIZZION_BASE_URL", "https://api.vizzionpay.com/v1"),
		config.GetEnv("VIZZION_TOKEN", ""),
		config.GetEnv("WEBHOOK_BASE_URL", "http://localhost:3000")+"/api/webhook-payment",
	)

	depositService := deposit.NewService(ledger, gatewayClient)
	withdrawalService := withdrawal.NewService(ledger)
	settlementService := settlement.NewService(ledger)
	accountService := account.NewService(ledger)

	paymentHandler := handlers.NewPaymentHandler(depositService, settlementService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	accountHandler := handlers.NewAccountHandler(accountService)

	api := app.Group("/api")
	api.Post("/create-payment", paymentHandler.CreatePayment)
	api.Get("/check-payment", paymentHandler.CheckPayment)
	api.Post("/create-withdraw", withdrawalHandler.CreateWithdraw)
	api.Get("/check-withdraw", withdrawalHandler.CheckWithdraw)
	api.Post("/webhook-payment", paymentHandler.HandleWebhook)
	api.Get("/balance", accountHandler.GetBalance)
	api.Get("/transactions", accountHandler.GetTransactions)

	app.Get("/healthz", handlers.Health)
}
