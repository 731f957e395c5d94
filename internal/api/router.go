package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/revenue-collection-core/internal/api/handler"
	"github.com/revenue-collection-core/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	walletHandler *handler.WalletHandler,
	taxHandler *handler.TaxHandler,
	invoiceHandler *handler.InvoiceHandler,
	withdrawalHandler *handler.WithdrawalHandler,
	webhookHandler *handler.WebhookHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Actor())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Wallet operations
		wallets := v1.Group("/wallets")
		{
			wallets.POST("", walletHandler.Provision)
			wallets.GET("/:owner", walletHandler.GetByOwner)
			wallets.GET("/:owner/transactions", walletHandler.GetTransactions)
			wallets.POST("/:owner/held/reset", walletHandler.ResetHeld)
		}

		// Synchronous tax payments
		taxes := v1.Group("/taxes")
		{
			taxes.POST("/pay", taxHandler.Pay)
		}

		// Invoice operations
		invoices := v1.Group("/invoices")
		{
			invoices.POST("", invoiceHandler.Create)
			invoices.GET("/:reference", invoiceHandler.Get)
			invoices.POST("/:reference/cancel", invoiceHandler.Cancel)
		}

		// Withdrawal lifecycle
		withdrawals := v1.Group("/withdrawals")
		{
			withdrawals.POST("", withdrawalHandler.Request)
			withdrawals.POST("/authorize", withdrawalHandler.Authorize)
		}

		// Gateway webhooks
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/funding", webhookHandler.Funding)
			webhooks.POST("/disbursement", webhookHandler.Disbursement)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
