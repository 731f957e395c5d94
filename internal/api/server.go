// Package api exposes the platform's HTTP surface: wallet, tax, invoice and
// withdrawal operations plus the gateway webhook endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revenue-collection-core/internal/api/handler"
	"github.com/revenue-collection-core/internal/config"
	"github.com/revenue-collection-core/internal/events"
	"github.com/revenue-collection-core/internal/settlement"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	walletService *settlement.WalletService,
	ledgerOps *settlement.LedgerService,
	taxService *settlement.TaxService,
	invoiceService *settlement.InvoiceService,
	withdrawalService *settlement.WithdrawalService,
	fundingProcessor *events.FundingProcessor,
	disbursementProcessor *events.DisbursementProcessor,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	walletHandler := handler.NewWalletHandler(log, walletService, ledgerOps)
	taxHandler := handler.NewTaxHandler(log, taxService)
	invoiceHandler := handler.NewInvoiceHandler(log, invoiceService)
	withdrawalHandler := handler.NewWithdrawalHandler(log, withdrawalService)
	webhookHandler := handler.NewWebhookHandler(log, fundingProcessor, disbursementProcessor)

	setupRouter(log, httpRouter, walletHandler, taxHandler, invoiceHandler, withdrawalHandler, webhookHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
