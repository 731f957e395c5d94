package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panjf2000/ants/v2"

	"github.com/revenue-collection-core/internal/api"
	"github.com/revenue-collection-core/internal/config"
	"github.com/revenue-collection-core/internal/data/mongo"
	"github.com/revenue-collection-core/internal/data/postgres"
	"github.com/revenue-collection-core/internal/events"
	"github.com/revenue-collection-core/internal/logger"
	"github.com/revenue-collection-core/internal/otp"
	"github.com/revenue-collection-core/internal/paygate"
	"github.com/revenue-collection-core/internal/platform/cache"
	"github.com/revenue-collection-core/internal/platform/messaging/producers"
	"github.com/revenue-collection-core/internal/platform/persistence"
	"github.com/revenue-collection-core/internal/settlement"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisCache, err := cache.NewRedis(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for settlement events
	settlementProducer, err := producers.NewSettlementEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize settlement event producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	walletRepo := mongo.NewWalletRepository(log, mongoDB.Database())
	ledgerRepo := mongo.NewLedgerRepository(log, mongoDB.Database())
	invoiceRepo := mongo.NewInvoiceRepository(log, mongoDB.Database())
	paymentTypeRepo := mongo.NewPaymentTypeRepository(log, mongoDB.Database())
	receiptRepo := mongo.NewReceiptRepository(log, mongoDB.Database())
	registryRepo := mongo.NewRegistryRepository(log, mongoDB.Database())
	outboxRepo := mongo.NewOutboxRepository(log, mongoDB.Database())
	withdrawalRepo := mongo.NewWithdrawalRepository(log, mongoDB.Database())
	auditRepo := postgres.NewAuditRepository(log, postgresDB)

	// Initialize the payment gateway client and OTP store
	gateway := paygate.NewHTTPClient(log, &cfg.Gateway)
	otpStore := otp.NewStore(log, redisCache.Client(), &cfg.OTP)

	// Initialize beneficiary resolution
	resolver, err := settlement.NewBeneficiaryResolver(&cfg.Beneficiaries)
	if err != nil {
		log.Error("Failed to initialize beneficiary resolver", "error", err)
		os.Exit(1)
	}

	// Initialize settlement services
	maxAttempts := cfg.Retry.MaxAttempts
	ledgerOps := settlement.NewLedgerService(log, walletRepo, ledgerRepo, auditRepo)
	engine := settlement.NewDistributionEngine(log, walletRepo, ledgerOps)
	walletService := settlement.NewWalletService(log, mongoDB, maxAttempts, walletRepo, ledgerRepo)
	taxService := settlement.NewTaxService(log, mongoDB, maxAttempts, walletRepo, ledgerOps, engine, paymentTypeRepo, registryRepo, receiptRepo, outboxRepo, resolver)
	invoiceService := settlement.NewInvoiceService(log, invoiceRepo, walletRepo, registryRepo, gateway)
	withdrawalService := settlement.NewWithdrawalService(log, mongoDB, maxAttempts, walletRepo, ledgerOps, withdrawalRepo, otpStore, gateway, auditRepo)

	// Initialize webhook processors
	fundingProcessor := events.NewFundingProcessor(
		log, cfg.Gateway.WebhookSecret, mongoDB, maxAttempts, gateway,
		invoiceRepo, walletRepo, ledgerRepo, ledgerOps, engine, resolver,
		paymentTypeRepo, registryRepo, receiptRepo, outboxRepo,
	)
	disbursementProcessor := events.NewDisbursementProcessor(
		log, cfg.Gateway.WebhookSecret, mongoDB, maxAttempts,
		withdrawalRepo, ledgerRepo, ledgerOps, outboxRepo, auditRepo,
	)

	// Initialize the worker pool and outbox poller
	pool, err := ants.NewPool(cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	poller := events.NewOutboxPoller(log, outboxRepo, settlementProducer, pool, &cfg.Outbox)
	go poller.Start(appCtx)

	// Initialize REST server
	server := api.NewServer(log, cfg, walletService, ledgerOps, taxService, invoiceService, withdrawalService, fundingProcessor, disbursementProcessor)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context to stop the poller
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	pool.Release()

	if err = settlementProducer.Close(); err != nil {
		log.Error("Error closing settlement event producer", "error", err)
	}

	if err = redisCache.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
