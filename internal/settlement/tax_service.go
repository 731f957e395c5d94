package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/outbox"
	"github.com/revenue-collection-core/internal/domain/paymenttype"
	"github.com/revenue-collection-core/internal/domain/receipt"
	"github.com/revenue-collection-core/internal/domain/registry"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/platform/persistence"
)

// PaymentTypeVehicleTax names the payment type configuration the tax flow
// splits its proceeds by.
const PaymentTypeVehicleTax = "vehicle_daily_tax"

// PayTaxRequest carries one synchronous tax payment
type PayTaxRequest struct {
	CollectorID uuid.UUID
	VehicleID   uuid.UUID
	Units       int // Number of daily units paid for
	Actor       string
}

// TaxService debits a collector's deposit wallet and distributes the proceeds
// to beneficiaries in one atomic region, with no webhook round-trip.
type TaxService struct {
	tx           persistence.TxRunner
	maxAttempts  int
	wallets      wallet.Repository
	ledgerOps    *LedgerService
	engine       *DistributionEngine
	paymentTypes paymenttype.Repository
	registryRepo registry.Repository
	receipts     receipt.Repository
	outboxRepo   outbox.Repository
	resolver     *BeneficiaryResolver
	logger       *slog.Logger
}

// NewTaxService creates the synchronous tax payment service
func NewTaxService(
	logger *slog.Logger,
	tx persistence.TxRunner,
	maxAttempts int,
	wallets wallet.Repository,
	ledgerOps *LedgerService,
	engine *DistributionEngine,
	paymentTypes paymenttype.Repository,
	registryRepo registry.Repository,
	receipts receipt.Repository,
	outboxRepo outbox.Repository,
	resolver *BeneficiaryResolver,
) *TaxService {
	return &TaxService{
		tx:           tx,
		maxAttempts:  maxAttempts,
		wallets:      wallets,
		ledgerOps:    ledgerOps,
		engine:       engine,
		paymentTypes: paymentTypes,
		registryRepo: registryRepo,
		receipts:     receipts,
		outboxRepo:   outboxRepo,
		resolver:     resolver,
		logger:       logger,
	}
}

// PayTax validates the collector's deposit balance, debits unitAmount*units,
// distributes to beneficiaries, extends the vehicle's paid-until window and
// writes the receipt. A failure at any step leaves no partial debit or
// partial payout; transient store conflicts retry the whole unit of work.
func (s *TaxService) PayTax(ctx context.Context, req PayTaxRequest) (*receipt.Receipt, error) {
	if req.Units <= 0 {
		return nil, shared.Ef(shared.KindValidation, "number of units must be positive, got %d", req.Units)
	}
	if req.CollectorID == uuid.Nil {
		return nil, shared.E(shared.KindValidation, "collector ID is required")
	}
	if req.VehicleID == uuid.Nil {
		return nil, shared.E(shared.KindValidation, "vehicle ID is required")
	}

	var rec *receipt.Receipt
	err := persistence.RunWithRetry(ctx, s.maxAttempts, nil, func(ctx context.Context) error {
		return s.tx.Atomic(ctx, func(ctx context.Context) error {
			var err error
			rec, err = s.payTax(ctx, req)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tax payment settled",
		"reference", rec.Reference,
		"collector_id", req.CollectorID.String(),
		"vehicle_id", req.VehicleID.String(),
		"amount", rec.Amount,
		"days_paid", rec.DaysPaid,
	)
	return rec, nil
}

func (s *TaxService) payTax(ctx context.Context, req PayTaxRequest) (*receipt.Receipt, error) {
	pt, err := s.paymentTypes.GetByName(ctx, PaymentTypeVehicleTax)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.registryRepo.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.Active {
		return nil, shared.Ef(shared.KindValidation, "vehicle %s is not active", req.VehicleID)
	}

	// A removed owner's wallets are filtered out by the repository, so an
	// inactive collector surfaces here as not-found.
	deposit, err := s.wallets.GetByOwnerAndKind(ctx, req.CollectorID, shared.WalletKindDeposit)
	if err != nil {
		return nil, err
	}

	gross := pt.BaseAmount * int64(req.Units)
	if !deposit.CanDebit(gross) {
		return nil, shared.Ef(shared.KindInsufficientFunds, "available balance %d is below tax amount %d", deposit.Available(), gross)
	}

	reference := uuid.New().String()
	debitMeta := TxMeta{
		Type:        shared.TransactionTypePayment,
		FromAccount: req.CollectorID.String(),
		ToAccount:   "revenue",
		Reference:   reference,
		Description: fmt.Sprintf("tax payment for vehicle %s, %d day(s)", req.VehicleID, req.Units),
	}
	if _, err := s.ledgerOps.Debit(ctx, deposit.ID, gross, debitMeta, req.Actor); err != nil {
		return nil, err
	}

	accounts := s.resolver.Resolve(req.CollectorID, vehicle.AssociationID)
	shares, err := s.engine.Distribute(ctx, pt, accounts, gross, req.CollectorID.String(), reference, req.Actor)
	if err != nil {
		return nil, err
	}

	if _, err := s.registryRepo.ExtendPaidUntil(ctx, req.VehicleID, req.Units, time.Now()); err != nil {
		return nil, err
	}

	vehicleID := req.VehicleID
	rec := &receipt.Receipt{
		ID:            uuid.New(),
		Amount:        gross,
		DaysPaid:      req.Units,
		Beneficiaries: shares,
		Status:        shared.TransactionStatusSuccessful,
		Reference:     reference,
		VehicleID:     &vehicleID,
		ProcessedBy:   req.Actor,
		CreatedAt:     time.Now(),
	}
	if err := s.receipts.Create(ctx, rec); err != nil {
		return nil, err
	}

	msg, err := outbox.NewMessage(outbox.EventReceiptCreated, reference, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox message: %w", err)
	}
	if err := s.outboxRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	return rec, nil
}
