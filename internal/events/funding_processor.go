package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/invoice"
	"github.com/revenue-collection-core/internal/domain/ledger"
	"github.com/revenue-collection-core/internal/domain/outbox"
	"github.com/revenue-collection-core/internal/domain/paymenttype"
	"github.com/revenue-collection-core/internal/domain/receipt"
	"github.com/revenue-collection-core/internal/domain/registry"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/paygate"
	"github.com/revenue-collection-core/internal/platform/persistence"
	"github.com/revenue-collection-core/internal/settlement"
)

// Payment type configurations consulted when a paid invoice distributes
const (
	PaymentTypeVehicleLevy  = "vehicle_activation_levy"
	PaymentTypeDriverPermit = "driver_permit_fee"
)

// VehicleStartingQuotaDays is the levy quota granted when a vehicle activates
const VehicleStartingQuotaDays = 30

// DriverPermitValidity is how long a freshly paid permit remains valid
const DriverPermitValidity = 365 * 24 * time.Hour

// FundingEvent is the gateway's payment notification payload
type FundingEvent struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// FundingProcessor applies gateway payment webhooks: it verifies the event
// against the gateway (never trusting the webhook amount), marks the invoice
// paid exactly once, and activates whatever the invoice paid for.
type FundingProcessor struct {
	secret       []byte
	tx           persistence.TxRunner
	maxAttempts  int
	gateway      paygate.Client
	invoices     invoice.Repository
	wallets      wallet.Repository
	entries      ledger.Repository
	ledgerOps    *settlement.LedgerService
	engine       *settlement.DistributionEngine
	resolver     *settlement.BeneficiaryResolver
	paymentTypes paymenttype.Repository
	registryRepo registry.Repository
	receipts     receipt.Repository
	outboxRepo   outbox.Repository
	logger       *slog.Logger
}

// NewFundingProcessor creates the payment webhook processor
func NewFundingProcessor(
	logger *slog.Logger,
	secret string,
	tx persistence.TxRunner,
	maxAttempts int,
	gateway paygate.Client,
	invoices invoice.Repository,
	wallets wallet.Repository,
	entries ledger.Repository,
	ledgerOps *settlement.LedgerService,
	engine *settlement.DistributionEngine,
	resolver *settlement.BeneficiaryResolver,
	paymentTypes paymenttype.Repository,
	registryRepo registry.Repository,
	receipts receipt.Repository,
	outboxRepo outbox.Repository,
) *FundingProcessor {
	return &FundingProcessor{
		secret:       []byte(secret),
		tx:           tx,
		maxAttempts:  maxAttempts,
		gateway:      gateway,
		invoices:     invoices,
		wallets:      wallets,
		entries:      entries,
		ledgerOps:    ledgerOps,
		engine:       engine,
		resolver:     resolver,
		paymentTypes: paymentTypes,
		registryRepo: registryRepo,
		receipts:     receipts,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// Process handles one raw webhook delivery. Signature verification comes
// first; then the event is verified against the gateway; then applied in one
// atomic region keyed on the invoice reference for idempotency. Duplicate
// deliveries return a DUPLICATE_EVENT error with no side effects.
func (p *FundingProcessor) Process(ctx context.Context, body []byte, signature string) error {
	if err := VerifySignature(p.secret, body, signature); err != nil {
		return err
	}

	var event FundingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return shared.Wrap(shared.KindValidation, "malformed funding event payload", err)
	}
	if event.Reference == "" {
		return shared.E(shared.KindValidation, "funding event is missing a reference")
	}

	inv, err := p.invoices.GetByReference(ctx, event.Reference)
	if err != nil {
		if errors.As(err, &invoice.ErrInvoiceNotFound{}) {
			return shared.Wrap(shared.KindValidation, "funding event references an unknown invoice", err)
		}
		return err
	}
	if inv.Status == shared.InvoiceStatusPaid {
		return shared.Ef(shared.KindDuplicateEvent, "invoice %s is already paid", event.Reference)
	}

	// The webhook body is advisory. The gateway's verification endpoint is
	// the authority on both status and amount.
	verification, err := p.gateway.VerifyStatus(ctx, event.Reference)
	if err != nil {
		return err
	}
	if verification.Status != paygate.StatusPaid {
		return shared.Ef(shared.KindValidation, "gateway reports invoice %s as %s, not PAID", event.Reference, verification.Status)
	}
	if verification.Amount != inv.Amount {
		return shared.Ef(shared.KindValidation, "gateway amount %d does not match invoice amount %d for %s", verification.Amount, inv.Amount, event.Reference)
	}

	err = persistence.RunWithRetry(ctx, p.maxAttempts, nil, func(ctx context.Context) error {
		return p.tx.Atomic(ctx, func(ctx context.Context) error {
			return p.apply(ctx, inv)
		})
	})
	if err != nil {
		return err
	}

	p.logger.Info("Funding event applied",
		"reference", event.Reference,
		"type", string(inv.Type),
		"amount", inv.Amount,
	)
	return nil
}

func (p *FundingProcessor) apply(ctx context.Context, inv *invoice.Invoice) error {
	// MarkPaid is the idempotency gate: a concurrent duplicate loses the
	// Pending->Paid race inside the store and surfaces here.
	if err := p.invoices.MarkPaid(ctx, inv.Reference); err != nil {
		if errors.As(err, &invoice.ErrInvalidTransition{}) {
			return shared.Wrap(shared.KindDuplicateEvent, "invoice already transitioned", err)
		}
		return err
	}

	switch inv.Type {
	case shared.InvoiceTypeWalletFunding:
		return p.applyWalletFunding(ctx, inv)
	case shared.InvoiceTypeVehicleLevy:
		return p.applyVehicleLevy(ctx, inv)
	case shared.InvoiceTypeDriverPermit:
		return p.applyDriverPermit(ctx, inv)
	default:
		return shared.Ef(shared.KindValidation, "invoice %s has unknown type %q", inv.Reference, inv.Type)
	}
}

func (p *FundingProcessor) applyWalletFunding(ctx context.Context, inv *invoice.Invoice) error {
	deposit, err := p.wallets.GetByOwnerAndKind(ctx, inv.Metadata.OwnerID, shared.WalletKindDeposit)
	if err != nil {
		return err
	}

	meta := settlement.TxMeta{
		Type:        shared.TransactionTypeFunding,
		FromAccount: "gateway",
		ToAccount:   inv.Metadata.OwnerID.String(),
		Reference:   inv.Reference,
		Description: "wallet funding via gateway invoice",
	}
	if _, err := p.ledgerOps.Credit(ctx, deposit.ID, inv.Amount, meta, "gateway"); err != nil {
		if errors.As(err, &ledger.ErrDuplicateEntry{}) {
			return shared.Wrap(shared.KindDuplicateEvent, "funding already recorded", err)
		}
		return err
	}

	msg, err := outbox.NewMessage(outbox.EventWalletFunded, inv.Reference, map[string]interface{}{
		"reference": inv.Reference,
		"owner_id":  inv.Metadata.OwnerID,
		"amount":    inv.Amount,
	})
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	return p.outboxRepo.Create(ctx, msg)
}

func (p *FundingProcessor) applyVehicleLevy(ctx context.Context, inv *invoice.Invoice) error {
	vehicle, err := p.registryRepo.GetVehicle(ctx, *inv.Metadata.VehicleID)
	if err != nil {
		return err
	}

	if err := p.registryRepo.ActivateVehicle(ctx, vehicle.ID, VehicleStartingQuotaDays); err != nil {
		return err
	}

	return p.distribute(ctx, inv, PaymentTypeVehicleLevy, vehicle.CollectorID, vehicle.AssociationID, inv.Metadata.VehicleID, nil)
}

func (p *FundingProcessor) applyDriverPermit(ctx context.Context, inv *invoice.Invoice) error {
	driver, err := p.registryRepo.GetDriver(ctx, *inv.Metadata.DriverID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := p.registryRepo.SetPermitWindow(ctx, driver.ID, now, now.Add(DriverPermitValidity)); err != nil {
		return err
	}

	return p.distribute(ctx, inv, PaymentTypeDriverPermit, uuid.Nil, driver.AssociationID, nil, inv.Metadata.DriverID)
}

func (p *FundingProcessor) distribute(ctx context.Context, inv *invoice.Invoice, typeName string, collectorID, associationID uuid.UUID, vehicleID, driverID *uuid.UUID) error {
	pt, err := p.paymentTypes.GetByName(ctx, typeName)
	if err != nil {
		return err
	}

	accounts := p.resolver.Resolve(collectorID, associationID)
	shares, err := p.engine.Distribute(ctx, pt, accounts, inv.Amount, "gateway", inv.Reference, "gateway")
	if err != nil {
		return err
	}

	rec := &receipt.Receipt{
		ID:            uuid.New(),
		Amount:        inv.Amount,
		Beneficiaries: shares,
		Status:        shared.TransactionStatusSuccessful,
		Reference:     inv.Reference,
		VehicleID:     vehicleID,
		DriverID:      driverID,
		ProcessedBy:   "gateway",
		CreatedAt:     time.Now(),
	}
	if err := p.receipts.Create(ctx, rec); err != nil {
		return err
	}

	msg, err := outbox.NewMessage(outbox.EventReceiptCreated, inv.Reference, rec)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	return p.outboxRepo.Create(ctx, msg)
}
