package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/invoice"
	"github.com/revenue-collection-core/internal/domain/registry"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/paygate"
)

// CreateInvoiceRequest asks for a payable invoice to be issued
type CreateInvoiceRequest struct {
	Type      shared.InvoiceType
	Amount    int64
	OwnerID   uuid.UUID
	VehicleID *uuid.UUID
	DriverID  *uuid.UUID
}

// InvoiceService issues invoices at the payment gateway and mirrors them
// locally. Activation on payment is the funding processor's job; this
// service only manages the pending side of the lifecycle.
type InvoiceService struct {
	invoices     invoice.Repository
	wallets      wallet.Repository
	registryRepo registry.Repository
	gateway      paygate.Client
	logger       *slog.Logger
}

// NewInvoiceService creates the invoice issuance service
func NewInvoiceService(
	logger *slog.Logger,
	invoices invoice.Repository,
	wallets wallet.Repository,
	registryRepo registry.Repository,
	gateway paygate.Client,
) *InvoiceService {
	return &InvoiceService{
		invoices:     invoices,
		wallets:      wallets,
		registryRepo: registryRepo,
		gateway:      gateway,
		logger:       logger,
	}
}

// Create validates the invoice target, issues the invoice at the gateway and
// stores the pending mirror. The gateway call happens first: a local write
// without a gateway invoice would never receive a payment webhook.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*invoice.Invoice, *paygate.CreatedInvoice, error) {
	if req.Amount <= 0 {
		return nil, nil, shared.Ef(shared.KindValidation, "invoice amount must be positive, got %d", req.Amount)
	}
	if req.OwnerID == uuid.Nil {
		return nil, nil, shared.E(shared.KindValidation, "owner ID is required")
	}

	var description string
	switch req.Type {
	case shared.InvoiceTypeWalletFunding:
		if _, err := s.wallets.GetByOwnerAndKind(ctx, req.OwnerID, shared.WalletKindDeposit); err != nil {
			return nil, nil, err
		}
		description = fmt.Sprintf("wallet funding for %s", req.OwnerID)
	case shared.InvoiceTypeVehicleLevy:
		if req.VehicleID == nil {
			return nil, nil, shared.E(shared.KindValidation, "vehicle ID is required for a levy invoice")
		}
		if _, err := s.registryRepo.GetVehicle(ctx, *req.VehicleID); err != nil {
			return nil, nil, err
		}
		description = fmt.Sprintf("activation levy for vehicle %s", req.VehicleID)
	case shared.InvoiceTypeDriverPermit:
		if req.DriverID == nil {
			return nil, nil, shared.E(shared.KindValidation, "driver ID is required for a permit invoice")
		}
		if _, err := s.registryRepo.GetDriver(ctx, *req.DriverID); err != nil {
			return nil, nil, err
		}
		description = fmt.Sprintf("permit for driver %s", req.DriverID)
	default:
		return nil, nil, shared.Ef(shared.KindValidation, "unknown invoice type %q", req.Type)
	}

	reference := uuid.New().String()
	created, err := s.gateway.CreateInvoice(ctx, req.Amount, reference, description)
	if err != nil {
		return nil, nil, err
	}

	inv := invoice.New(req.Type, req.Amount, reference, invoice.Metadata{
		OwnerID:   req.OwnerID,
		VehicleID: req.VehicleID,
		DriverID:  req.DriverID,
	})
	if err := s.invoices.Create(ctx, inv); err != nil {
		// Best effort: void the orphaned gateway invoice so it cannot be paid.
		if cancelErr := s.gateway.CancelInvoice(ctx, reference); cancelErr != nil {
			s.logger.Error("Failed to cancel orphaned gateway invoice", "reference", reference, "error", cancelErr)
		}
		return nil, nil, err
	}

	s.logger.Info("Invoice created",
		"reference", reference,
		"type", string(req.Type),
		"amount", req.Amount,
	)
	return inv, created, nil
}

// Get returns the local mirror of an invoice
func (s *InvoiceService) Get(ctx context.Context, reference string) (*invoice.Invoice, error) {
	return s.invoices.GetByReference(ctx, reference)
}

// Cancel voids a pending invoice at the gateway and locally. Paid invoices
// cannot be cancelled; the store rejects the transition.
func (s *InvoiceService) Cancel(ctx context.Context, reference string) error {
	inv, err := s.invoices.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if inv.Status != shared.InvoiceStatusPending {
		return shared.Ef(shared.KindValidation, "invoice %s is %s and cannot be cancelled", reference, inv.Status)
	}

	if err := s.gateway.CancelInvoice(ctx, reference); err != nil {
		return err
	}

	if err := s.invoices.UpdateStatus(ctx, reference, shared.InvoiceStatusCancelled); err != nil {
		return err
	}

	s.logger.Info("Invoice cancelled", "reference", reference)
	return nil
}
