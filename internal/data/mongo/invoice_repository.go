package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revenue-collection-core/internal/domain/invoice"
	"github.com/revenue-collection-core/internal/domain/shared"
)

const (
	// InvoiceCollectionName is the name of the invoice collection in MongoDB
	InvoiceCollectionName = "invoices"
)

// InvoiceRepository implements the invoice.Repository interface for MongoDB
type InvoiceRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewInvoiceRepository creates a new MongoDB invoice repository
func NewInvoiceRepository(logger *slog.Logger, db *mongo.Database) invoice.Repository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new pending invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	collection := r.db.Collection(InvoiceCollectionName)

	_, err := collection.InsertOne(ctx, inv)
	if err != nil {
		r.logger.Error("Failed to create invoice",
			"reference", inv.Reference,
			"error", err)
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// GetByReference retrieves an invoice by its unique reference
func (r *InvoiceRepository) GetByReference(ctx context.Context, reference string) (*invoice.Invoice, error) {
	collection := r.db.Collection(InvoiceCollectionName)

	filter := bson.M{"reference": reference}
	var inv invoice.Invoice
	err := collection.FindOne(ctx, filter).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, invoice.ErrInvoiceNotFound{Reference: reference}
		}
		r.logger.Error("Failed to get invoice", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &inv, nil
}

// MarkPaid transitions a Pending invoice to Paid. The Pending filter makes
// the transition single-shot: a second caller matches nothing and gets
// ErrInvalidTransition.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, reference string) error {
	collection := r.db.Collection(InvoiceCollectionName)

	filter := bson.M{"reference": reference, "status": shared.InvoiceStatusPending}
	update := bson.M{
		"$set": bson.M{
			"status":     shared.InvoiceStatusPaid,
			"updated_at": time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to mark invoice paid", "reference", reference, "error", err)
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	if result.MatchedCount == 0 {
		inv, getErr := r.GetByReference(ctx, reference)
		if getErr != nil {
			return getErr
		}
		return invoice.ErrInvalidTransition{Reference: reference, From: inv.Status, To: shared.InvoiceStatusPaid}
	}

	return nil
}

// UpdateStatus applies Pending->Cancelled or Pending->Expired transitions.
// Transitions out of Paid are forbidden.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, reference string, status shared.InvoiceStatus) error {
	if status != shared.InvoiceStatusCancelled && status != shared.InvoiceStatusExpired {
		return fmt.Errorf("unsupported invoice status transition to %s", status)
	}

	collection := r.db.Collection(InvoiceCollectionName)

	filter := bson.M{"reference": reference, "status": shared.InvoiceStatusPending}
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update invoice status",
			"reference", reference,
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to update invoice status: %w", err)
	}

	if result.MatchedCount == 0 {
		inv, getErr := r.GetByReference(ctx, reference)
		if getErr != nil {
			return getErr
		}
		return invoice.ErrInvalidTransition{Reference: reference, From: inv.Status, To: status}
	}

	return nil
}
