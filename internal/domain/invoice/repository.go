package invoice

import (
	"context"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// Repository manages invoice persistence. MarkPaid enforces the single
// Pending->Paid transition at the store level.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByReference(ctx context.Context, reference string) (*Invoice, error)
	// MarkPaid transitions a Pending invoice to Paid. Returns
	// ErrInvalidTransition if the invoice is not Pending.
	MarkPaid(ctx context.Context, reference string) error
	// UpdateStatus applies Pending->Cancelled or Pending->Expired transitions
	UpdateStatus(ctx context.Context, reference string, status shared.InvoiceStatus) error
}

// ErrInvoiceNotFound indicates a missing invoice
type ErrInvoiceNotFound struct {
	Reference string
}

func (e ErrInvoiceNotFound) Error() string {
	return "invoice not found: " + e.Reference
}

// Is implements the errors.Is interface for ErrInvoiceNotFound
func (e ErrInvoiceNotFound) Is(target error) bool {
	t, ok := target.(ErrInvoiceNotFound)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}

// ErrInvalidTransition indicates an attempted transition out of a terminal
// state or a duplicate Pending->Paid transition.
type ErrInvalidTransition struct {
	Reference string
	From      shared.InvoiceStatus
	To        shared.InvoiceStatus
}

func (e ErrInvalidTransition) Error() string {
	return "invalid invoice transition for " + e.Reference + ": " + string(e.From) + " -> " + string(e.To)
}

// Is implements the errors.Is interface for ErrInvalidTransition
func (e ErrInvalidTransition) Is(target error) bool {
	t, ok := target.(ErrInvalidTransition)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}
