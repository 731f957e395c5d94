package receipt

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages business receipt persistence
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	GetByReference(ctx context.Context, reference string) (*Receipt, error)
	GetByVehicleID(ctx context.Context, vehicleID uuid.UUID, limit, offset int) ([]*Receipt, error)
}

// ErrReceiptNotFound indicates a missing receipt
type ErrReceiptNotFound struct {
	Reference string
}

func (e ErrReceiptNotFound) Error() string {
	return "receipt not found: " + e.Reference
}

// Is implements the errors.Is interface for ErrReceiptNotFound
func (e ErrReceiptNotFound) Is(target error) bool {
	t, ok := target.(ErrReceiptNotFound)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}
