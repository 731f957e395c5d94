package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages ledger entry persistence with pagination support
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByReference(ctx context.Context, reference string) (*Entry, error)
	GetByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error)
}

// ErrEntryNotFound indicates a missing ledger entry
type ErrEntryNotFound struct {
	Reference string
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.Reference
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}

// ErrDuplicateEntry indicates reference uniqueness violation
type ErrDuplicateEntry struct {
	Reference string
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.Reference
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}
