package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// Repository defines wallet persistence operations. Balance mutations are
// expressed as atomic increments applied by the store, not read-then-write.
type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)
	GetByOwnerAndKind(ctx context.Context, ownerID uuid.UUID, kind shared.WalletKind) (*Wallet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Wallet, error)

	// IncrementBalance applies a signed delta to the balance
	IncrementBalance(ctx context.Context, id uuid.UUID, delta int64) error
	// IncrementHeld applies a signed delta to the held balance
	IncrementHeld(ctx context.Context, id uuid.UUID, delta int64) error
	// ResetHeld forces the held balance to zero and returns the previous value
	ResetHeld(ctx context.Context, id uuid.UUID) (int64, error)
	// SoftRemove marks the owner's wallets removed without deleting them
	SoftRemove(ctx context.Context, ownerID uuid.UUID) error
}

// ErrWalletNotFound indicates a missing wallet
type ErrWalletNotFound struct {
	WalletID uuid.UUID
}

func (e ErrWalletNotFound) Error() string {
	return "wallet not found: " + e.WalletID.String()
}

// Is implements the errors.Is interface for ErrWalletNotFound
func (e ErrWalletNotFound) Is(target error) bool {
	t, ok := target.(ErrWalletNotFound)
	if !ok {
		return false
	}
	if t.WalletID == uuid.Nil {
		return true
	}
	return e.WalletID == t.WalletID
}

// ErrDuplicateWallet indicates the (owner, kind) pair already has a wallet
type ErrDuplicateWallet struct {
	OwnerID uuid.UUID
	Kind    shared.WalletKind
}

func (e ErrDuplicateWallet) Error() string {
	return "wallet already exists for owner " + e.OwnerID.String() + " kind " + string(e.Kind)
}
