package wallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// Wallet holds a participant's balance for one wallet kind. Balances are
// stored in minor currency units and mutated only through ledger operations.
type Wallet struct {
	ID          uuid.UUID         `json:"id" bson:"_id"`
	OwnerID     uuid.UUID         `json:"owner_id" bson:"owner_id"`
	Kind        shared.WalletKind `json:"kind" bson:"kind"`
	Balance     int64             `json:"balance" bson:"balance"`
	HeldBalance int64             `json:"held_balance" bson:"held_balance"`
	Removed     bool              `json:"removed" bson:"removed"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at"`
}

// New creates a zero-balance wallet for the given owner and kind
func New(ownerID uuid.UUID, kind shared.WalletKind) *Wallet {
	now := time.Now()
	return &Wallet{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Available returns balance minus held balance. It must be recomputed from a
// wallet read inside the active transaction, never cached across one.
func (w *Wallet) Available() int64 {
	return w.Balance - w.HeldBalance
}

// CanDebit reports whether the available balance covers the amount
func (w *Wallet) CanDebit(amount int64) bool {
	return amount > 0 && w.Available() >= amount
}
