package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// Entry is the immutable record paired with every wallet balance mutation.
// Reference is globally unique and doubles as the idempotency key for
// externally sourced events. Entries are never updated in place; corrections
// happen through explicit reversal entries.
type Entry struct {
	ID          uuid.UUID                `json:"id" bson:"_id"`
	Type        shared.TransactionType   `json:"type" bson:"type"`
	FromAccount string                   `json:"from_account" bson:"from_account"`
	ToAccount   string                   `json:"to_account" bson:"to_account"`
	WalletID    uuid.UUID                `json:"wallet_id" bson:"wallet_id"`
	Amount      int64                    `json:"amount" bson:"amount"` // Minor units, always > 0
	Reference   string                   `json:"reference" bson:"reference"`
	Description string                   `json:"description" bson:"description"`
	Status      shared.TransactionStatus `json:"status" bson:"status"`
	ProcessedBy string                   `json:"processed_by" bson:"processed_by"`
	CreatedAt   time.Time                `json:"created_at" bson:"created_at"`
}

// NewEntry builds a ledger entry with a generated ID and timestamp.
// An empty reference gets a generated one so every entry is addressable.
func NewEntry(txType shared.TransactionType, walletID uuid.UUID, from, to string, amount int64, reference, description, processedBy string, status shared.TransactionStatus) *Entry {
	if reference == "" {
		reference = uuid.New().String()
	}
	return &Entry{
		ID:          uuid.New(),
		Type:        txType,
		FromAccount: from,
		ToAccount:   to,
		WalletID:    walletID,
		Amount:      amount,
		Reference:   reference,
		Description: description,
		Status:      status,
		ProcessedBy: processedBy,
		CreatedAt:   time.Now(),
	}
}
