package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// Event kinds carried by outbox messages
const (
	EventReceiptCreated    = "RECEIPT_CREATED"
	EventWalletFunded      = "WALLET_FUNDED"
	EventWithdrawalSettled = "WITHDRAWAL_SETTLED"
)

// Message stores a settlement event for reliable publishing. Messages are
// written inside the same atomic region as the mutation they describe, so a
// committed transaction always leaves an event behind.
type Message struct {
	ID            uuid.UUID           `json:"id" bson:"_id"`
	Kind          string              `json:"kind" bson:"kind"`
	Reference     string              `json:"reference" bson:"reference"`
	Payload       json.RawMessage     `json:"payload" bson:"payload"`
	Status        shared.OutboxStatus `json:"status" bson:"status"`
	Attempts      int                 `json:"attempts" bson:"attempts"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty" bson:"last_attempt_at,omitempty"`
}

// NewMessage builds a pending outbox message carrying the given payload
func NewMessage(kind, reference string, payload interface{}) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.New(),
		Kind:      kind,
		Reference: reference,
		Payload:   raw,
		Status:    shared.OutboxStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// Repository manages outbox message persistence
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status shared.OutboxStatus) error
}
