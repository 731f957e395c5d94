package withdrawal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status values for a withdrawal's lifecycle
type Status string

const (
	StatusRequested  Status = "REQUESTED"  // Funds held, awaiting OTP authorization
	StatusAuthorized Status = "AUTHORIZED" // Transfer initiated, awaiting gateway confirmation
	StatusSettled    Status = "SETTLED"    // Gateway confirmed, funds debited and released
	StatusFailed     Status = "FAILED"     // Gateway reported failure, funds remain held
)

// Withdrawal tracks a held-balance reservation from request through external
// settlement. Reference is the idempotency key shared with the gateway.
type Withdrawal struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	WalletID    uuid.UUID `json:"wallet_id" bson:"wallet_id"`
	OwnerID     uuid.UUID `json:"owner_id" bson:"owner_id"`
	Amount      int64     `json:"amount" bson:"amount"`
	Destination string    `json:"destination" bson:"destination"`
	Reference   string    `json:"reference" bson:"reference"`
	Status      Status    `json:"status" bson:"status"`
	RequestedBy string    `json:"requested_by" bson:"requested_by"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Repository manages withdrawal persistence
type Repository interface {
	Create(ctx context.Context, w *Withdrawal) error
	GetByReference(ctx context.Context, reference string) (*Withdrawal, error)
	UpdateStatus(ctx context.Context, reference string, status Status) error
}

// ErrWithdrawalNotFound indicates a missing withdrawal
type ErrWithdrawalNotFound struct {
	Reference string
}

func (e ErrWithdrawalNotFound) Error() string {
	return "withdrawal not found: " + e.Reference
}

// Is implements the errors.Is interface for ErrWithdrawalNotFound
func (e ErrWithdrawalNotFound) Is(target error) bool {
	t, ok := target.(ErrWithdrawalNotFound)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}
