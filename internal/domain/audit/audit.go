package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the administrative audit trail
const (
	ActionHeldBalanceReset       = "HELD_BALANCE_RESET"
	ActionWithdrawalAuthorized   = "WITHDRAWAL_AUTHORIZED"
	ActionDisbursementReconciled = "DISBURSEMENT_RECONCILED"
)

// Record captures who did what to which wallet. Held-balance resets have no
// mandated ledger entry, so this trail is their only audit surface.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	WalletID  uuid.UUID `json:"wallet_id"`
	Amount    int64     `json:"amount"`
	Actor     string    `json:"actor"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord builds an audit record with a generated ID and timestamp
func NewRecord(action string, walletID uuid.UUID, amount int64, actor, detail string) *Record {
	return &Record{
		ID:        uuid.New(),
		Action:    action,
		WalletID:  walletID,
		Amount:    amount,
		Actor:     actor,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
}

// Recorder persists audit records
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
	ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*Record, error)
}
