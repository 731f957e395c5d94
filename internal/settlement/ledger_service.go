// Package settlement implements the ledger and settlement core: wallet
// balance mutations paired with immutable ledger entries, percentage-based
// beneficiary distribution, the synchronous tax payment flow, and the
// withdrawal lifecycle.
package settlement

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/audit"
	"github.com/revenue-collection-core/internal/domain/ledger"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
)

// TxMeta carries the ledger entry fields a caller supplies with a mutation
type TxMeta struct {
	Type        shared.TransactionType
	FromAccount string
	ToAccount   string
	Reference   string // Unique; generated when empty
	Description string
}

// LedgerService is the only legal mutator of wallet balances. Every credit
// and debit appends exactly one ledger entry in the same atomic region.
type LedgerService struct {
	wallets wallet.Repository
	entries ledger.Repository
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewLedgerService creates the ledger operations service
func NewLedgerService(logger *slog.Logger, wallets wallet.Repository, entries ledger.Repository, auditor audit.Recorder) *LedgerService {
	return &LedgerService{
		wallets: wallets,
		entries: entries,
		auditor: auditor,
		logger:  logger,
	}
}

// AvailableBalance returns balance minus held balance, read fresh from the
// store inside the caller's session. Never cached.
func (s *LedgerService) AvailableBalance(ctx context.Context, walletID uuid.UUID) (int64, error) {
	w, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return 0, err
	}
	return w.Available(), nil
}

// Credit increments the wallet balance and appends a ledger entry
func (s *LedgerService) Credit(ctx context.Context, walletID uuid.UUID, amount int64, meta TxMeta, actor string) (*ledger.Entry, error) {
	if amount <= 0 {
		return nil, shared.Ef(shared.KindValidation, "credit amount must be positive, got %d", amount)
	}

	if err := s.wallets.IncrementBalance(ctx, walletID, amount); err != nil {
		return nil, err
	}

	entry := ledger.NewEntry(meta.Type, walletID, meta.FromAccount, meta.ToAccount, amount, meta.Reference, meta.Description, actor, shared.TransactionStatusSuccessful)
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Wallet credited",
		"wallet_id", walletID.String(),
		"amount", amount,
		"reference", entry.Reference,
		"processed_by", actor,
	)
	return entry, nil
}

// Debit decrements the wallet balance unconditionally and appends a ledger
// entry. The caller owns the available-balance pre-check: the authorization
// decision (minimum balance, fee math) stays separate from the mechanical
// mutation, and the entry remains auditable either way.
func (s *LedgerService) Debit(ctx context.Context, walletID uuid.UUID, amount int64, meta TxMeta, actor string) (*ledger.Entry, error) {
	if amount <= 0 {
		return nil, shared.Ef(shared.KindValidation, "debit amount must be positive, got %d", amount)
	}

	if err := s.wallets.IncrementBalance(ctx, walletID, -amount); err != nil {
		return nil, err
	}

	entry := ledger.NewEntry(meta.Type, walletID, meta.FromAccount, meta.ToAccount, amount, meta.Reference, meta.Description, actor, shared.TransactionStatusSuccessful)
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Wallet debited",
		"wallet_id", walletID.String(),
		"amount", amount,
		"reference", entry.Reference,
		"processed_by", actor,
	)
	return entry, nil
}

// Hold reserves part of the balance for a pending withdrawal
func (s *LedgerService) Hold(ctx context.Context, walletID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return shared.Ef(shared.KindValidation, "hold amount must be positive, got %d", amount)
	}
	return s.wallets.IncrementHeld(ctx, walletID, amount)
}

// Release returns a previously held amount to availability. Callers must
// pair every Hold with exactly one Release or the escape hatch below.
func (s *LedgerService) Release(ctx context.Context, walletID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return shared.Ef(shared.KindValidation, "release amount must be positive, got %d", amount)
	}
	return s.wallets.IncrementHeld(ctx, walletID, -amount)
}

// AppendEntry records a ledger entry without touching any balance, used for
// failed disbursements where the funds never moved.
func (s *LedgerService) AppendEntry(ctx context.Context, walletID uuid.UUID, amount int64, meta TxMeta, status shared.TransactionStatus, actor string) (*ledger.Entry, error) {
	if amount <= 0 {
		return nil, shared.Ef(shared.KindValidation, "entry amount must be positive, got %d", amount)
	}

	entry := ledger.NewEntry(meta.Type, walletID, meta.FromAccount, meta.ToAccount, amount, meta.Reference, meta.Description, actor, status)
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ResetHeld forces the held balance to zero. This is an operational escape
// hatch for stuck reservations, not part of any normal flow; it writes no
// ledger entry but always records who invoked it in the audit trail.
func (s *LedgerService) ResetHeld(ctx context.Context, walletID uuid.UUID, actor string) (int64, error) {
	previous, err := s.wallets.ResetHeld(ctx, walletID)
	if err != nil {
		return 0, err
	}

	s.logger.Warn("Held balance reset",
		"wallet_id", walletID.String(),
		"previous_held", previous,
		"actor", actor,
	)

	rec := audit.NewRecord(audit.ActionHeldBalanceReset, walletID, previous, actor, "held balance forced to zero")
	if err := s.auditor.Record(ctx, rec); err != nil {
		s.logger.Error("Failed to record held balance reset audit entry",
			"wallet_id", walletID.String(),
			"actor", actor,
			"error", err,
		)
		return previous, err
	}

	return previous, nil
}
