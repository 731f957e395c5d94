package settlement

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/ledger"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/platform/persistence"
)

// WalletService provisions the deposit/earnings wallet pair and answers
// balance and history queries.
type WalletService struct {
	tx          persistence.TxRunner
	maxAttempts int
	wallets     wallet.Repository
	entries     ledger.Repository
	logger      *slog.Logger
}

// NewWalletService creates the wallet provisioning and query service
func NewWalletService(logger *slog.Logger, tx persistence.TxRunner, maxAttempts int, wallets wallet.Repository, entries ledger.Repository) *WalletService {
	return &WalletService{
		tx:          tx,
		maxAttempts: maxAttempts,
		wallets:     wallets,
		entries:     entries,
		logger:      logger,
	}
}

// Provision creates both wallets for a new participant in one region.
// Provisioning an owner who already has wallets fails without creating a
// partial pair.
func (s *WalletService) Provision(ctx context.Context, ownerID uuid.UUID) ([]*wallet.Wallet, error) {
	if ownerID == uuid.Nil {
		return nil, shared.E(shared.KindValidation, "owner ID is required")
	}

	now := time.Now()
	pair := []*wallet.Wallet{
		{ID: uuid.New(), OwnerID: ownerID, Kind: shared.WalletKindDeposit, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), OwnerID: ownerID, Kind: shared.WalletKindEarnings, CreatedAt: now, UpdatedAt: now},
	}

	err := persistence.RunWithRetry(ctx, s.maxAttempts, nil, func(ctx context.Context) error {
		return s.tx.Atomic(ctx, func(ctx context.Context) error {
			for _, w := range pair {
				if err := s.wallets.Create(ctx, w); err != nil {
					if errors.As(err, &wallet.ErrDuplicateWallet{}) {
						return shared.Wrap(shared.KindValidation, "owner already has wallets", err)
					}
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Wallets provisioned", "owner_id", ownerID.String())
	return pair, nil
}

// Balances returns all of an owner's wallets with their balances
func (s *WalletService) Balances(ctx context.Context, ownerID uuid.UUID) ([]*wallet.Wallet, error) {
	wallets, err := s.wallets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, shared.Ef(shared.KindNotFound, "no wallets for owner %s", ownerID)
	}
	return wallets, nil
}

// History returns ledger entries across the owner's wallets, newest first
func (s *WalletService) History(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*ledger.Entry, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	wallets, err := s.wallets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if len(wallets) == 0 {
		return nil, 0, shared.Ef(shared.KindNotFound, "no wallets for owner %s", ownerID)
	}

	var all []*ledger.Entry
	var total int64
	for _, w := range wallets {
		entries, err := s.entries.GetByWalletID(ctx, w.ID, limit+offset, 0)
		if err != nil {
			return nil, 0, err
		}
		all = append(all, entries...)

		count, err := s.entries.CountByWalletID(ctx, w.ID)
		if err != nil {
			return nil, 0, err
		}
		total += count
	}

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []*ledger.Entry{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}
