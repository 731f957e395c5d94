package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/paymenttype"
	"github.com/revenue-collection-core/internal/domain/receipt"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
)

// DistributionEngine fans a gross amount out to the earnings wallets of a
// payment type's beneficiaries. It must run inside an atomic region: a
// failed credit aborts the whole fan-out so observers never see a partial
// payout.
type DistributionEngine struct {
	wallets   wallet.Repository
	ledgerOps *LedgerService
	logger    *slog.Logger
}

// NewDistributionEngine creates the beneficiary distribution engine
func NewDistributionEngine(logger *slog.Logger, wallets wallet.Repository, ledgerOps *LedgerService) *DistributionEngine {
	return &DistributionEngine{
		wallets:   wallets,
		ledgerOps: ledgerOps,
		logger:    logger,
	}
}

// Distribute resolves each configured role to a concrete account, re-checks
// the percentage invariant against exactly the resolved set, and credits
// every beneficiary's earnings wallet. Returns the immutable share snapshot
// to record on the receipt.
//
// Shares are amount*percentage/100 truncated to minor units; the remainder
// left by truncation goes to the first configured beneficiary, so the shares
// always sum to the gross amount.
func (e *DistributionEngine) Distribute(
	ctx context.Context,
	pt *paymenttype.PaymentType,
	accounts map[shared.BeneficiaryRole]uuid.UUID,
	gross int64,
	fromAccount string,
	reference string,
	actor string,
) ([]receipt.BeneficiaryShare, error) {
	if gross <= 0 {
		return nil, shared.Ef(shared.KindValidation, "distribution amount must be positive, got %d", gross)
	}
	if len(pt.Beneficiaries) == 0 {
		return nil, shared.Ef(shared.KindBeneficiaryConfig, "payment type %s has no beneficiaries", pt.Name)
	}

	// Resolve all roles before the percentage check so a stale snapshot with
	// an unresolvable role fails the same way as a missing account.
	shares := make([]receipt.BeneficiaryShare, 0, len(pt.Beneficiaries))
	var percentageSum int64
	for _, b := range pt.Beneficiaries {
		accountID, ok := accounts[b.Role]
		if !ok || accountID == uuid.Nil {
			return nil, shared.Ef(shared.KindBeneficiaryConfig, "no beneficiary account resolved for role %s", b.Role)
		}
		percentageSum += b.Percentage
		shares = append(shares, receipt.BeneficiaryShare{
			AccountID:  accountID,
			Role:       b.Role,
			Percentage: b.Percentage,
			Amount:     gross * b.Percentage / 100,
		})
	}

	// Re-validated at distribution time, not only at configuration time:
	// roles can be added or removed after a snapshot was taken.
	if percentageSum != 100 {
		return nil, shared.Ef(shared.KindBeneficiaryConfig, "beneficiary percentages for %s sum to %d, want exactly 100", pt.Name, percentageSum)
	}

	var allocated int64
	for _, s := range shares {
		allocated += s.Amount
	}
	if remainder := gross - allocated; remainder > 0 {
		shares[0].Amount += remainder
	}

	for _, s := range shares {
		earnings, err := e.wallets.GetByOwnerAndKind(ctx, s.AccountID, shared.WalletKindEarnings)
		if err != nil {
			return nil, shared.Wrap(shared.KindBeneficiaryConfig, fmt.Sprintf("no earnings wallet for beneficiary %s (%s)", s.AccountID, s.Role), err)
		}

		meta := TxMeta{
			Type:        shared.TransactionTypeCommission,
			FromAccount: fromAccount,
			ToAccount:   s.AccountID.String(),
			Reference:   fmt.Sprintf("%s/%s", reference, s.Role),
			Description: fmt.Sprintf("%d%% share of %s", s.Percentage, reference),
		}
		if _, err := e.ledgerOps.Credit(ctx, earnings.ID, s.Amount, meta, actor); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Distribution applied",
		"reference", reference,
		"gross", gross,
		"beneficiaries", len(shares),
	)
	return shares, nil
}
