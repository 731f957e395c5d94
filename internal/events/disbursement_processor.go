package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/revenue-collection-core/internal/domain/audit"
	"github.com/revenue-collection-core/internal/domain/ledger"
	"github.com/revenue-collection-core/internal/domain/outbox"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/withdrawal"
	"github.com/revenue-collection-core/internal/paygate"
	"github.com/revenue-collection-core/internal/platform/persistence"
	"github.com/revenue-collection-core/internal/settlement"
)

// DisbursementEvent is the gateway's transfer outcome notification
type DisbursementEvent struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// DisbursementProcessor settles or fails withdrawals when the gateway reports
// the transfer outcome. Success debits the held amount and releases the hold
// in one region; failure records the outcome and leaves the funds held for
// operational review.
type DisbursementProcessor struct {
	secret      []byte
	tx          persistence.TxRunner
	maxAttempts int
	withdrawals withdrawal.Repository
	entries     ledger.Repository
	ledgerOps   *settlement.LedgerService
	outboxRepo  outbox.Repository
	auditor     audit.Recorder
	logger      *slog.Logger
}

// NewDisbursementProcessor creates the disbursement webhook processor
func NewDisbursementProcessor(
	logger *slog.Logger,
	secret string,
	tx persistence.TxRunner,
	maxAttempts int,
	withdrawals withdrawal.Repository,
	entries ledger.Repository,
	ledgerOps *settlement.LedgerService,
	outboxRepo outbox.Repository,
	auditor audit.Recorder,
) *DisbursementProcessor {
	return &DisbursementProcessor{
		secret:      []byte(secret),
		tx:          tx,
		maxAttempts: maxAttempts,
		withdrawals: withdrawals,
		entries:     entries,
		ledgerOps:   ledgerOps,
		outboxRepo:  outboxRepo,
		auditor:     auditor,
		logger:      logger,
	}
}

// Process handles one raw disbursement webhook delivery, keyed on the
// withdrawal reference for idempotency.
func (p *DisbursementProcessor) Process(ctx context.Context, body []byte, signature string) error {
	if err := VerifySignature(p.secret, body, signature); err != nil {
		return err
	}

	var event DisbursementEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return shared.Wrap(shared.KindValidation, "malformed disbursement event payload", err)
	}
	if event.Reference == "" {
		return shared.E(shared.KindValidation, "disbursement event is missing a reference")
	}

	w, err := p.withdrawals.GetByReference(ctx, event.Reference)
	if err != nil {
		if errors.As(err, &withdrawal.ErrWithdrawalNotFound{}) {
			return shared.Wrap(shared.KindValidation, "disbursement event references an unknown withdrawal", err)
		}
		return err
	}
	if w.Status == withdrawal.StatusSettled || w.Status == withdrawal.StatusFailed {
		return shared.Ef(shared.KindDuplicateEvent, "withdrawal %s is already %s", event.Reference, w.Status)
	}

	switch event.Status {
	case paygate.StatusSuccess:
		err = p.settle(ctx, w)
	case paygate.StatusFailed:
		err = p.fail(ctx, w)
	default:
		return shared.Ef(shared.KindValidation, "unknown disbursement status %q for %s", event.Status, event.Reference)
	}
	if err != nil {
		return err
	}

	p.logger.Info("Disbursement event applied",
		"reference", event.Reference,
		"status", event.Status,
		"amount", w.Amount,
	)
	return nil
}

// settle debits the wallet and releases the hold together, so the available
// balance never dips by the withdrawal amount twice.
func (p *DisbursementProcessor) settle(ctx context.Context, w *withdrawal.Withdrawal) error {
	return persistence.RunWithRetry(ctx, p.maxAttempts, nil, func(ctx context.Context) error {
		return p.tx.Atomic(ctx, func(ctx context.Context) error {
			meta := settlement.TxMeta{
				Type:        shared.TransactionTypeWithdrawal,
				FromAccount: w.OwnerID.String(),
				ToAccount:   "bank",
				Reference:   w.Reference,
				Description: "withdrawal settled by gateway",
			}
			if _, err := p.ledgerOps.Debit(ctx, w.WalletID, w.Amount, meta, "gateway"); err != nil {
				if errors.As(err, &ledger.ErrDuplicateEntry{}) {
					return shared.Wrap(shared.KindDuplicateEvent, "withdrawal already settled", err)
				}
				return err
			}
			if err := p.ledgerOps.Release(ctx, w.WalletID, w.Amount); err != nil {
				return err
			}
			if err := p.withdrawals.UpdateStatus(ctx, w.Reference, withdrawal.StatusSettled); err != nil {
				return err
			}

			msg, err := outbox.NewMessage(outbox.EventWithdrawalSettled, w.Reference, map[string]interface{}{
				"reference": w.Reference,
				"owner_id":  w.OwnerID,
				"amount":    w.Amount,
			})
			if err != nil {
				return fmt.Errorf("failed to build outbox message: %w", err)
			}
			return p.outboxRepo.Create(ctx, msg)
		})
	})
}

// fail records the outcome without moving money. The hold is deliberately
// not released: an operator reconciles with the gateway first, then either
// retries the transfer or resets the held balance.
func (p *DisbursementProcessor) fail(ctx context.Context, w *withdrawal.Withdrawal) error {
	meta := settlement.TxMeta{
		Type:        shared.TransactionTypeWithdrawal,
		FromAccount: w.OwnerID.String(),
		ToAccount:   "bank",
		Reference:   w.Reference,
		Description: "withdrawal failed at gateway",
	}
	if _, err := p.ledgerOps.AppendEntry(ctx, w.WalletID, w.Amount, meta, shared.TransactionStatusFailed, "gateway"); err != nil {
		if errors.As(err, &ledger.ErrDuplicateEntry{}) {
			return shared.Wrap(shared.KindDuplicateEvent, "withdrawal failure already recorded", err)
		}
		return err
	}
	if err := p.withdrawals.UpdateStatus(ctx, w.Reference, withdrawal.StatusFailed); err != nil {
		return err
	}

	rec := audit.NewRecord(audit.ActionDisbursementReconciled, w.WalletID, w.Amount, "gateway", "transfer failed, funds remain held for "+w.Reference)
	if err := p.auditor.Record(ctx, rec); err != nil {
		p.logger.Error("Failed to record disbursement failure audit entry", "reference", w.Reference, "error", err)
	}
	return nil
}
