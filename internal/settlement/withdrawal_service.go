package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/audit"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/domain/withdrawal"
	"github.com/revenue-collection-core/internal/otp"
	"github.com/revenue-collection-core/internal/paygate"
	"github.com/revenue-collection-core/internal/platform/persistence"
)

// WithdrawalRequest asks to move funds out of an earnings wallet
type WithdrawalRequest struct {
	OwnerID     uuid.UUID
	Amount      int64
	Destination paygate.BankDetails
	Actor       string
}

// WithdrawalService drives the withdrawal lifecycle: hold on request, OTP
// authorization, transfer initiation. Settlement and failure are applied by
// the disbursement webhook processor.
type WithdrawalService struct {
	tx          persistence.TxRunner
	maxAttempts int
	wallets     wallet.Repository
	ledgerOps   *LedgerService
	withdrawals withdrawal.Repository
	otpStore    *otp.Store
	gateway     paygate.Client
	auditor     audit.Recorder
	logger      *slog.Logger
}

// NewWithdrawalService creates the withdrawal lifecycle service
func NewWithdrawalService(
	logger *slog.Logger,
	tx persistence.TxRunner,
	maxAttempts int,
	wallets wallet.Repository,
	ledgerOps *LedgerService,
	withdrawals withdrawal.Repository,
	otpStore *otp.Store,
	gateway paygate.Client,
	auditor audit.Recorder,
) *WithdrawalService {
	return &WithdrawalService{
		tx:          tx,
		maxAttempts: maxAttempts,
		wallets:     wallets,
		ledgerOps:   ledgerOps,
		withdrawals: withdrawals,
		otpStore:    otpStore,
		gateway:     gateway,
		auditor:     auditor,
		logger:      logger,
	}
}

// Request places a hold on the owner's earnings wallet and issues an OTP
// challenge. The balance is not debited; the funds are merely unavailable
// until the withdrawal settles, fails or the hold is operationally reset.
func (s *WithdrawalService) Request(ctx context.Context, req WithdrawalRequest) (*withdrawal.Withdrawal, error) {
	if req.Amount <= 0 {
		return nil, shared.Ef(shared.KindValidation, "withdrawal amount must be positive, got %d", req.Amount)
	}
	if req.OwnerID == uuid.Nil {
		return nil, shared.E(shared.KindValidation, "owner ID is required")
	}
	if req.Destination.AccountNumber == "" || req.Destination.BankCode == "" {
		return nil, shared.E(shared.KindValidation, "destination account number and bank code are required")
	}

	earnings, err := s.wallets.GetByOwnerAndKind(ctx, req.OwnerID, shared.WalletKindEarnings)
	if err != nil {
		return nil, err
	}
	if !earnings.CanDebit(req.Amount) {
		return nil, shared.Ef(shared.KindInsufficientFunds, "available balance %d is below withdrawal amount %d", earnings.Available(), req.Amount)
	}

	destination, err := json.Marshal(req.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to encode withdrawal destination: %w", err)
	}

	now := time.Now()
	w := &withdrawal.Withdrawal{
		ID:          uuid.New(),
		WalletID:    earnings.ID,
		OwnerID:     req.OwnerID,
		Amount:      req.Amount,
		Destination: string(destination),
		Reference:   uuid.New().String(),
		Status:      withdrawal.StatusRequested,
		RequestedBy: req.Actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = persistence.RunWithRetry(ctx, s.maxAttempts, nil, func(ctx context.Context) error {
		return s.tx.Atomic(ctx, func(ctx context.Context) error {
			if err := s.ledgerOps.Hold(ctx, earnings.ID, req.Amount); err != nil {
				return err
			}
			return s.withdrawals.Create(ctx, w)
		})
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.otpStore.Issue(ctx, w.Reference, otp.Challenge{
		WalletID:    earnings.ID,
		Amount:      req.Amount,
		Destination: w.Destination,
		Actor:       req.Actor,
	}); err != nil {
		// The hold stands; the caller can re-request authorization or the
		// operator can reset it.
		s.logger.Error("Failed to issue withdrawal OTP", "reference", w.Reference, "error", err)
		return nil, err
	}

	s.logger.Info("Withdrawal requested",
		"reference", w.Reference,
		"wallet_id", earnings.ID.String(),
		"amount", req.Amount,
		"requested_by", req.Actor,
	)
	return w, nil
}

// Authorize consumes the OTP and initiates the gateway transfer. The hold
// stays in place until the disbursement webhook reports the outcome.
func (s *WithdrawalService) Authorize(ctx context.Context, reference, code, actor string) (*withdrawal.Withdrawal, error) {
	w, err := s.withdrawals.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if w.Status != withdrawal.StatusRequested {
		return nil, shared.Ef(shared.KindValidation, "withdrawal %s is %s, not awaiting authorization", reference, w.Status)
	}

	if _, err := s.otpStore.VerifyAndConsume(ctx, reference, code); err != nil {
		return nil, err
	}

	var destination paygate.BankDetails
	if err := json.Unmarshal([]byte(w.Destination), &destination); err != nil {
		return nil, fmt.Errorf("failed to decode withdrawal destination: %w", err)
	}

	if _, err := s.gateway.InitiateTransfer(ctx, w.Amount, destination, reference); err != nil {
		return nil, err
	}

	if err := s.withdrawals.UpdateStatus(ctx, reference, withdrawal.StatusAuthorized); err != nil {
		return nil, err
	}
	w.Status = withdrawal.StatusAuthorized

	rec := audit.NewRecord(audit.ActionWithdrawalAuthorized, w.WalletID, w.Amount, actor, "transfer initiated for "+reference)
	if err := s.auditor.Record(ctx, rec); err != nil {
		s.logger.Error("Failed to record withdrawal authorization audit entry", "reference", reference, "error", err)
	}

	s.logger.Info("Withdrawal authorized",
		"reference", reference,
		"wallet_id", w.WalletID.String(),
		"amount", w.Amount,
		"actor", actor,
	)
	return w, nil
}
