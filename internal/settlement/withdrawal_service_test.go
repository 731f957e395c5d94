package settlement

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/revenue-collection-core/internal/config"
	"github.com/revenue-collection-core/internal/domain/audit"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/domain/withdrawal"
	"github.com/revenue-collection-core/internal/otp"
	"github.com/revenue-collection-core/internal/paygate"
)

type withdrawalFixture struct {
	wallets     *MockWalletRepository
	entries     *MockLedgerRepository
	withdrawals *MockWithdrawalRepository
	gateway     *MockGatewayClient
	auditor     *MockAuditRecorder
	redis       *miniredis.Miniredis
	svc         *WithdrawalService
}

func newWithdrawalFixture(t *testing.T) *withdrawalFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	otpStore := otp.NewStore(testLogger(), client, &config.OTPConfig{Length: 6, TTL: 5 * time.Minute})

	f := &withdrawalFixture{
		wallets:     new(MockWalletRepository),
		entries:     new(MockLedgerRepository),
		withdrawals: new(MockWithdrawalRepository),
		gateway:     new(MockGatewayClient),
		auditor:     new(MockAuditRecorder),
		redis:       mr,
	}

	ledgerOps := NewLedgerService(testLogger(), f.wallets, f.entries, f.auditor)
	f.svc = NewWithdrawalService(testLogger(), passthroughTx{}, 3, f.wallets, ledgerOps,
		f.withdrawals, otpStore, f.gateway, f.auditor)
	return f
}

func TestWithdrawalService_Request(t *testing.T) {
	ctx := context.Background()
	destination := paygate.BankDetails{AccountNumber: "0123456789", BankCode: "044", AccountName: "J. Doe"}

	t.Run("HoldsFundsAndIssuesOTP", func(t *testing.T) {
		f := newWithdrawalFixture(t)
		ownerID := uuid.New()
		earnings := &wallet.Wallet{ID: uuid.New(), OwnerID: ownerID, Kind: shared.WalletKindEarnings, Balance: 10000}

		f.wallets.On("GetByOwnerAndKind", ctx, ownerID, shared.WalletKindEarnings).Return(earnings, nil).Once()
		f.wallets.On("IncrementHeld", ctx, earnings.ID, int64(4000)).Return(nil).Once()
		f.withdrawals.On("Create", ctx, mock.MatchedBy(func(w *withdrawal.Withdrawal) bool {
			return w.Status == withdrawal.StatusRequested && w.Amount == 4000 && w.WalletID == earnings.ID
		})).Return(nil).Once()

		w, err := f.svc.Request(ctx, WithdrawalRequest{
			OwnerID:     ownerID,
			Amount:      4000,
			Destination: destination,
			Actor:       "owner-app",
		})

		assert.NoError(t, err)
		assert.NotNil(t, w)
		assert.Equal(t, withdrawal.StatusRequested, w.Status)
		assert.NotEmpty(t, w.Reference)
		// The challenge landed in Redis
		assert.True(t, f.redis.Exists("withdrawal:otp:"+w.Reference))
		f.wallets.AssertExpectations(t)
		f.withdrawals.AssertExpectations(t)
	})

	t.Run("InsufficientAvailableBalance", func(t *testing.T) {
		f := newWithdrawalFixture(t)
		ownerID := uuid.New()
		earnings := &wallet.Wallet{ID: uuid.New(), OwnerID: ownerID, Kind: shared.WalletKindEarnings, Balance: 5000, HeldBalance: 2000}

		f.wallets.On("GetByOwnerAndKind", ctx, ownerID, shared.WalletKindEarnings).Return(earnings, nil).Once()

		_, err := f.svc.Request(ctx, WithdrawalRequest{
			OwnerID:     ownerID,
			Amount:      4000,
			Destination: destination,
			Actor:       "owner-app",
		})

		assert.Equal(t, shared.KindInsufficientFunds, shared.KindOf(err))
		f.wallets.AssertNotCalled(t, "IncrementHeld", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingDestination", func(t *testing.T) {
		f := newWithdrawalFixture(t)

		_, err := f.svc.Request(ctx, WithdrawalRequest{OwnerID: uuid.New(), Amount: 100, Actor: "a"})

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})
}

func TestWithdrawalService_Authorize(t *testing.T) {
	ctx := context.Background()
	destination := paygate.BankDetails{AccountNumber: "0123456789", BankCode: "044", AccountName: "J. Doe"}

	// requestWithdrawal drives the full request flow so the OTP exists in Redis
	requestWithdrawal := func(t *testing.T, f *withdrawalFixture, ownerID uuid.UUID, amount int64) (*withdrawal.Withdrawal, string) {
		t.Helper()
		earnings := &wallet.Wallet{ID: uuid.New(), OwnerID: ownerID, Kind: shared.WalletKindEarnings, Balance: 100000}
		f.wallets.On("GetByOwnerAndKind", ctx, ownerID, shared.WalletKindEarnings).Return(earnings, nil).Once()
		f.wallets.On("IncrementHeld", ctx, earnings.ID, amount).Return(nil).Once()
		f.withdrawals.On("Create", ctx, mock.AnythingOfType("*withdrawal.Withdrawal")).Return(nil).Once()

		w, err := f.svc.Request(ctx, WithdrawalRequest{OwnerID: ownerID, Amount: amount, Destination: destination, Actor: "owner-app"})
		assert.NoError(t, err)

		raw, err := f.redis.Get("withdrawal:otp:" + w.Reference)
		assert.NoError(t, err)
		var stored struct {
			Code string `json:"code"`
		}
		assert.NoError(t, json.Unmarshal([]byte(raw), &stored))
		return w, stored.Code
	}

	t.Run("ConsumesOTPAndInitiatesTransfer", func(t *testing.T) {
		f := newWithdrawalFixture(t)
		ownerID := uuid.New()
		w, code := requestWithdrawal(t, f, ownerID, 2500)

		f.withdrawals.On("GetByReference", ctx, w.Reference).Return(w, nil).Once()
		f.gateway.On("InitiateTransfer", ctx, int64(2500), destination, w.Reference).
			Return(&paygate.TransferHandle{Reference: w.Reference, Status: paygate.StatusPending}, nil).Once()
		f.withdrawals.On("UpdateStatus", ctx, w.Reference, withdrawal.StatusAuthorized).Return(nil).Once()
		f.auditor.On("Record", ctx, mock.MatchedBy(func(rec *audit.Record) bool {
			return rec.Action == audit.ActionWithdrawalAuthorized && rec.Amount == 2500
		})).Return(nil).Once()

		authorized, err := f.svc.Authorize(ctx, w.Reference, code, "owner-app")

		assert.NoError(t, err)
		assert.Equal(t, withdrawal.StatusAuthorized, authorized.Status)
		// OTP consumed on success
		assert.False(t, f.redis.Exists("withdrawal:otp:"+w.Reference))
		f.gateway.AssertExpectations(t)
		f.withdrawals.AssertExpectations(t)
	})

	t.Run("WrongCode", func(t *testing.T) {
		f := newWithdrawalFixture(t)
		ownerID := uuid.New()
		w, code := requestWithdrawal(t, f, ownerID, 2500)

		f.withdrawals.On("GetByReference", ctx, w.Reference).Return(w, nil).Once()

		wrong := "000000"
		if wrong == code {
			wrong = "111111"
		}
		_, err := f.svc.Authorize(ctx, w.Reference, wrong, "owner-app")

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		// Challenge survives a failed attempt until its TTL runs out
		assert.True(t, f.redis.Exists("withdrawal:otp:"+w.Reference))
		f.gateway.AssertNotCalled(t, "InitiateTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ExpiredChallenge", func(t *testing.T) {
		f := newWithdrawalFixture(t)
		ownerID := uuid.New()
		w, code := requestWithdrawal(t, f, ownerID, 2500)

		f.redis.FastForward(10 * time.Minute)

		f.withdrawals.On("GetByReference", ctx, w.Reference).Return(w, nil).Once()

		_, err := f.svc.Authorize(ctx, w.Reference, code, "owner-app")

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("AlreadyAuthorized", func(t *testing.T) {
		f := newWithdrawalFixture(t)
		reference := uuid.New().String()

		f.withdrawals.On("GetByReference", ctx, reference).Return(&withdrawal.Withdrawal{
			Reference: reference,
			Status:    withdrawal.StatusAuthorized,
		}, nil).Once()

		_, err := f.svc.Authorize(ctx, reference, "123456", "owner-app")

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})
}
