package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/revenue-collection-core/internal/config"
	"github.com/revenue-collection-core/internal/domain/invoice"
	"github.com/revenue-collection-core/internal/domain/outbox"
	"github.com/revenue-collection-core/internal/domain/paymenttype"
	"github.com/revenue-collection-core/internal/domain/receipt"
	"github.com/revenue-collection-core/internal/domain/registry"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/paygate"
	"github.com/revenue-collection-core/internal/settlement"
)

const webhookSecret = "test-webhook-secret"

type fundingFixture struct {
	gateway      *MockGatewayClient
	invoices     *MockInvoiceRepository
	wallets      *MockWalletRepository
	entries      *MockLedgerRepository
	paymentTypes *MockPaymentTypeRepository
	registryRepo *MockRegistryRepository
	receipts     *MockReceiptRepository
	outboxRepo   *MockOutboxRepository
	processor    *FundingProcessor

	government uuid.UUID
	platform   uuid.UUID
}

func newFundingFixture(t *testing.T) *fundingFixture {
	t.Helper()

	f := &fundingFixture{
		gateway:      new(MockGatewayClient),
		invoices:     new(MockInvoiceRepository),
		wallets:      new(MockWalletRepository),
		entries:      new(MockLedgerRepository),
		paymentTypes: new(MockPaymentTypeRepository),
		registryRepo: new(MockRegistryRepository),
		receipts:     new(MockReceiptRepository),
		outboxRepo:   new(MockOutboxRepository),
		government:   uuid.New(),
		platform:     uuid.New(),
	}

	resolver, err := settlement.NewBeneficiaryResolver(&config.BeneficiariesConfig{
		GovernmentAccountID: f.government.String(),
		PlatformAccountID:   f.platform.String(),
	})
	assert.NoError(t, err)

	ledgerOps := settlement.NewLedgerService(testLogger(), f.wallets, f.entries, new(MockAuditRecorder))
	engine := settlement.NewDistributionEngine(testLogger(), f.wallets, ledgerOps)

	f.processor = NewFundingProcessor(
		testLogger(), webhookSecret, passthroughTx{}, 3, f.gateway,
		f.invoices, f.wallets, f.entries, ledgerOps, engine, resolver,
		f.paymentTypes, f.registryRepo, f.receipts, f.outboxRepo,
	)
	return f
}

func signedFundingEvent(t *testing.T, reference string, amount int64) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(FundingEvent{Reference: reference, Status: "PAID", Amount: amount})
	assert.NoError(t, err)
	return body, sign([]byte(webhookSecret), body)
}

func TestFundingProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("BadSignatureRejectedBeforeAnything", func(t *testing.T) {
		f := newFundingFixture(t)
		body, _ := signedFundingEvent(t, "ref-1", 1000)

		err := f.processor.Process(ctx, body, "deadbeef")

		assert.Equal(t, shared.KindInvalidSignature, shared.KindOf(err))
		f.invoices.AssertNotCalled(t, "GetByReference", mock.Anything, mock.Anything)
		f.gateway.AssertNotCalled(t, "VerifyStatus", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyPaidInvoiceIsDuplicate", func(t *testing.T) {
		f := newFundingFixture(t)
		ownerID := uuid.New()
		inv := invoice.New(shared.InvoiceTypeWalletFunding, 1000, "ref-dup", invoice.Metadata{OwnerID: ownerID})
		inv.Status = shared.InvoiceStatusPaid
		body, signature := signedFundingEvent(t, "ref-dup", 1000)

		f.invoices.On("GetByReference", ctx, "ref-dup").Return(inv, nil).Once()

		err := f.processor.Process(ctx, body, signature)

		assert.Equal(t, shared.KindDuplicateEvent, shared.KindOf(err))
		f.gateway.AssertNotCalled(t, "VerifyStatus", mock.Anything, mock.Anything)
		f.wallets.AssertNotCalled(t, "IncrementBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GatewayStatusNotPaid", func(t *testing.T) {
		f := newFundingFixture(t)
		inv := invoice.New(shared.InvoiceTypeWalletFunding, 1000, "ref-pending", invoice.Metadata{OwnerID: uuid.New()})
		body, signature := signedFundingEvent(t, "ref-pending", 1000)

		f.invoices.On("GetByReference", ctx, "ref-pending").Return(inv, nil).Once()
		f.gateway.On("VerifyStatus", ctx, "ref-pending").Return(&paygate.VerificationResult{
			Reference: "ref-pending", Status: paygate.StatusPending, Amount: 1000,
		}, nil).Once()

		err := f.processor.Process(ctx, body, signature)

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		f.invoices.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	})

	t.Run("AmountMismatchRejected", func(t *testing.T) {
		f := newFundingFixture(t)
		inv := invoice.New(shared.InvoiceTypeWalletFunding, 1000, "ref-short", invoice.Metadata{OwnerID: uuid.New()})
		body, signature := signedFundingEvent(t, "ref-short", 1000)

		f.invoices.On("GetByReference", ctx, "ref-short").Return(inv, nil).Once()
		// Webhook claims 1000 but the gateway's authoritative amount is 700
		f.gateway.On("VerifyStatus", ctx, "ref-short").Return(&paygate.VerificationResult{
			Reference: "ref-short", Status: paygate.StatusPaid, Amount: 700,
		}, nil).Once()

		err := f.processor.Process(ctx, body, signature)

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		f.invoices.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
		f.wallets.AssertNotCalled(t, "IncrementBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("WalletFundingCreditsDeposit", func(t *testing.T) {
		f := newFundingFixture(t)
		ownerID := uuid.New()
		inv := invoice.New(shared.InvoiceTypeWalletFunding, 2500, "ref-fund", invoice.Metadata{OwnerID: ownerID})
		body, signature := signedFundingEvent(t, "ref-fund", 2500)

		f.invoices.On("GetByReference", ctx, "ref-fund").Return(inv, nil).Once()
		f.gateway.On("VerifyStatus", ctx, "ref-fund").Return(&paygate.VerificationResult{
			Reference: "ref-fund", Status: paygate.StatusPaid, Amount: 2500,
		}, nil).Once()
		f.invoices.On("MarkPaid", ctx, "ref-fund").Return(nil).Once()

		deposit := &wallet.Wallet{ID: uuid.New(), OwnerID: ownerID, Kind: shared.WalletKindDeposit}
		f.wallets.On("GetByOwnerAndKind", ctx, ownerID, shared.WalletKindDeposit).Return(deposit, nil).Once()
		f.wallets.On("IncrementBalance", ctx, deposit.ID, int64(2500)).Return(nil).Once()
		f.entries.On("Create", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil).Once()
		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(msg *outbox.Message) bool {
			return msg.Kind == outbox.EventWalletFunded && msg.Reference == "ref-fund"
		})).Return(nil).Once()

		err := f.processor.Process(ctx, body, signature)

		assert.NoError(t, err)
		f.wallets.AssertExpectations(t)
		f.outboxRepo.AssertExpectations(t)
	})

	t.Run("ConcurrentDuplicateLosesMarkPaidRace", func(t *testing.T) {
		f := newFundingFixture(t)
		inv := invoice.New(shared.InvoiceTypeWalletFunding, 2500, "ref-race", invoice.Metadata{OwnerID: uuid.New()})
		body, signature := signedFundingEvent(t, "ref-race", 2500)

		f.invoices.On("GetByReference", ctx, "ref-race").Return(inv, nil).Once()
		f.gateway.On("VerifyStatus", ctx, "ref-race").Return(&paygate.VerificationResult{
			Reference: "ref-race", Status: paygate.StatusPaid, Amount: 2500,
		}, nil).Once()
		f.invoices.On("MarkPaid", ctx, "ref-race").
			Return(invoice.ErrInvalidTransition{Reference: "ref-race"}).Once()

		err := f.processor.Process(ctx, body, signature)

		assert.Equal(t, shared.KindDuplicateEvent, shared.KindOf(err))
		f.wallets.AssertNotCalled(t, "IncrementBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("VehicleLevyActivatesAndDistributes", func(t *testing.T) {
		f := newFundingFixture(t)
		vehicleID := uuid.New()
		collectorID := uuid.New()
		inv := invoice.New(shared.InvoiceTypeVehicleLevy, 10000, "ref-levy", invoice.Metadata{
			OwnerID:   collectorID,
			VehicleID: &vehicleID,
		})
		body, signature := signedFundingEvent(t, "ref-levy", 10000)

		f.invoices.On("GetByReference", ctx, "ref-levy").Return(inv, nil).Once()
		f.gateway.On("VerifyStatus", ctx, "ref-levy").Return(&paygate.VerificationResult{
			Reference: "ref-levy", Status: paygate.StatusPaid, Amount: 10000,
		}, nil).Once()
		f.invoices.On("MarkPaid", ctx, "ref-levy").Return(nil).Once()

		f.registryRepo.On("GetVehicle", ctx, vehicleID).Return(&registry.Vehicle{
			ID: vehicleID, CollectorID: collectorID, AssociationID: uuid.New(),
		}, nil).Once()
		f.registryRepo.On("ActivateVehicle", ctx, vehicleID, VehicleStartingQuotaDays).Return(nil).Once()

		f.paymentTypes.On("GetByName", ctx, PaymentTypeVehicleLevy).Return(&paymenttype.PaymentType{
			ID:   uuid.New(),
			Name: PaymentTypeVehicleLevy,
			Beneficiaries: []paymenttype.Beneficiary{
				{Role: shared.RoleGovernment, Percentage: 70},
				{Role: shared.RolePlatform, Percentage: 30},
			},
		}, nil).Once()

		for _, accountID := range []uuid.UUID{f.government, f.platform} {
			earnings := &wallet.Wallet{ID: uuid.New(), OwnerID: accountID, Kind: shared.WalletKindEarnings}
			f.wallets.On("GetByOwnerAndKind", ctx, accountID, shared.WalletKindEarnings).Return(earnings, nil).Once()
			f.wallets.On("IncrementBalance", ctx, earnings.ID, mock.AnythingOfType("int64")).Return(nil).Once()
		}
		f.entries.On("Create", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil).Times(2)

		f.receipts.On("Create", ctx, mock.MatchedBy(func(rec *receipt.Receipt) bool {
			return rec.Amount == 10000 && rec.VehicleID != nil && *rec.VehicleID == vehicleID
		})).Return(nil).Once()
		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(msg *outbox.Message) bool {
			return msg.Kind == outbox.EventReceiptCreated
		})).Return(nil).Once()

		err := f.processor.Process(ctx, body, signature)

		assert.NoError(t, err)
		f.registryRepo.AssertExpectations(t)
		f.receipts.AssertExpectations(t)
	})

	t.Run("UnknownInvoiceDiscarded", func(t *testing.T) {
		f := newFundingFixture(t)
		body, signature := signedFundingEvent(t, "ref-missing", 100)

		f.invoices.On("GetByReference", ctx, "ref-missing").
			Return(nil, invoice.ErrInvoiceNotFound{Reference: "ref-missing"}).Once()

		err := f.processor.Process(ctx, body, signature)

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})
}
