package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/revenue-collection-core/internal/domain/audit"
	"github.com/revenue-collection-core/internal/domain/ledger"
	"github.com/revenue-collection-core/internal/domain/outbox"
	"github.com/revenue-collection-core/internal/domain/paymenttype"
	"github.com/revenue-collection-core/internal/domain/receipt"
	"github.com/revenue-collection-core/internal/domain/registry"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/domain/withdrawal"
	"github.com/revenue-collection-core/internal/paygate"
)

// passthroughTx runs the unit of work without a real transaction
type passthroughTx struct{}

func (passthroughTx) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByOwnerAndKind(ctx context.Context, ownerID uuid.UUID, kind shared.WalletKind) (*wallet.Wallet, error) {
	args := m.Called(ctx, ownerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*wallet.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) IncrementBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockWalletRepository) IncrementHeld(ctx context.Context, id uuid.UUID, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockWalletRepository) ResetHeld(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletRepository) SoftRemove(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByReference(ctx context.Context, reference string) (*ledger.Entry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, rec *audit.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockAuditRecorder) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*audit.Record, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Record), args.Error(1)
}

type MockPaymentTypeRepository struct {
	mock.Mock
}

func (m *MockPaymentTypeRepository) Create(ctx context.Context, pt *paymenttype.PaymentType) error {
	args := m.Called(ctx, pt)
	return args.Error(0)
}

func (m *MockPaymentTypeRepository) GetByName(ctx context.Context, name string) (*paymenttype.PaymentType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymenttype.PaymentType), args.Error(1)
}

func (m *MockPaymentTypeRepository) Update(ctx context.Context, pt *paymenttype.PaymentType) error {
	args := m.Called(ctx, pt)
	return args.Error(0)
}

type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) GetVehicle(ctx context.Context, id uuid.UUID) (*registry.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Vehicle), args.Error(1)
}

func (m *MockRegistryRepository) GetDriver(ctx context.Context, id uuid.UUID) (*registry.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Driver), args.Error(1)
}

func (m *MockRegistryRepository) ActivateVehicle(ctx context.Context, id uuid.UUID, quotaDays int) error {
	args := m.Called(ctx, id, quotaDays)
	return args.Error(0)
}

func (m *MockRegistryRepository) ExtendPaidUntil(ctx context.Context, id uuid.UUID, days int, now time.Time) (time.Time, error) {
	args := m.Called(ctx, id, days, now)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockRegistryRepository) SetPermitWindow(ctx context.Context, id uuid.UUID, issuedAt, expiresAt time.Time) error {
	args := m.Called(ctx, id, issuedAt, expiresAt)
	return args.Error(0)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, rec *receipt.Receipt) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockReceiptRepository) GetByReference(ctx context.Context, reference string) (*receipt.Receipt, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receipt.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) GetByVehicleID(ctx context.Context, vehicleID uuid.UUID, limit, offset int) ([]*receipt.Receipt, error) {
	args := m.Called(ctx, vehicleID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*receipt.Receipt), args.Error(1)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, w *withdrawal.Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByReference(ctx context.Context, reference string) (*withdrawal.Withdrawal, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*withdrawal.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, reference string, status withdrawal.Status) error {
	args := m.Called(ctx, reference, status)
	return args.Error(0)
}

type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) CreateInvoice(ctx context.Context, amount int64, reference, description string) (*paygate.CreatedInvoice, error) {
	args := m.Called(ctx, amount, reference, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paygate.CreatedInvoice), args.Error(1)
}

func (m *MockGatewayClient) VerifyStatus(ctx context.Context, reference string) (*paygate.VerificationResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paygate.VerificationResult), args.Error(1)
}

func (m *MockGatewayClient) CancelInvoice(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

func (m *MockGatewayClient) InitiateTransfer(ctx context.Context, amount int64, destination paygate.BankDetails, reference string) (*paygate.TransferHandle, error) {
	args := m.Called(ctx, amount, destination, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paygate.TransferHandle), args.Error(1)
}

var _ wallet.Repository = (*MockWalletRepository)(nil)
var _ ledger.Repository = (*MockLedgerRepository)(nil)
var _ audit.Recorder = (*MockAuditRecorder)(nil)
var _ paymenttype.Repository = (*MockPaymentTypeRepository)(nil)
var _ registry.Repository = (*MockRegistryRepository)(nil)
var _ receipt.Repository = (*MockReceiptRepository)(nil)
var _ outbox.Repository = (*MockOutboxRepository)(nil)
var _ withdrawal.Repository = (*MockWithdrawalRepository)(nil)
var _ paygate.Client = (*MockGatewayClient)(nil)
