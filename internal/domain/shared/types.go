package shared

// WalletKind identifies the two wallet flavours each participant owns
type WalletKind string

const (
	WalletKindDeposit  WalletKind = "DEPOSIT"  // Funded externally, debited for fees/taxes
	WalletKindEarnings WalletKind = "EARNINGS" // Credited with revenue shares, debited on withdrawal
)

// TransactionType defines the ledger entry categories
type TransactionType string

const (
	TransactionTypeFunding      TransactionType = "FUNDING"
	TransactionTypePayment      TransactionType = "PAYMENT"
	TransactionTypeCommission   TransactionType = "COMMISSION"
	TransactionTypeWithdrawal   TransactionType = "WITHDRAWAL"
	TransactionTypeRefund       TransactionType = "REFUND"
	TransactionTypeSettlement   TransactionType = "SETTLEMENT"
	TransactionTypeDisbursement TransactionType = "DISBURSEMENT"
	TransactionTypeFee          TransactionType = "FEE"
	TransactionTypeTransfer     TransactionType = "TRANSFER"
)

// TransactionStatus defines ledger entry states
type TransactionStatus string

const (
	TransactionStatusSuccessful TransactionStatus = "SUCCESSFUL"
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
	TransactionStatusReversed   TransactionStatus = "REVERSED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
)

// BeneficiaryRole names a party entitled to a percentage share of a payment type
type BeneficiaryRole string

const (
	RoleGovernment  BeneficiaryRole = "GOVERNMENT"
	RolePlatform    BeneficiaryRole = "PLATFORM"
	RoleCollector   BeneficiaryRole = "COLLECTOR"
	RoleAssociation BeneficiaryRole = "ASSOCIATION"
	RoleConsultant  BeneficiaryRole = "CONSULTANT"
)

// InvoiceStatus defines invoice lifecycle states
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusExpired   InvoiceStatus = "EXPIRED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// InvoiceType identifies what a payable invoice settles
type InvoiceType string

const (
	InvoiceTypeWalletFunding InvoiceType = "WALLET_FUNDING"
	InvoiceTypeVehicleLevy   InvoiceType = "VEHICLE_LEVY"
	InvoiceTypeDriverPermit  InvoiceType = "DRIVER_PERMIT"
)

// OutboxStatus defines settlement event publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
