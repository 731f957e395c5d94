// Package paygate talks to the external payment gateway: invoice issuance,
// payment status verification and bank transfer initiation. The settlement
// core never trusts a webhook amount; it verifies against this client.
package paygate

import (
	"context"
	"time"
)

// Invoice/transfer status values reported by the gateway
const (
	StatusPaid    = "PAID"
	StatusPending = "PENDING"
	StatusFailed  = "FAILED"
	StatusSuccess = "SUCCESS"
)

// CreatedInvoice is the gateway's record of a newly issued invoice
type CreatedInvoice struct {
	Reference  string    `json:"reference"`
	PaymentURL string    `json:"payment_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// VerificationResult is the gateway's authoritative view of an invoice
type VerificationResult struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// BankDetails identifies the destination of an outbound transfer
type BankDetails struct {
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	AccountName   string `json:"account_name"`
}

// TransferHandle is the gateway's acknowledgement of an initiated transfer.
// Settlement arrives later via the disbursement webhook.
type TransferHandle struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Client is the outbound gateway surface the services depend on
type Client interface {
	CreateInvoice(ctx context.Context, amount int64, reference, description string) (*CreatedInvoice, error)
	VerifyStatus(ctx context.Context, reference string) (*VerificationResult, error)
	CancelInvoice(ctx context.Context, reference string) error
	InitiateTransfer(ctx context.Context, amount int64, destination BankDetails, reference string) (*TransferHandle, error)
}
