package paygate

import (
	"context"
	"sync"
	"time"
)

// StaticClient is an in-memory gateway for local development and tests. It
// remembers created invoices, reports whatever status was seeded for a
// reference, and accepts every transfer.
type StaticClient struct {
	mu       sync.Mutex
	invoices map[string]*VerificationResult
}

// NewStaticClient creates an empty in-memory gateway
func NewStaticClient() *StaticClient {
	return &StaticClient{invoices: make(map[string]*VerificationResult)}
}

// SeedStatus sets the verification result returned for a reference
func (c *StaticClient) SeedStatus(reference, status string, amount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invoices[reference] = &VerificationResult{Reference: reference, Status: status, Amount: amount}
}

// CreateInvoice records a pending invoice
func (c *StaticClient) CreateInvoice(_ context.Context, amount int64, reference, _ string) (*CreatedInvoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invoices[reference] = &VerificationResult{Reference: reference, Status: StatusPending, Amount: amount}
	return &CreatedInvoice{
		Reference:  reference,
		PaymentURL: "https://pay.example.test/" + reference,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}, nil
}

// VerifyStatus returns the seeded status, or PENDING for unknown references
func (c *StaticClient) VerifyStatus(_ context.Context, reference string) (*VerificationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if result, ok := c.invoices[reference]; ok {
		return result, nil
	}
	return &VerificationResult{Reference: reference, Status: StatusPending}, nil
}

// CancelInvoice drops the invoice from the in-memory store
func (c *StaticClient) CancelInvoice(_ context.Context, reference string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.invoices, reference)
	return nil
}

// InitiateTransfer accepts every transfer
func (c *StaticClient) InitiateTransfer(_ context.Context, _ int64, _ BankDetails, reference string) (*TransferHandle, error) {
	return &TransferHandle{Reference: reference, Status: StatusPending}, nil
}
