package handler

import (
	"time"

	"github.com/revenue-collection-core/internal/domain/invoice"
	"github.com/revenue-collection-core/internal/domain/ledger"
	"github.com/revenue-collection-core/internal/domain/receipt"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/domain/withdrawal"
)

// ProvisionWalletsRequest represents a request to provision a wallet pair
type ProvisionWalletsRequest struct {
	OwnerID string `json:"owner_id" binding:"required,uuid"`
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Kind      string `json:"kind"`
	Balance   int64  `json:"balance"`
	Held      int64  `json:"held_balance"`
	Available int64  `json:"available_balance"`
	CreatedAt string `json:"created_at"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	WalletID    string `json:"wallet_id"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	ProcessedBy string `json:"processed_by"`
	CreatedAt   string `json:"created_at"`
}

// PayTaxRequest represents a synchronous tax payment request
type PayTaxRequest struct {
	CollectorID string `json:"collector_id" binding:"required,uuid"`
	VehicleID   string `json:"vehicle_id" binding:"required,uuid"`
	Units       int    `json:"units" binding:"required,gt=0"`
}

// BeneficiaryShareResponse represents one beneficiary share on a receipt
type BeneficiaryShareResponse struct {
	AccountID  string `json:"account_id"`
	Role       string `json:"role"`
	Percentage int64  `json:"percentage"`
	Amount     int64  `json:"amount"`
}

// ReceiptResponse represents a settlement receipt in API responses
type ReceiptResponse struct {
	ID            string                     `json:"id"`
	Amount        int64                      `json:"amount"`
	DaysPaid      int                        `json:"days_paid,omitempty"`
	Beneficiaries []BeneficiaryShareResponse `json:"beneficiaries"`
	Status        string                     `json:"status"`
	Reference     string                     `json:"reference"`
	VehicleID     string                     `json:"vehicle_id,omitempty"`
	DriverID      string                     `json:"driver_id,omitempty"`
	ProcessedBy   string                     `json:"processed_by"`
	CreatedAt     string                     `json:"created_at"`
}

// CreateInvoiceRequest represents a request to issue a payable invoice
type CreateInvoiceRequest struct {
	Type      string `json:"type" binding:"required,oneof=WALLET_FUNDING VEHICLE_LEVY DRIVER_PERMIT"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	OwnerID   string `json:"owner_id" binding:"required,uuid"`
	VehicleID string `json:"vehicle_id,omitempty" binding:"omitempty,uuid"`
	DriverID  string `json:"driver_id,omitempty" binding:"omitempty,uuid"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
	Reference  string `json:"reference"`
	Status     string `json:"status"`
	OwnerID    string `json:"owner_id"`
	VehicleID  string `json:"vehicle_id,omitempty"`
	DriverID   string `json:"driver_id,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// RequestWithdrawalRequest represents a withdrawal request
type RequestWithdrawalRequest struct {
	OwnerID       string `json:"owner_id" binding:"required,uuid"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	AccountNumber string `json:"account_number" binding:"required"`
	BankCode      string `json:"bank_code" binding:"required"`
	AccountName   string `json:"account_name,omitempty"`
}

// AuthorizeWithdrawalRequest represents an OTP authorization request
type AuthorizeWithdrawalRequest struct {
	Reference string `json:"reference" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

// WithdrawalResponse represents a withdrawal in API responses
type WithdrawalResponse struct {
	ID        string `json:"id"`
	WalletID  string `json:"wallet_id"`
	OwnerID   string `json:"owner_id"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ResetHeldResponse reports the outcome of a held-balance reset
type ResetHeldResponse struct {
	WalletID     string `json:"wallet_id"`
	PreviousHeld int64  `json:"previous_held"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

func mapWalletToResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		OwnerID:   w.OwnerID.String(),
		Kind:      string(w.Kind),
		Balance:   w.Balance,
		Held:      w.HeldBalance,
		Available: w.Available(),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

func mapEntryToResponse(e *ledger.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          e.ID.String(),
		Type:        string(e.Type),
		FromAccount: e.FromAccount,
		ToAccount:   e.ToAccount,
		WalletID:    e.WalletID.String(),
		Amount:      e.Amount,
		Reference:   e.Reference,
		Description: e.Description,
		Status:      string(e.Status),
		ProcessedBy: e.ProcessedBy,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func mapReceiptToResponse(r *receipt.Receipt) ReceiptResponse {
	shares := make([]BeneficiaryShareResponse, 0, len(r.Beneficiaries))
	for _, s := range r.Beneficiaries {
		shares = append(shares, BeneficiaryShareResponse{
			AccountID:  s.AccountID.String(),
			Role:       string(s.Role),
			Percentage: s.Percentage,
			Amount:     s.Amount,
		})
	}

	resp := ReceiptResponse{
		ID:            r.ID.String(),
		Amount:        r.Amount,
		DaysPaid:      r.DaysPaid,
		Beneficiaries: shares,
		Status:        string(r.Status),
		Reference:     r.Reference,
		ProcessedBy:   r.ProcessedBy,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.VehicleID != nil {
		resp.VehicleID = r.VehicleID.String()
	}
	if r.DriverID != nil {
		resp.DriverID = r.DriverID.String()
	}
	return resp
}

func mapInvoiceToResponse(inv *invoice.Invoice, paymentURL string) InvoiceResponse {
	resp := InvoiceResponse{
		ID:         inv.ID.String(),
		Type:       string(inv.Type),
		Amount:     inv.Amount,
		Reference:  inv.Reference,
		Status:     string(inv.Status),
		OwnerID:    inv.Metadata.OwnerID.String(),
		PaymentURL: paymentURL,
		CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.Metadata.VehicleID != nil {
		resp.VehicleID = inv.Metadata.VehicleID.String()
	}
	if inv.Metadata.DriverID != nil {
		resp.DriverID = inv.Metadata.DriverID.String()
	}
	return resp
}

func mapWithdrawalToResponse(w *withdrawal.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:        w.ID.String(),
		WalletID:  w.WalletID.String(),
		OwnerID:   w.OwnerID.String(),
		Amount:    w.Amount,
		Reference: w.Reference,
		Status:    string(w.Status),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}
