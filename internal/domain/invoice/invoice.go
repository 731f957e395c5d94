package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// Metadata identifies the entity an invoice pays for. Exactly one of
// VehicleID/DriverID is set for levy and permit invoices; funding invoices
// carry only the owner whose deposit wallet is topped up.
type Metadata struct {
	OwnerID   uuid.UUID  `json:"owner_id" bson:"owner_id"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	DriverID  *uuid.UUID `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
}

// Invoice is a payable request issued to an external payer. It transitions
// Pending to Paid exactly once; transitions out of Paid are forbidden.
type Invoice struct {
	ID        uuid.UUID            `json:"id" bson:"_id"`
	Type      shared.InvoiceType   `json:"type" bson:"type"`
	Amount    int64                `json:"amount" bson:"amount"`
	Reference string               `json:"reference" bson:"reference"`
	Status    shared.InvoiceStatus `json:"status" bson:"status"`
	Metadata  Metadata             `json:"metadata" bson:"metadata"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// New creates a pending invoice for the given payable action
func New(invType shared.InvoiceType, amount int64, reference string, meta Metadata) *Invoice {
	now := time.Now()
	return &Invoice{
		ID:        uuid.New(),
		Type:      invType,
		Amount:    amount,
		Reference: reference,
		Status:    shared.InvoiceStatusPending,
		Metadata:  meta,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
