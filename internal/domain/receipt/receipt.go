package receipt

import (
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// BeneficiaryShare is the immutable snapshot of one resolved beneficiary at
// distribution time, independent of later payment type configuration changes.
type BeneficiaryShare struct {
	AccountID  uuid.UUID              `json:"account_id" bson:"account_id"`
	Role       shared.BeneficiaryRole `json:"role" bson:"role"`
	Percentage int64                  `json:"percentage" bson:"percentage"`
	Amount     int64                  `json:"amount" bson:"amount"`
}

// Receipt is the terminal audit artifact of a successful distribution, the
// record a citizen-facing receipt is built from. VehicleID and DriverID are
// mutually exclusive.
type Receipt struct {
	ID            uuid.UUID                `json:"id" bson:"_id"`
	Amount        int64                    `json:"amount" bson:"amount"`
	DaysPaid      int                      `json:"days_paid,omitempty" bson:"days_paid,omitempty"`
	Beneficiaries []BeneficiaryShare       `json:"beneficiaries" bson:"beneficiaries"`
	Status        shared.TransactionStatus `json:"status" bson:"status"`
	Reference     string                   `json:"reference" bson:"reference"`
	VehicleID     *uuid.UUID               `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	DriverID      *uuid.UUID               `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	ProcessedBy   string                   `json:"processed_by" bson:"processed_by"`
	CreatedAt     time.Time                `json:"created_at" bson:"created_at"`
}
