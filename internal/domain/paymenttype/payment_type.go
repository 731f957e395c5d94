package paymenttype

import (
	"time"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// Beneficiary binds a role to its fixed percentage of a payment type's
// proceeds. Order matters: the first beneficiary absorbs the rounding
// remainder after integer share truncation.
type Beneficiary struct {
	Role       shared.BeneficiaryRole `json:"role" bson:"role"`
	Percentage int64                  `json:"percentage" bson:"percentage"`
}

// PaymentType configures how one category of payment is split across
// beneficiaries. Percentages must sum to exactly 100; the sum is re-validated
// at distribution time because roles can change after a snapshot was taken.
type PaymentType struct {
	ID            uuid.UUID     `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	BaseAmount    int64         `json:"base_amount" bson:"base_amount"`
	Beneficiaries []Beneficiary `json:"beneficiaries" bson:"beneficiaries"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

// PercentageSum totals the configured percentages
func (p *PaymentType) PercentageSum() int64 {
	var sum int64
	for _, b := range p.Beneficiaries {
		sum += b.Percentage
	}
	return sum
}

// Validate checks the configuration invariants
func (p *PaymentType) Validate() error {
	if p.Name == "" {
		return shared.E(shared.KindValidation, "payment type name cannot be empty")
	}
	if p.BaseAmount < 0 {
		return shared.E(shared.KindValidation, "payment type base amount cannot be negative")
	}
	if len(p.Beneficiaries) == 0 {
		return shared.E(shared.KindBeneficiaryConfig, "payment type has no beneficiaries")
	}
	for _, b := range p.Beneficiaries {
		if b.Percentage <= 0 {
			return shared.Ef(shared.KindBeneficiaryConfig, "beneficiary %s has non-positive percentage %d", b.Role, b.Percentage)
		}
	}
	if sum := p.PercentageSum(); sum != 100 {
		return shared.Ef(shared.KindBeneficiaryConfig, "beneficiary percentages sum to %d, want exactly 100", sum)
	}
	return nil
}
