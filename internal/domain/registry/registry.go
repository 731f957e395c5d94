package registry

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle carries only the activation state the settlement core mutates:
// the levy quota granted on activation, the rolling paid-until window the tax
// flow extends, and a usage counter. Registration itself happens elsewhere.
type Vehicle struct {
	ID            uuid.UUID `json:"id" bson:"_id"`
	AssociationID uuid.UUID `json:"association_id" bson:"association_id"`
	CollectorID   uuid.UUID `json:"collector_id" bson:"collector_id"`
	Active        bool      `json:"active" bson:"active"`
	QuotaDays     int       `json:"quota_days" bson:"quota_days"`
	PaidUntil     time.Time `json:"paid_until" bson:"paid_until"`
	PaymentsCount int64     `json:"payments_count" bson:"payments_count"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// Driver carries the permit validity window set when a permit invoice settles
type Driver struct {
	ID              uuid.UUID `json:"id" bson:"_id"`
	AssociationID   uuid.UUID `json:"association_id" bson:"association_id"`
	Active          bool      `json:"active" bson:"active"`
	PermitIssuedAt  time.Time `json:"permit_issued_at" bson:"permit_issued_at"`
	PermitExpiresAt time.Time `json:"permit_expires_at" bson:"permit_expires_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}
