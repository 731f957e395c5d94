package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository exposes the activation-state mutations the settlement core needs
type Repository interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error)

	// ActivateVehicle marks the vehicle active and grants its starting quota
	ActivateVehicle(ctx context.Context, id uuid.UUID, quotaDays int) error
	// ExtendPaidUntil pushes the vehicle's paid-until window forward by days
	// and increments its payment counter. A lapsed window restarts from now.
	ExtendPaidUntil(ctx context.Context, id uuid.UUID, days int, now time.Time) (time.Time, error)
	// SetPermitWindow sets a driver's permit validity window and activates it
	SetPermitWindow(ctx context.Context, id uuid.UUID, issuedAt, expiresAt time.Time) error
}

// ErrVehicleNotFound indicates a missing vehicle
type ErrVehicleNotFound struct {
	VehicleID uuid.UUID
}

func (e ErrVehicleNotFound) Error() string {
	return "vehicle not found: " + e.VehicleID.String()
}

// Is implements the errors.Is interface for ErrVehicleNotFound
func (e ErrVehicleNotFound) Is(target error) bool {
	t, ok := target.(ErrVehicleNotFound)
	if !ok {
		return false
	}
	if t.VehicleID == uuid.Nil {
		return true
	}
	return e.VehicleID == t.VehicleID
}

// ErrDriverNotFound indicates a missing driver
type ErrDriverNotFound struct {
	DriverID uuid.UUID
}

func (e ErrDriverNotFound) Error() string {
	return "driver not found: " + e.DriverID.String()
}

// Is implements the errors.Is interface for ErrDriverNotFound
func (e ErrDriverNotFound) Is(target error) bool {
	t, ok := target.(ErrDriverNotFound)
	if !ok {
		return false
	}
	if t.DriverID == uuid.Nil {
		return true
	}
	return e.DriverID == t.DriverID
}
