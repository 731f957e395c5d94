package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revenue-collection-core/internal/domain/registry"
)

const (
	// VehicleCollectionName is the name of the vehicle collection in MongoDB
	VehicleCollectionName = "vehicles"
	// DriverCollectionName is the name of the driver collection in MongoDB
	DriverCollectionName = "drivers"
)

// RegistryRepository implements the registry.Repository interface for MongoDB
type RegistryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewRegistryRepository creates a new MongoDB registry repository
func NewRegistryRepository(logger *slog.Logger, db *mongo.Database) registry.Repository {
	return &RegistryRepository{
		db:     db,
		logger: logger,
	}
}

// GetVehicle retrieves a vehicle by its ID
func (r *RegistryRepository) GetVehicle(ctx context.Context, id uuid.UUID) (*registry.Vehicle, error) {
	collection := r.db.Collection(VehicleCollectionName)

	var v registry.Vehicle
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, registry.ErrVehicleNotFound{VehicleID: id}
		}
		r.logger.Error("Failed to get vehicle", "vehicle_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &v, nil
}

// GetDriver retrieves a driver by its ID
func (r *RegistryRepository) GetDriver(ctx context.Context, id uuid.UUID) (*registry.Driver, error) {
	collection := r.db.Collection(DriverCollectionName)

	var d registry.Driver
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, registry.ErrDriverNotFound{DriverID: id}
		}
		r.logger.Error("Failed to get driver", "driver_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return &d, nil
}

// ActivateVehicle marks the vehicle active and grants its starting quota
func (r *RegistryRepository) ActivateVehicle(ctx context.Context, id uuid.UUID, quotaDays int) error {
	collection := r.db.Collection(VehicleCollectionName)

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"active":     true,
			"quota_days": quotaDays,
			"paid_until": now.AddDate(0, 0, quotaDays),
			"updated_at": now,
		},
	}
	result, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to activate vehicle", "vehicle_id", id.String(), "error", err)
		return fmt.Errorf("failed to activate vehicle: %w", err)
	}
	if result.MatchedCount == 0 {
		return registry.ErrVehicleNotFound{VehicleID: id}
	}

	return nil
}

// ExtendPaidUntil pushes the vehicle's paid-until window forward by days and
// increments its payment counter. A lapsed window restarts from now so a late
// payer is not charged retroactively for the gap.
func (r *RegistryRepository) ExtendPaidUntil(ctx context.Context, id uuid.UUID, days int, now time.Time) (time.Time, error) {
	collection := r.db.Collection(VehicleCollectionName)

	v, err := r.GetVehicle(ctx, id)
	if err != nil {
		return time.Time{}, err
	}

	base := v.PaidUntil
	if base.Before(now) {
		base = now
	}
	newPaidUntil := base.AddDate(0, 0, days)

	update := bson.M{
		"$set": bson.M{"paid_until": newPaidUntil, "updated_at": now},
		"$inc": bson.M{"payments_count": int64(1)},
	}
	result, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to extend vehicle paid-until", "vehicle_id", id.String(), "error", err)
		return time.Time{}, fmt.Errorf("failed to extend vehicle paid-until: %w", err)
	}
	if result.MatchedCount == 0 {
		return time.Time{}, registry.ErrVehicleNotFound{VehicleID: id}
	}

	return newPaidUntil, nil
}

// SetPermitWindow sets a driver's permit validity window and activates it
func (r *RegistryRepository) SetPermitWindow(ctx context.Context, id uuid.UUID, issuedAt, expiresAt time.Time) error {
	collection := r.db.Collection(DriverCollectionName)

	update := bson.M{
		"$set": bson.M{
			"active":            true,
			"permit_issued_at":  issuedAt,
			"permit_expires_at": expiresAt,
			"updated_at":        time.Now(),
		},
	}
	result, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to set driver permit window", "driver_id", id.String(), "error", err)
		return fmt.Errorf("failed to set driver permit window: %w", err)
	}
	if result.MatchedCount == 0 {
		return registry.ErrDriverNotFound{DriverID: id}
	}

	return nil
}
