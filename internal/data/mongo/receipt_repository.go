package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/revenue-collection-core/internal/domain/receipt"
)

const (
	// ReceiptCollectionName is the name of the receipt collection in MongoDB
	ReceiptCollectionName = "receipts"
)

// ReceiptRepository implements the receipt.Repository interface for MongoDB
type ReceiptRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewReceiptRepository creates a new MongoDB receipt repository
func NewReceiptRepository(logger *slog.Logger, db *mongo.Database) receipt.Repository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new business receipt
func (r *ReceiptRepository) Create(ctx context.Context, rec *receipt.Receipt) error {
	collection := r.db.Collection(ReceiptCollectionName)

	_, err := collection.InsertOne(ctx, rec)
	if err != nil {
		r.logger.Error("Failed to create receipt", "reference", rec.Reference, "error", err)
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	return nil
}

// GetByReference retrieves a receipt by its reference
func (r *ReceiptRepository) GetByReference(ctx context.Context, reference string) (*receipt.Receipt, error) {
	collection := r.db.Collection(ReceiptCollectionName)

	filter := bson.M{"reference": reference}
	var rec receipt.Receipt
	err := collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, receipt.ErrReceiptNotFound{Reference: reference}
		}
		r.logger.Error("Failed to get receipt", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return &rec, nil
}

// GetByVehicleID retrieves paginated receipts for a vehicle, newest first
func (r *ReceiptRepository) GetByVehicleID(ctx context.Context, vehicleID uuid.UUID, limit, offset int) ([]*receipt.Receipt, error) {
	collection := r.db.Collection(ReceiptCollectionName)

	filter := bson.M{"vehicle_id": vehicleID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get receipts", "vehicle_id", vehicleID.String(), "error", err)
		return nil, fmt.Errorf("failed to get receipts: %w", err)
	}
	defer cursor.Close(ctx)

	var receipts []*receipt.Receipt
	if err := cursor.All(ctx, &receipts); err != nil {
		r.logger.Error("Failed to decode receipts", "vehicle_id", vehicleID.String(), "error", err)
		return nil, fmt.Errorf("failed to decode receipts: %w", err)
	}

	return receipts, nil
}
