package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revenue-collection-core/internal/domain/withdrawal"
)

const (
	// WithdrawalCollectionName is the name of the withdrawal collection in MongoDB
	WithdrawalCollectionName = "withdrawals"
)

// WithdrawalRepository implements the withdrawal.Repository interface for MongoDB
type WithdrawalRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewWithdrawalRepository creates a new MongoDB withdrawal repository
func NewWithdrawalRepository(logger *slog.Logger, db *mongo.Database) withdrawal.Repository {
	return &WithdrawalRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, w *withdrawal.Withdrawal) error {
	collection := r.db.Collection(WithdrawalCollectionName)

	_, err := collection.InsertOne(ctx, w)
	if err != nil {
		r.logger.Error("Failed to create withdrawal", "reference", w.Reference, "error", err)
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}

	return nil
}

// GetByReference retrieves a withdrawal by its reference
func (r *WithdrawalRepository) GetByReference(ctx context.Context, reference string) (*withdrawal.Withdrawal, error) {
	collection := r.db.Collection(WithdrawalCollectionName)

	var w withdrawal.Withdrawal
	err := collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, withdrawal.ErrWithdrawalNotFound{Reference: reference}
		}
		r.logger.Error("Failed to get withdrawal", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}

	return &w, nil
}

// UpdateStatus advances a withdrawal's lifecycle state
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, reference string, status withdrawal.Status) error {
	collection := r.db.Collection(WithdrawalCollectionName)

	update := bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	}
	result, err := collection.UpdateOne(ctx, bson.M{"reference": reference}, update)
	if err != nil {
		r.logger.Error("Failed to update withdrawal status",
			"reference", reference,
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to update withdrawal status: %w", err)
	}
	if result.MatchedCount == 0 {
		return withdrawal.ErrWithdrawalNotFound{Reference: reference}
	}

	return nil
}
