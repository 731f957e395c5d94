package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revenue-collection-core/internal/domain/paymenttype"
)

const (
	// PaymentTypeCollectionName is the name of the payment type collection in MongoDB
	PaymentTypeCollectionName = "payment_types"
)

// PaymentTypeRepository implements the paymenttype.Repository interface for MongoDB
type PaymentTypeRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPaymentTypeRepository creates a new MongoDB payment type repository
func NewPaymentTypeRepository(logger *slog.Logger, db *mongo.Database) paymenttype.Repository {
	return &PaymentTypeRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new payment type configuration after validating it
func (r *PaymentTypeRepository) Create(ctx context.Context, pt *paymenttype.PaymentType) error {
	if err := pt.Validate(); err != nil {
		return err
	}

	collection := r.db.Collection(PaymentTypeCollectionName)

	_, err := collection.InsertOne(ctx, pt)
	if err != nil {
		r.logger.Error("Failed to create payment type", "name", pt.Name, "error", err)
		return fmt.Errorf("failed to create payment type: %w", err)
	}

	return nil
}

// GetByName retrieves a payment type by its name
func (r *PaymentTypeRepository) GetByName(ctx context.Context, name string) (*paymenttype.PaymentType, error) {
	collection := r.db.Collection(PaymentTypeCollectionName)

	filter := bson.M{"name": name}
	var pt paymenttype.PaymentType
	err := collection.FindOne(ctx, filter).Decode(&pt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymenttype.ErrPaymentTypeNotFound{Name: name}
		}
		r.logger.Error("Failed to get payment type", "name", name, "error", err)
		return nil, fmt.Errorf("failed to get payment type: %w", err)
	}

	return &pt, nil
}

// Update replaces a payment type's beneficiary configuration
func (r *PaymentTypeRepository) Update(ctx context.Context, pt *paymenttype.PaymentType) error {
	if err := pt.Validate(); err != nil {
		return err
	}

	collection := r.db.Collection(PaymentTypeCollectionName)

	pt.UpdatedAt = time.Now()
	filter := bson.M{"_id": pt.ID}
	update := bson.M{
		"$set": bson.M{
			"base_amount":   pt.BaseAmount,
			"beneficiaries": pt.Beneficiaries,
			"updated_at":    pt.UpdatedAt,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update payment type", "name", pt.Name, "error", err)
		return fmt.Errorf("failed to update payment type: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymenttype.ErrPaymentTypeNotFound{Name: pt.Name}
	}

	return nil
}
