package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/revenue-collection-core/internal/domain/outbox"
	"github.com/revenue-collection-core/internal/domain/shared"
)

const (
	// OutboxCollectionName is the name of the outbox collection in MongoDB
	OutboxCollectionName = "outbox_messages"
)

// OutboxRepository implements the outbox.Repository interface for MongoDB.
// Messages are written inside the same transaction as the mutation they
// describe and drained by the poller outside any transaction.
type OutboxRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewOutboxRepository creates a new MongoDB outbox repository
func NewOutboxRepository(logger *slog.Logger, db *mongo.Database) outbox.Repository {
	return &OutboxRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new pending outbox message
func (r *OutboxRepository) Create(ctx context.Context, msg *outbox.Message) error {
	collection := r.db.Collection(OutboxCollectionName)

	_, err := collection.InsertOne(ctx, msg)
	if err != nil {
		r.logger.Error("Failed to create outbox message", "reference", msg.Reference, "error", err)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}

	return nil
}

// GetPending retrieves up to limit pending messages, oldest first
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	collection := r.db.Collection(OutboxCollectionName)

	filter := bson.M{"status": shared.OutboxStatusPending}
	opts := options.Find().
		SetSort(bson.M{"created_at": 1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*outbox.Message
	if err := cursor.All(ctx, &messages); err != nil {
		r.logger.Error("Failed to decode outbox messages", "error", err)
		return nil, fmt.Errorf("failed to decode outbox messages: %w", err)
	}

	return messages, nil
}

// IncrementAttempts bumps the attempt counter after a failed publish
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	collection := r.db.Collection(OutboxCollectionName)

	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"last_attempt_at": time.Now()},
	}
	_, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to increment outbox attempts", "outbox_id", id.String(), "error", err)
		return fmt.Errorf("failed to increment outbox attempts: %w", err)
	}

	return nil
}

// UpdateStatus marks a message processed or failed
func (r *OutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.OutboxStatus) error {
	collection := r.db.Collection(OutboxCollectionName)

	update := bson.M{
		"$set": bson.M{"status": status, "last_attempt_at": time.Now()},
	}
	_, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to update outbox status", "outbox_id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to update outbox status: %w", err)
	}

	return nil
}
