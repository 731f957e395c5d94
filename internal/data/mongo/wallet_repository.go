// Package mongo provides MongoDB implementations of the domain repositories.
// All repositories read the active session from the request context, so calls
// made inside an atomic region share one multi-document transaction.
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

	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
)

const (
	// WalletCollectionName is the name of the wallet collection in MongoDB
	WalletCollectionName = "wallets"
)

// WalletRepository implements the wallet.Repository interface for MongoDB
type WalletRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewWalletRepository creates a new MongoDB wallet repository
func NewWalletRepository(logger *slog.Logger, db *mongo.Database) wallet.Repository {
	return &WalletRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new wallet after checking the (owner, kind) pair is free
func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	collection := r.db.Collection(WalletCollectionName)

	existing, err := r.GetByOwnerAndKind(ctx, w.OwnerID, w.Kind)
	if err != nil && !errors.Is(err, wallet.ErrWalletNotFound{}) {
		r.logger.Error("Failed to check for existing wallet",
			"owner_id", w.OwnerID.String(),
			"kind", string(w.Kind),
			"error", err)
		return fmt.Errorf("failed to check for existing wallet: %w", err)
	}
	if existing != nil {
		return wallet.ErrDuplicateWallet{OwnerID: w.OwnerID, Kind: w.Kind}
	}

	_, err = collection.InsertOne(ctx, w)
	if err != nil {
		r.logger.Error("Failed to create wallet",
			"wallet_id", w.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByID retrieves a wallet by its ID.
// Returns ErrWalletNotFound if no wallet exists.
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	collection := r.db.Collection(WalletCollectionName)

	filter := bson.M{"_id": id, "removed": false}
	var w wallet.Wallet
	err := collection.FindOne(ctx, filter).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wallet.ErrWalletNotFound{WalletID: id}
		}
		r.logger.Error("Failed to get wallet", "wallet_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// GetByOwnerAndKind retrieves the owner's wallet of the given kind
func (r *WalletRepository) GetByOwnerAndKind(ctx context.Context, ownerID uuid.UUID, kind shared.WalletKind) (*wallet.Wallet, error) {
	collection := r.db.Collection(WalletCollectionName)

	filter := bson.M{"owner_id": ownerID, "kind": kind, "removed": false}
	var w wallet.Wallet
	err := collection.FindOne(ctx, filter).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wallet.ErrWalletNotFound{}
		}
		r.logger.Error("Failed to get wallet by owner and kind",
			"owner_id", ownerID.String(),
			"kind", string(kind),
			"error", err)
		return nil, fmt.Errorf("failed to get wallet by owner and kind: %w", err)
	}

	return &w, nil
}

// ListByOwner retrieves all wallets belonging to an owner
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*wallet.Wallet, error) {
	collection := r.db.Collection(WalletCollectionName)

	cursor, err := collection.Find(ctx, bson.M{"owner_id": ownerID, "removed": false})
	if err != nil {
		r.logger.Error("Failed to list wallets", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer cursor.Close(ctx)

	var wallets []*wallet.Wallet
	if err := cursor.All(ctx, &wallets); err != nil {
		r.logger.Error("Failed to decode wallets", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to decode wallets: %w", err)
	}

	return wallets, nil
}

// IncrementBalance applies a signed delta to the balance as a store-side
// atomic increment. Concurrent transactional writers to the same wallet
// document conflict and retry instead of losing updates.
func (r *WalletRepository) IncrementBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	return r.increment(ctx, id, bson.M{"balance": delta})
}

// IncrementHeld applies a signed delta to the held balance
func (r *WalletRepository) IncrementHeld(ctx context.Context, id uuid.UUID, delta int64) error {
	return r.increment(ctx, id, bson.M{"held_balance": delta})
}

func (r *WalletRepository) increment(ctx context.Context, id uuid.UUID, fields bson.M) error {
	collection := r.db.Collection(WalletCollectionName)

	update := bson.M{
		"$inc": fields,
		"$set": bson.M{"updated_at": time.Now()},
	}
	result, err := collection.UpdateOne(ctx, bson.M{"_id": id, "removed": false}, update)
	if err != nil {
		r.logger.Error("Failed to update wallet balance", "wallet_id", id.String(), "error", err)
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	if result.MatchedCount == 0 {
		return wallet.ErrWalletNotFound{WalletID: id}
	}

	return nil
}

// ResetHeld forces the held balance to zero and returns the previous value
func (r *WalletRepository) ResetHeld(ctx context.Context, id uuid.UUID) (int64, error) {
	collection := r.db.Collection(WalletCollectionName)

	w, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	update := bson.M{
		"$set": bson.M{"held_balance": int64(0), "updated_at": time.Now()},
	}
	result, err := collection.UpdateOne(ctx, bson.M{"_id": id, "removed": false}, update)
	if err != nil {
		r.logger.Error("Failed to reset held balance", "wallet_id", id.String(), "error", err)
		return 0, fmt.Errorf("failed to reset held balance: %w", err)
	}
	if result.MatchedCount == 0 {
		return 0, wallet.ErrWalletNotFound{WalletID: id}
	}

	return w.HeldBalance, nil
}

// SoftRemove marks the owner's wallets removed without deleting their history
func (r *WalletRepository) SoftRemove(ctx context.Context, ownerID uuid.UUID) error {
	collection := r.db.Collection(WalletCollectionName)

	update := bson.M{
		"$set": bson.M{"removed": true, "updated_at": time.Now()},
	}
	_, err := collection.UpdateMany(ctx, bson.M{"owner_id": ownerID}, update)
	if err != nil {
		r.logger.Error("Failed to soft-remove wallets", "owner_id", ownerID.String(), "error", err)
		return fmt.Errorf("failed to soft-remove wallets: %w", err)
	}

	return nil
}
