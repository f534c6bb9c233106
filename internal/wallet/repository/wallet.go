package repository

import (
	"context"
	"fmt"
	"time"

	walleterrors "cabmarket/internal/wallet/errors"
	"cabmarket/pkg/config"
	"cabmarket/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Wallet"

type mongoWalletRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// WalletRepository is an append-only ledger. Entries are never updated
// or deleted; the balance is the sum of a user's entries.
type WalletRepository interface {
	Insert(ctx context.Context, entry *model.WalletEntry) error
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.WalletEntry, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	BalanceByUser(ctx context.Context, userID string) (float64, error)
}

func NewMongoWalletRepository(cfg *config.Config) WalletRepository {
	return &mongoWalletRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoWalletRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoWalletRepository) Insert(ctx context.Context, entry *model.WalletEntry) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	entry.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		// The unique index on booking_id backs the claim-once rule.
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", walleterrors.ErrDuplicateEntry, entry.BookingID)
		}
		return fmt.Errorf("failed to insert wallet entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWalletRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.WalletEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.WalletEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode wallet entries: %w", err)
	}

	return entries, nil
}

func (r *mongoWalletRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count wallet entries: %w", err)
	}
	return count, nil
}

func (r *mongoWalletRepository) BalanceByUser(ctx context.Context, userID string) (float64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate wallet balance: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode wallet balance: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	return results[0].Total, nil
}
