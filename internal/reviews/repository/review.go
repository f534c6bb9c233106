package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reviewserrors "cabmarket/internal/reviews/errors"
	"cabmarket/pkg/config"
	mongotx "cabmarket/pkg/db/mongo"
	"cabmarket/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName      = "Reviews"
	UsersCollectionName = "Users"
)

type mongoReviewRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	users      *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id string) (*model.Review, error)
	FindByCar(ctx context.Context, carID string, limit int, offset int64) ([]*model.Review, error)
	CountByCar(ctx context.Context, carID string) (int64, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	AttachUsers(ctx context.Context, reviews []*model.Review) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReviewRepository(cfg *config.Config) ReviewRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReviewRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		users:      db.Collection(UsersCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoReviewRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReviewRepository) Create(ctx context.Context, review *model.Review) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	review.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reviewserrors.ErrInvalidID, id)
	}

	var review model.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reviewserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}

	return &review, nil
}

func (r *mongoReviewRepository) FindByCar(ctx context.Context, carID string, limit int, offset int64) ([]*model.Review, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"car_id": carID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []*model.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

func (r *mongoReviewRepository) CountByCar(ctx context.Context, carID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"car_id": carID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

func (r *mongoReviewRepository) UpdateContent(ctx context.Context, id, content string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reviewserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"content": content}},
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if result.MatchedCount == 0 {
		return reviewserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reviewserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return reviewserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReviewRepository) AttachUsers(ctx context.Context, reviews []*model.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	ids := make([]primitive.ObjectID, 0, len(reviews))
	seen := make(map[string]struct{}, len(reviews))
	for _, review := range reviews {
		if _, ok := seen[review.UserID]; ok {
			continue
		}
		seen[review.UserID] = struct{}{}
		oid, err := primitive.ObjectIDFromHex(review.UserID)
		if err != nil {
			continue
		}
		ids = append(ids, oid)
	}
	if len(ids) == 0 {
		return nil
	}

	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to find review users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.UserSummary
	if err = cursor.All(ctx, &users); err != nil {
		return fmt.Errorf("failed to decode review users: %w", err)
	}

	byID := make(map[string]*model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, review := range reviews {
		review.User = byID[review.UserID]
	}

	return nil
}

func (r *mongoReviewRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
