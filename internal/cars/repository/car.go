package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	carserrors "cabmarket/internal/cars/errors"
	"cabmarket/pkg/config"
	"cabmarket/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Cars"

type mongoCarRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type CarRepository interface {
	Create(ctx context.Context, car *model.Car) error
	FindByID(ctx context.Context, id string) (*model.Car, error)
	FindAll(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Car, error)
	Count(ctx context.Context, onlyAvailable bool) (int64, error)
	Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Car, error)
	Update(ctx context.Context, id string, car *model.Car) error
	Delete(ctx context.Context, id string) error
	Reserve(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
	AddReviewID(ctx context.Context, carID, reviewID string) error
	RemoveReviewID(ctx context.Context, carID, reviewID string) error
}

func NewMongoCarRepository(cfg *config.Config) CarRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCarRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCarRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCarRepository) Create(ctx context.Context, car *model.Car) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	car.CreatedAt = now
	car.UpdatedAt = now
	car.IsBooked = false

	result, err := r.collection.InsertOne(ctx, car)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		car.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCarRepository) FindByID(ctx context.Context, id string) (*model.Car, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	var car model.Car
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&car)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, carserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find car: %w", err)
	}

	return &car, nil
}

func (r *mongoCarRepository) FindAll(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Car, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if onlyAvailable {
		filter["is_booked"] = false
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cars: %w", err)
	}
	defer cursor.Close(ctx)

	var cars []*model.Car
	if err = cursor.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("failed to decode cars: %w", err)
	}

	return cars, nil
}

func (r *mongoCarRepository) Count(ctx context.Context, onlyAvailable bool) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if onlyAvailable {
		filter["is_booked"] = false
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count cars: %w", err)
	}
	return count, nil
}

// Search matches the query case-insensitively against car names and
// descriptions.
func (r *mongoCarRepository) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Car, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pattern := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"name": pattern},
		{"description": pattern},
		{"type": pattern},
	}}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search cars: %w", err)
	}
	defer cursor.Close(ctx)

	var cars []*model.Car
	if err = cursor.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("failed to decode cars: %w", err)
	}

	return cars, nil
}

func (r *mongoCarRepository) Update(ctx context.Context, id string, car *model.Car) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":        car.Name,
			"description": car.Description,
			"image":       car.Image,
			"seats":       car.Seats,
			"max_weight":  car.MaxWeight,
			"price":       car.Price,
			"type":        car.Type,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	if result.MatchedCount == 0 {
		return carserrors.ErrNotFound
	}

	return nil
}

func (r *mongoCarRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	if result.DeletedCount == 0 {
		return carserrors.ErrNotFound
	}

	return nil
}

// Reserve flips is_booked in one conditional update. Matching on
// is_booked=false means two concurrent bookings for the same car cannot
// both succeed: the loser matches zero documents.
func (r *mongoCarRepository) Reserve(ctx context.Context, id string) error {
	return r.flipBooked(ctx, id, false, true, carserrors.ErrUnavailable)
}

// Release returns a car to the available pool.
func (r *mongoCarRepository) Release(ctx context.Context, id string) error {
	return r.flipBooked(ctx, id, true, false, carserrors.ErrNotBooked)
}

func (r *mongoCarRepository) flipBooked(ctx context.Context, id string, from, to bool, conflictErr error) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "is_booked": from}
	update := bson.M{"$set": bson.M{
		"is_booked":  to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update car availability: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing car from one in the wrong state.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr == nil && count == 0 {
			return carserrors.ErrNotFound
		}
		return conflictErr
	}

	return nil
}

func (r *mongoCarRepository) AddReviewID(ctx context.Context, carID, reviewID string) error {
	return r.updateReviewIDs(ctx, carID, "$addToSet", reviewID)
}

func (r *mongoCarRepository) RemoveReviewID(ctx context.Context, carID, reviewID string) error {
	return r.updateReviewIDs(ctx, carID, "$pull", reviewID)
}

func (r *mongoCarRepository) updateReviewIDs(ctx context.Context, carID, op, reviewID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return fmt.Errorf("%w: %s", carserrors.ErrInvalidID, carID)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{op: bson.M{"review_ids": reviewID}})
	if err != nil {
		return fmt.Errorf("failed to update car reviews: %w", err)
	}
	if result.MatchedCount == 0 {
		return carserrors.ErrNotFound
	}

	return nil
}
