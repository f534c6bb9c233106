package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "cabmarket/internal/bookings/errors"
	"cabmarket/pkg/config"
	mongotx "cabmarket/pkg/db/mongo"
	"cabmarket/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName      = "Bookings"
	UsersCollectionName = "Users"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	users      *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string, status string, limit int, offset int64) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string, status string) (int64, error)
	FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, id string, booking *model.Booking) error
	SetStatus(ctx context.Context, id string, status string) error
	MarkClaimed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	AttachUsers(ctx context.Context, bookings []*model.Booking) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		users:      db.Collection(UsersCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction. A SessionContext cannot be wrapped without breaking
// transaction semantics, so it is returned with a no-op cancel.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, status string, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, r.listFilter(userID, status), limit, offset)
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string, status string) (int64, error) {
	return r.count(ctx, r.listFilter(userID, status))
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, r.listFilter("", status), limit, offset)
}

func (r *mongoBookingRepository) Count(ctx context.Context, status string) (int64, error) {
	return r.count(ctx, r.listFilter("", status))
}

func (r *mongoBookingRepository) listFilter(userID string, status string) bson.M {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"travel_date":          booking.TravelDate,
			"pickup_time":          booking.PickupTime,
			"pickup_location":      booking.PickupLocation,
			"drop_location":        booking.DropLocation,
			"luggage":              booking.Luggage,
			"extra_passengers":     booking.ExtraPassengers,
			"extra_passenger_fare": booking.ExtraPassengerFare,
			"fare":                 booking.Fare,
			"distance_km":          booking.DistanceKm,
			"payment_status":       booking.PaymentStatus,
			"payment_method":       booking.PaymentMethod,
			"payment_date":         booking.PaymentDate,
			"updated_at":           time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) SetStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to set booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

// MarkClaimed flips the claimed flag in a single conditional update.
// Matching on claimed=false makes concurrent claims lose cleanly: only
// the first writer matches, every other attempt reports already claimed.
func (r *mongoBookingRepository) MarkClaimed(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "claimed": false}
	update := bson.M{"$set": bson.M{
		"claimed":    true,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark booking claimed: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrAlreadyClaimed
	}

	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

// AttachUsers populates the owner summary on each booking with one $in
// query against the users collection.
func (r *mongoBookingRepository) AttachUsers(ctx context.Context, bookings []*model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	ids := make([]primitive.ObjectID, 0, len(bookings))
	seen := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		oid, err := primitive.ObjectIDFromHex(b.UserID)
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
		return fmt.Errorf("failed to find booking users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.UserSummary
	if err = cursor.All(ctx, &users); err != nil {
		return fmt.Errorf("failed to decode booking users: %w", err)
	}

	byID := make(map[string]*model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, b := range bookings {
		b.User = byID[b.UserID]
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
