package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "cabmarket/internal/bookings/errors"
	"cabmarket/internal/bookings/fare"
	"cabmarket/internal/bookings/policy"
	"cabmarket/internal/bookings/repository"
	"cabmarket/internal/bookings/validator"
	"cabmarket/internal/events"
	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/middleware"
	"cabmarket/pkg/model"
	"cabmarket/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// CarInventory is the slice of the car domain the booking lifecycle
// needs: flipping availability atomically inside the booking
// transaction.
type CarInventory interface {
	// Reserve marks the car booked. Fails with the car domain's
	// unavailable error when it is already held.
	Reserve(ctx context.Context, carID string) error
	Release(ctx context.Context, carID string) error
	IsUnavailable(err error) bool
	// AlreadyReleased reports whether a Release failure just means the
	// car was not held, which re-release treats as success.
	AlreadyReleased(err error) bool
}

// WalletLedger appends reward credits for claimed bookings.
type WalletLedger interface {
	Accrue(ctx context.Context, userID, bookingID string, amount float64) error
}

type BookingService interface {
	Create(ctx context.Context, identity middleware.Identity, booking *model.Booking) error
	GetByID(ctx context.Context, identity middleware.Identity, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, identity middleware.Identity, status string, limit int, offset int64) ([]*model.Booking, int64, error)
	ListAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, identity middleware.Identity, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, identity middleware.Identity, id string) error
	Claim(ctx context.Context, identity middleware.Identity, id string) (float64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	cars      CarInventory
	wallet    WalletLedger
	publisher events.Publisher
	calc      *fare.Calculator
	window    policy.Window
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	cars CarInventory,
	wallet WalletLedger,
	publisher events.Publisher,
	calc *fare.Calculator,
	bookingValidator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		cars:      cars,
		wallet:    wallet,
		publisher: publisher,
		calc:      calc,
		window:    policy.NewWindow(cfg.CancelWindowHours),
		validator: bookingValidator,
		cfg:       cfg,
	}
}

// Create prices the trip and reserves the car and inserts the booking in
// one transaction. Reserving first means a concurrent request for the
// same car loses before any booking document exists.
func (s *bookingService) Create(ctx context.Context, identity middleware.Identity, booking *model.Booking) error {
	booking.UserID = identity.UserID
	s.applyDefaults(booking)
	s.sanitize(booking)

	if err := s.validate(booking); err != nil {
		return err
	}

	quote := s.calc.Price(s.calc.Distance(booking.PickupLocation, booking.DropLocation), booking.ExtraPassengers)
	booking.DistanceKm = quote.DistanceKm
	booking.ExtraPassengerFare = quote.ExtraPassengerFare
	booking.Fare = quote.Fare

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.cars.Reserve(sessCtx, booking.CarID); err != nil {
			if s.cars.IsUnavailable(err) {
				return apperrors.Conflict("Car is already booked")
			}
			return apperrors.Internal("Failed to reserve car", err)
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "car_id", booking.CarID, "user_id", booking.UserID, "error", err)
		return err
	}

	s.publisher.BookingCreated(ctx, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", booking.UserID,
		"car_id", booking.CarID,
		"fare", booking.Fare,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, identity middleware.Identity, id string) (*model.Booking, error) {
	booking, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(identity, booking); err != nil {
		return nil, err
	}

	if err := s.repo.AttachUsers(ctx, []*model.Booking{booking}); err != nil {
		s.cfg.Log.Warn("Failed to attach user to booking", "id", id, "error", err)
	}

	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, identity middleware.Identity, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx, identity.UserID, status, limit, offset)
}

func (s *bookingService) ListAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx, "", status, limit, offset)
}

func (s *bookingService) list(ctx context.Context, userID string, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, userID, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	if err := s.repo.AttachUsers(ctx, bookings); err != nil {
		s.cfg.Log.Warn("Failed to attach users to bookings", "error", err)
	}

	return bookings, count, nil
}

// Update patches trip details on an active booking, gated by the same
// lead-time window as Cancel. Validation happens on the merged result
// before any write, so a rejected update leaves the stored booking
// untouched. The fare is repriced when passengers change.
func (s *bookingService) Update(ctx context.Context, identity middleware.Identity, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	existing, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(identity, existing); err != nil {
		return nil, err
	}
	if existing.Status != model.BookingStatusActive {
		return nil, apperrors.PolicyViolation("Only active bookings can be modified")
	}

	// The window is measured against the stored schedule, so a trip
	// departing soon cannot be edited even to push its departure out.
	departure, err := policy.DepartureTime(existing.TravelDate, existing.PickupTime, time.Local)
	if err != nil {
		s.cfg.Log.Error("Stored booking schedule is unparseable", "id", id, "error", err)
		return nil, apperrors.Validation("Booking schedule is invalid", map[string]any{"error": err.Error()})
	}
	if !s.window.CanCancel(departure, time.Now()) {
		return nil, apperrors.PolicyViolation(fmt.Sprintf(
			"Bookings can only be modified at least %g hours before pickup; contact an administrator for changes inside this window", s.window.Hours(),
		))
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	quote := s.calc.Price(merged.DistanceKm, merged.ExtraPassengers)
	merged.ExtraPassengerFare = quote.ExtraPassengerFare
	merged.Fare = quote.Fare

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return merged, nil
}

// Cancel deactivates the booking and frees its car in one transaction,
// but only when departure is still at least the configured window away.
func (s *bookingService) Cancel(ctx context.Context, identity middleware.Identity, id string) error {
	booking, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(identity, booking); err != nil {
		return err
	}
	if booking.Status != model.BookingStatusActive {
		return apperrors.PolicyViolation("Booking is already cancelled")
	}

	departure, err := policy.DepartureTime(booking.TravelDate, booking.PickupTime, time.Local)
	if err != nil {
		// A stored schedule that no longer parses must not slip through
		// as an allowed cancellation.
		s.cfg.Log.Error("Stored booking schedule is unparseable", "id", id, "error", err)
		return apperrors.Validation("Booking schedule is invalid", map[string]any{"error": err.Error()})
	}

	if !s.window.CanCancel(departure, time.Now()) {
		return apperrors.PolicyViolation(fmt.Sprintf(
			"Bookings can only be cancelled at least %g hours before pickup; contact an administrator to cancel inside this window", s.window.Hours(),
		))
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.SetStatus(sessCtx, id, model.BookingStatusInactive); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to cancel booking", err)
		}
		if err := s.cars.Release(sessCtx, booking.CarID); err != nil {
			return apperrors.Internal("Failed to release car", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return err
	}

	booking.Status = model.BookingStatusInactive
	s.publisher.BookingCancelled(ctx, booking)

	s.cfg.Log.Info("Booking cancelled successfully", "id", id, "car_id", booking.CarID)
	return nil
}

// Claim credits wallet points for a booking exactly once. The claimed
// flag flip and the ledger append run in the same transaction, so a
// replayed claim can never double-credit.
func (s *bookingService) Claim(ctx context.Context, identity middleware.Identity, id string) (float64, error) {
	booking, err := s.fetch(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.authorize(identity, booking); err != nil {
		return 0, err
	}
	if booking.Claimed {
		return 0, apperrors.Conflict("Booking reward already claimed")
	}

	points := s.calc.WalletPoints(booking.DistanceKm)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.MarkClaimed(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrAlreadyClaimed) {
				return apperrors.Conflict("Booking reward already claimed")
			}
			return apperrors.Internal("Failed to mark booking claimed", err)
		}
		if err := s.wallet.Accrue(sessCtx, booking.UserID, id, points); err != nil {
			return apperrors.Internal("Failed to credit wallet", err)
		}
		// Ride completion frees the car. Cancel may already have
		// released it, so an unheld car is fine here.
		if err := s.cars.Release(sessCtx, booking.CarID); err != nil && !s.cars.AlreadyReleased(err) {
			return apperrors.Internal("Failed to release car", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to claim booking reward", "id", id, "error", err)
		return 0, err
	}

	s.publisher.BookingClaimed(ctx, booking, points)

	s.cfg.Log.Info("Booking reward claimed", "id", id, "user_id", booking.UserID, "points", points)
	return points, nil
}

// --- Helpers ---

func (s *bookingService) fetch(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) authorize(identity middleware.Identity, booking *model.Booking) error {
	if identity.IsAdmin || identity.UserID == booking.UserID {
		return nil
	}
	return apperrors.Forbidden("Booking belongs to another user")
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	b.ID = ""
	b.Status = model.BookingStatusActive
	b.Claimed = false
	if b.PaymentStatus == "" {
		b.PaymentStatus = model.PaymentStatusPending
	}
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.PickupLocation = sanitizer.NormalizeLocation(b.PickupLocation)
	b.DropLocation = sanitizer.NormalizeLocation(b.DropLocation)
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.TravelDate != "" {
		merged.TravelDate = updates.TravelDate
	}
	if updates.PickupTime != "" {
		merged.PickupTime = updates.PickupTime
	}
	if updates.PickupLocation != "" {
		merged.PickupLocation = updates.PickupLocation
	}
	if updates.DropLocation != "" {
		merged.DropLocation = updates.DropLocation
	}
	if updates.Luggage != nil {
		merged.Luggage = *updates.Luggage
	}
	if updates.ExtraPassengers != nil {
		merged.ExtraPassengers = *updates.ExtraPassengers
	}
	if updates.PaymentStatus != "" {
		merged.PaymentStatus = updates.PaymentStatus
	}
	if updates.PaymentMethod != "" {
		merged.PaymentMethod = updates.PaymentMethod
	}
	if updates.PaymentDate != nil {
		merged.PaymentDate = updates.PaymentDate
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
