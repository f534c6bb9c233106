package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	bookingserrors "cabmarket/internal/bookings/errors"
	"cabmarket/internal/bookings/fare"
	"cabmarket/internal/bookings/policy"
	"cabmarket/internal/bookings/validator"
	"cabmarket/pkg/config"
	mongotx "cabmarket/pkg/db/mongo"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/middleware"
	"cabmarket/pkg/model"
)

const (
	testUserID  = "507f1f77bcf86cd799439011"
	testCarID   = "507f1f77bcf86cd799439012"
	testOtherID = "507f1f77bcf86cd799439013"
	bookingID   = "507f1f77bcf86cd799439014"
)

var (
	errCarTaken = errors.New("car taken")
	errCarFree  = errors.New("car not booked")
)

type mockBookingRepository struct {
	createFn      func(ctx context.Context, booking *model.Booking) error
	findByIDFn    func(ctx context.Context, id string) (*model.Booking, error)
	findByUserFn  func(ctx context.Context, userID, status string, limit int, offset int64) ([]*model.Booking, error)
	countByUserFn func(ctx context.Context, userID, status string) (int64, error)
	updateFn      func(ctx context.Context, id string, booking *model.Booking) error
	setStatusFn   func(ctx context.Context, id, status string) error
	markClaimedFn func(ctx context.Context, id string) error
	deleteFn      func(ctx context.Context, id string) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, booking)
	}
	booking.ID = bookingID
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID, status string, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByUserFn != nil {
		return m.findByUserFn(ctx, userID, status, limit, offset)
	}
	return nil, nil
}

func (m *mockBookingRepository) CountByUser(ctx context.Context, userID, status string) (int64, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID, status)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, error) {
	return m.FindByUser(ctx, "", status, limit, offset)
}

func (m *mockBookingRepository) Count(ctx context.Context, status string) (int64, error) {
	return m.CountByUser(ctx, "", status)
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, booking)
	}
	return nil
}

func (m *mockBookingRepository) SetStatus(ctx context.Context, id, status string) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockBookingRepository) MarkClaimed(ctx context.Context, id string) error {
	if m.markClaimedFn != nil {
		return m.markClaimedFn(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) AttachUsers(ctx context.Context, bookings []*model.Booking) error {
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockCarInventory struct {
	reserveFn func(ctx context.Context, carID string) error
	releaseFn func(ctx context.Context, carID string) error
	reserved  []string
	released  []string
}

func (m *mockCarInventory) Reserve(ctx context.Context, carID string) error {
	m.reserved = append(m.reserved, carID)
	if m.reserveFn != nil {
		return m.reserveFn(ctx, carID)
	}
	return nil
}

func (m *mockCarInventory) Release(ctx context.Context, carID string) error {
	m.released = append(m.released, carID)
	if m.releaseFn != nil {
		return m.releaseFn(ctx, carID)
	}
	return nil
}

func (m *mockCarInventory) IsUnavailable(err error) bool {
	return errors.Is(err, errCarTaken)
}

func (m *mockCarInventory) AlreadyReleased(err error) bool {
	return errors.Is(err, errCarFree)
}

type mockWalletLedger struct {
	accrueFn func(ctx context.Context, userID, bookingID string, amount float64) error
	accruals []float64
}

func (m *mockWalletLedger) Accrue(ctx context.Context, userID, bookingID string, amount float64) error {
	m.accruals = append(m.accruals, amount)
	if m.accrueFn != nil {
		return m.accrueFn(ctx, userID, bookingID, amount)
	}
	return nil
}

type mockPublisher struct {
	created   int
	cancelled int
	claimed   int
}

func (m *mockPublisher) BookingCreated(context.Context, *model.Booking)   { m.created++ }
func (m *mockPublisher) BookingCancelled(context.Context, *model.Booking) { m.cancelled++ }
func (m *mockPublisher) BookingClaimed(context.Context, *model.Booking, float64) {
	m.claimed++
}

func testConfig() *config.Config {
	return &config.Config{
		CostPerKm:             100,
		CostPerExtraPassenger: 150,
		DefaultDistanceKm:     2,
		WalletPointRate:       1,
		CancelWindowHours:     24,
		Log:                   logger.New(logger.Config{Level: "error", Output: io.Discard}),
	}
}

type fixture struct {
	svc       BookingService
	repo      *mockBookingRepository
	cars      *mockCarInventory
	wallet    *mockWalletLedger
	publisher *mockPublisher
}

func newFixture(repo *mockBookingRepository) *fixture {
	cfg := testConfig()
	cars := &mockCarInventory{}
	wallet := &mockWalletLedger{}
	publisher := &mockPublisher{}
	svc := NewBookingService(
		repo,
		cars,
		wallet,
		publisher,
		fare.NewCalculator(cfg),
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	return &fixture{svc: svc, repo: repo, cars: cars, wallet: wallet, publisher: publisher}
}

func owner() middleware.Identity {
	return middleware.Identity{UserID: testUserID}
}

func futureSchedule(lead time.Duration) (string, string) {
	departure := time.Now().Add(lead)
	return departure.Format(policy.TravelDateLayout), departure.Format(policy.PickupTimeLayout)
}

func newBookingRequest() *model.Booking {
	travelDate, pickupTime := futureSchedule(72 * time.Hour)
	return &model.Booking{
		CarID:           testCarID,
		TravelDate:      travelDate,
		PickupTime:      pickupTime,
		PickupLocation:  "Airport",
		DropLocation:    "Downtown",
		Luggage:         1,
		ExtraPassengers: 1,
	}
}

func storedBooking(lead time.Duration) *model.Booking {
	travelDate, pickupTime := futureSchedule(lead)
	return &model.Booking{
		ID:              bookingID,
		UserID:          testUserID,
		CarID:           testCarID,
		TravelDate:      travelDate,
		PickupTime:      pickupTime,
		PickupLocation:  "Airport",
		DropLocation:    "Downtown",
		ExtraPassengers: 1,
		DistanceKm:      2,
		Fare:            350,
		PaymentStatus:   model.PaymentStatusPending,
		Status:          model.BookingStatusActive,
	}
}

func TestCreate(t *testing.T) {
	t.Run("prices trip and reserves car", func(t *testing.T) {
		f := newFixture(&mockBookingRepository{})
		booking := newBookingRequest()

		if err := f.svc.Create(context.Background(), owner(), booking); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}

		if booking.Fare != 350 {
			t.Errorf("Fare = %g, want 350", booking.Fare)
		}
		if booking.ExtraPassengerFare != 150 {
			t.Errorf("ExtraPassengerFare = %g, want 150", booking.ExtraPassengerFare)
		}
		if booking.Status != model.BookingStatusActive {
			t.Errorf("Status = %q, want active", booking.Status)
		}
		if booking.PaymentStatus != model.PaymentStatusPending {
			t.Errorf("PaymentStatus = %q, want Pending", booking.PaymentStatus)
		}
		if booking.UserID != testUserID {
			t.Errorf("UserID = %q, want caller's ID", booking.UserID)
		}
		if len(f.cars.reserved) != 1 || f.cars.reserved[0] != testCarID {
			t.Errorf("reserved cars = %v, want [%s]", f.cars.reserved, testCarID)
		}
		if f.publisher.created != 1 {
			t.Errorf("created events = %d, want 1", f.publisher.created)
		}
	})

	t.Run("already booked car conflicts", func(t *testing.T) {
		f := newFixture(&mockBookingRepository{
			createFn: func(ctx context.Context, booking *model.Booking) error {
				t.Error("booking must not be created when the car is unavailable")
				return nil
			},
		})
		f.cars.reserveFn = func(ctx context.Context, carID string) error {
			return errCarTaken
		}

		err := f.svc.Create(context.Background(), owner(), newBookingRequest())

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusConflict {
			t.Fatalf("expected 409 conflict, got %v", err)
		}
		if f.publisher.created != 0 {
			t.Errorf("created events = %d, want 0", f.publisher.created)
		}
	})

	t.Run("invalid booking never touches the car", func(t *testing.T) {
		f := newFixture(&mockBookingRepository{})
		booking := newBookingRequest()
		booking.PickupLocation = ""

		err := f.svc.Create(context.Background(), owner(), booking)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusBadRequest {
			t.Fatalf("expected 400 validation error, got %v", err)
		}
		if len(f.cars.reserved) != 0 {
			t.Errorf("reserved cars = %v, want none", f.cars.reserved)
		}
	})
}

func TestCancel(t *testing.T) {
	t.Run("within window releases car", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		var statusSet string
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
			setStatusFn: func(ctx context.Context, id, status string) error {
				statusSet = status
				return nil
			},
		})

		if err := f.svc.Cancel(context.Background(), owner(), bookingID); err != nil {
			t.Fatalf("Cancel returned error: %v", err)
		}

		if statusSet != model.BookingStatusInactive {
			t.Errorf("status set to %q, want inactive", statusSet)
		}
		if len(f.cars.released) != 1 || f.cars.released[0] != testCarID {
			t.Errorf("released cars = %v, want [%s]", f.cars.released, testCarID)
		}
		if f.publisher.cancelled != 1 {
			t.Errorf("cancelled events = %d, want 1", f.publisher.cancelled)
		}
	})

	t.Run("inside 24h window rejected", func(t *testing.T) {
		stored := storedBooking(6 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
			setStatusFn: func(ctx context.Context, id, status string) error {
				t.Error("status must not change when cancellation is rejected")
				return nil
			},
		})

		err := f.svc.Cancel(context.Background(), owner(), bookingID)

		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodePolicyViolation {
			t.Fatalf("expected policy violation, got %v", err)
		}
		if !strings.Contains(appErr.Message, "administrator") {
			t.Errorf("rejection message = %q, want administrator contact instruction", appErr.Message)
		}
		if len(f.cars.released) != 0 {
			t.Errorf("released cars = %v, want none", f.cars.released)
		}
	})

	t.Run("unparseable stored schedule rejected", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		stored.TravelDate = "corrupted"
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
		})

		err := f.svc.Cancel(context.Background(), owner(), bookingID)
		if err == nil {
			t.Fatal("expected error for unparseable schedule")
		}
		if len(f.cars.released) != 0 {
			t.Errorf("released cars = %v, want none", f.cars.released)
		}
	})

	t.Run("already cancelled rejected", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		stored.Status = model.BookingStatusInactive
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
		})

		if err := f.svc.Cancel(context.Background(), owner(), bookingID); err == nil {
			t.Fatal("expected error for already cancelled booking")
		}
	})

	t.Run("other user forbidden", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
		})

		err := f.svc.Cancel(context.Background(), middleware.Identity{UserID: testOtherID}, bookingID)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusForbidden {
			t.Fatalf("expected 403, got %v", err)
		}
	})
}

func TestClaim(t *testing.T) {
	t.Run("credits wallet exactly once", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
		})

		points, err := f.svc.Claim(context.Background(), owner(), bookingID)
		if err != nil {
			t.Fatalf("Claim returned error: %v", err)
		}
		if points != 2 {
			t.Errorf("points = %g, want 2", points)
		}
		if len(f.wallet.accruals) != 1 || f.wallet.accruals[0] != 2 {
			t.Errorf("accruals = %v, want [2]", f.wallet.accruals)
		}
		if len(f.cars.released) != 1 || f.cars.released[0] != stored.CarID {
			t.Errorf("released = %v, want [%s]", f.cars.released, stored.CarID)
		}
		if f.publisher.claimed != 1 {
			t.Errorf("claimed events = %d, want 1", f.publisher.claimed)
		}
	})

	t.Run("already released car does not block the claim", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
		})
		f.cars.releaseFn = func(ctx context.Context, carID string) error {
			return errCarFree
		}

		if _, err := f.svc.Claim(context.Background(), owner(), bookingID); err != nil {
			t.Fatalf("Claim returned error: %v", err)
		}
	})

	t.Run("second claim conflicts without accrual", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		stored.Claimed = true
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
		})

		_, err := f.svc.Claim(context.Background(), owner(), bookingID)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusConflict {
			t.Fatalf("expected 409 conflict, got %v", err)
		}
		if len(f.wallet.accruals) != 0 {
			t.Errorf("accruals = %v, want none", f.wallet.accruals)
		}
	})

	t.Run("concurrent claim loses on conditional update", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
			markClaimedFn: func(ctx context.Context, id string) error {
				return bookingserrors.ErrAlreadyClaimed
			},
		})

		_, err := f.svc.Claim(context.Background(), owner(), bookingID)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusConflict {
			t.Fatalf("expected 409 conflict, got %v", err)
		}
		if len(f.wallet.accruals) != 0 {
			t.Errorf("accruals = %v, want none", f.wallet.accruals)
		}
	})
}

func TestUpdate(t *testing.T) {
	t.Run("reprices fare when passengers change", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		var written *model.Booking
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
			updateFn: func(ctx context.Context, id string, booking *model.Booking) error {
				written = booking
				return nil
			},
		})

		two := 2
		updated, err := f.svc.Update(context.Background(), owner(), bookingID, &model.BookingUpdate{
			ExtraPassengers: &two,
		})
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}

		if updated.Fare != 500 {
			t.Errorf("Fare = %g, want 500", updated.Fare)
		}
		if written == nil || written.ExtraPassengers != 2 {
			t.Error("expected repository write with two extra passengers")
		}
	})

	t.Run("rejected update writes nothing", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
			updateFn: func(ctx context.Context, id string, booking *model.Booking) error {
				t.Error("repository must not be written for an invalid update")
				return nil
			},
		})

		three := 3
		_, err := f.svc.Update(context.Background(), owner(), bookingID, &model.BookingUpdate{
			ExtraPassengers: &three,
		})
		if err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("inside 24h window rejected", func(t *testing.T) {
		stored := storedBooking(2 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
			updateFn: func(ctx context.Context, id string, booking *model.Booking) error {
				t.Error("repository must not be written inside the window")
				return nil
			},
		})

		_, err := f.svc.Update(context.Background(), owner(), bookingID, &model.BookingUpdate{
			PickupLocation: "Harbor",
		})

		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodePolicyViolation {
			t.Fatalf("expected policy violation, got %v", err)
		}
		if !strings.Contains(appErr.Message, "administrator") {
			t.Errorf("rejection message = %q, want administrator contact instruction", appErr.Message)
		}
	})

	t.Run("window checked against stored schedule", func(t *testing.T) {
		stored := storedBooking(2 * time.Hour)
		laterDate, laterTime := futureSchedule(72 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
			updateFn: func(ctx context.Context, id string, booking *model.Booking) error {
				t.Error("pushing departure out must not bypass the window")
				return nil
			},
		})

		_, err := f.svc.Update(context.Background(), owner(), bookingID, &model.BookingUpdate{
			TravelDate: laterDate,
			PickupTime: laterTime,
		})

		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodePolicyViolation {
			t.Fatalf("expected policy violation, got %v", err)
		}
	})

	t.Run("unparseable stored schedule rejected", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		stored.PickupTime = "corrupted"
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
			updateFn: func(ctx context.Context, id string, booking *model.Booking) error {
				t.Error("repository must not be written for a corrupt schedule")
				return nil
			},
		})

		_, err := f.svc.Update(context.Background(), owner(), bookingID, &model.BookingUpdate{
			PickupLocation: "Harbor",
		})
		if err == nil {
			t.Fatal("expected error for unparseable schedule")
		}
	})

	t.Run("cancelled booking not editable", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		stored.Status = model.BookingStatusInactive
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
		})

		_, err := f.svc.Update(context.Background(), owner(), bookingID, &model.BookingUpdate{})
		if err == nil {
			t.Fatal("expected policy violation for inactive booking")
		}
	})
}

func TestGetByID(t *testing.T) {
	t.Run("unknown id not found", func(t *testing.T) {
		f := newFixture(&mockBookingRepository{})

		_, err := f.svc.GetByID(context.Background(), owner(), bookingID)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusNotFound {
			t.Fatalf("expected 404, got %v", err)
		}
	})

	t.Run("admin reads any booking", func(t *testing.T) {
		stored := storedBooking(72 * time.Hour)
		f := newFixture(&mockBookingRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
				copy := *stored
				return &copy, nil
			},
		})

		admin := middleware.Identity{UserID: testOtherID, IsAdmin: true}
		if _, err := f.svc.GetByID(context.Background(), admin, bookingID); err != nil {
			t.Fatalf("admin read failed: %v", err)
		}
	})
}

func TestListByUser(t *testing.T) {
	f := newFixture(&mockBookingRepository{
		findByUserFn: func(ctx context.Context, userID, status string, limit int, offset int64) ([]*model.Booking, error) {
			if userID != testUserID {
				return nil, fmt.Errorf("unexpected user filter %q", userID)
			}
			return []*model.Booking{storedBooking(72 * time.Hour)}, nil
		},
		countByUserFn: func(ctx context.Context, userID, status string) (int64, error) {
			return 1, nil
		},
	})

	bookings, total, err := f.svc.ListByUser(context.Background(), owner(), "", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if total != 1 || len(bookings) != 1 {
		t.Errorf("got %d bookings (total %d), want 1", len(bookings), total)
	}
}
