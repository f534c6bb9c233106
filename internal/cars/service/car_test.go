package service

import (
	"context"
	"io"
	"net/http"
	"testing"

	carserrors "cabmarket/internal/cars/errors"
	"cabmarket/internal/cars/validator"
	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/model"
)

const carID = "507f1f77bcf86cd799439012"

type mockCarRepository struct {
	createFn   func(ctx context.Context, car *model.Car) error
	findByIDFn func(ctx context.Context, id string) (*model.Car, error)
	updateFn   func(ctx context.Context, id string, car *model.Car) error
	deleteFn   func(ctx context.Context, id string) error
	reserveFn  func(ctx context.Context, id string) error
	releaseFn  func(ctx context.Context, id string) error
}

func (m *mockCarRepository) Create(ctx context.Context, car *model.Car) error {
	if m.createFn != nil {
		return m.createFn(ctx, car)
	}
	car.ID = carID
	return nil
}

func (m *mockCarRepository) FindByID(ctx context.Context, id string) (*model.Car, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, carserrors.ErrNotFound
}

func (m *mockCarRepository) FindAll(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Car, error) {
	return nil, nil
}

func (m *mockCarRepository) Count(ctx context.Context, onlyAvailable bool) (int64, error) {
	return 0, nil
}

func (m *mockCarRepository) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Car, error) {
	return nil, nil
}

func (m *mockCarRepository) Update(ctx context.Context, id string, car *model.Car) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, car)
	}
	return nil
}

func (m *mockCarRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCarRepository) Reserve(ctx context.Context, id string) error {
	if m.reserveFn != nil {
		return m.reserveFn(ctx, id)
	}
	return nil
}

func (m *mockCarRepository) Release(ctx context.Context, id string) error {
	if m.releaseFn != nil {
		return m.releaseFn(ctx, id)
	}
	return nil
}

func (m *mockCarRepository) AddReviewID(ctx context.Context, carID, reviewID string) error {
	return nil
}

func (m *mockCarRepository) RemoveReviewID(ctx context.Context, carID, reviewID string) error {
	return nil
}

func newCarService(repo *mockCarRepository) CarService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: "error", Output: io.Discard}),
	}
	return NewCarService(repo, validator.NewCarValidator(cfg.Log), cfg)
}

func validCar() *model.Car {
	return &model.Car{
		Name:        "City Sedan",
		Description: "Compact sedan for city trips",
		Seats:       4,
		MaxWeight:   450,
		Price:       1200,
		Type:        "sedan",
	}
}

func TestCreateCar(t *testing.T) {
	t.Run("valid car created", func(t *testing.T) {
		svc := newCarService(&mockCarRepository{})
		car := validCar()

		if err := svc.Create(context.Background(), car); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if car.ID != carID {
			t.Errorf("ID = %q, want %q", car.ID, carID)
		}
	})

	t.Run("missing name rejected", func(t *testing.T) {
		svc := newCarService(&mockCarRepository{
			createFn: func(ctx context.Context, car *model.Car) error {
				t.Error("invalid car must not reach the repository")
				return nil
			},
		})
		car := validCar()
		car.Name = ""

		if err := svc.Create(context.Background(), car); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("name whitespace normalized", func(t *testing.T) {
		svc := newCarService(&mockCarRepository{})
		car := validCar()
		car.Name = "  City   Sedan  "

		if err := svc.Create(context.Background(), car); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if car.Name != "City Sedan" {
			t.Errorf("Name = %q, want %q", car.Name, "City Sedan")
		}
	})
}

func TestDeleteCar(t *testing.T) {
	t.Run("booked car conflicts", func(t *testing.T) {
		booked := validCar()
		booked.ID = carID
		booked.IsBooked = true
		svc := newCarService(&mockCarRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Car, error) {
				return booked, nil
			},
			deleteFn: func(ctx context.Context, id string) error {
				t.Error("booked car must not be deleted")
				return nil
			},
		})

		err := svc.Delete(context.Background(), carID)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusConflict {
			t.Fatalf("expected 409 conflict, got %v", err)
		}
	})

	t.Run("available car deleted", func(t *testing.T) {
		available := validCar()
		available.ID = carID
		svc := newCarService(&mockCarRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Car, error) {
				return available, nil
			},
		})

		if err := svc.Delete(context.Background(), carID); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
	})

	t.Run("unknown car not found", func(t *testing.T) {
		svc := newCarService(&mockCarRepository{})

		err := svc.Delete(context.Background(), carID)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusNotFound {
			t.Fatalf("expected 404, got %v", err)
		}
	})
}

func TestUpdateCar(t *testing.T) {
	existing := validCar()
	existing.ID = carID

	t.Run("partial update merges", func(t *testing.T) {
		var written *model.Car
		svc := newCarService(&mockCarRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Car, error) {
				copy := *existing
				return &copy, nil
			},
			updateFn: func(ctx context.Context, id string, car *model.Car) error {
				written = car
				return nil
			},
		})

		price := 1500.0
		updated, err := svc.Update(context.Background(), carID, &model.CarUpdate{Price: &price})
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if updated.Price != 1500 {
			t.Errorf("Price = %g, want 1500", updated.Price)
		}
		if written == nil || written.Name != existing.Name {
			t.Error("unchanged fields must carry over")
		}
	})

	t.Run("invalid seats rejected", func(t *testing.T) {
		svc := newCarService(&mockCarRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Car, error) {
				copy := *existing
				return &copy, nil
			},
			updateFn: func(ctx context.Context, id string, car *model.Car) error {
				t.Error("invalid update must not reach the repository")
				return nil
			},
		})

		seats := 0
		if _, err := svc.Update(context.Background(), carID, &model.CarUpdate{Seats: &seats}); err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func TestReserveRelease(t *testing.T) {
	t.Run("unavailable error recognized", func(t *testing.T) {
		svc := newCarService(&mockCarRepository{
			reserveFn: func(ctx context.Context, id string) error {
				return carserrors.ErrUnavailable
			},
		})

		err := svc.Reserve(context.Background(), carID)
		if !svc.IsUnavailable(err) {
			t.Errorf("IsUnavailable(%v) = false, want true", err)
		}
	})

	t.Run("other errors not unavailable", func(t *testing.T) {
		svc := newCarService(&mockCarRepository{})
		if svc.IsUnavailable(carserrors.ErrNotFound) {
			t.Error("IsUnavailable(ErrNotFound) = true, want false")
		}
	})
}
