package service

import (
	"context"
	"io"
	"net/http"
	"testing"

	driverserrors "cabmarket/internal/drivers/errors"
	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/model"
)

const driverID = "507f1f77bcf86cd799439015"

type mockDriverRepository struct {
	createFn   func(ctx context.Context, driver *model.Driver) error
	findByIDFn func(ctx context.Context, id string) (*model.Driver, error)
	updateFn   func(ctx context.Context, id string, driver *model.Driver) error
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockDriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	if m.createFn != nil {
		return m.createFn(ctx, driver)
	}
	driver.ID = driverID
	return nil
}

func (m *mockDriverRepository) FindByID(ctx context.Context, id string) (*model.Driver, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, driverserrors.ErrNotFound
}

func (m *mockDriverRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, error) {
	return nil, nil
}

func (m *mockDriverRepository) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Driver, error) {
	return nil, nil
}

func (m *mockDriverRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockDriverRepository) Update(ctx context.Context, id string, driver *model.Driver) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, driver)
	}
	return nil
}

func (m *mockDriverRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func newDriverService(repo *mockDriverRepository) DriverService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: "error", Output: io.Discard}),
	}
	return NewDriverService(repo, cfg)
}

func validDriver() *model.Driver {
	return &model.Driver{
		Name:           "Ravi Kumar",
		Email:          "Ravi.Kumar@Example.com",
		Phone:          "(415) 555-2671",
		DrivingLicense: "DL-042-2031",
		BloodGroup:     "o+",
	}
}

func TestCreateDriver(t *testing.T) {
	t.Run("valid driver normalized and created", func(t *testing.T) {
		svc := newDriverService(&mockDriverRepository{})
		driver := validDriver()

		if err := svc.Create(context.Background(), driver); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if driver.Email != "ravi.kumar@example.com" {
			t.Errorf("Email = %q, want lowercased", driver.Email)
		}
		if driver.Phone != "+14155552671" {
			t.Errorf("Phone = %q, want E.164", driver.Phone)
		}
		if driver.BloodGroup != "O+" {
			t.Errorf("BloodGroup = %q, want O+", driver.BloodGroup)
		}
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		svc := newDriverService(&mockDriverRepository{
			createFn: func(ctx context.Context, driver *model.Driver) error {
				t.Error("invalid driver must not reach the repository")
				return nil
			},
		})
		driver := validDriver()
		driver.Email = "not-an-email"

		if err := svc.Create(context.Background(), driver); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("missing license rejected", func(t *testing.T) {
		svc := newDriverService(&mockDriverRepository{})
		driver := validDriver()
		driver.DrivingLicense = ""

		if err := svc.Create(context.Background(), driver); err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func TestUpdateDriver(t *testing.T) {
	existing := validDriver()
	existing.ID = driverID
	existing.Email = "ravi.kumar@example.com"
	existing.Phone = "+14155552671"

	t.Run("partial update keeps other fields", func(t *testing.T) {
		var written *model.Driver
		svc := newDriverService(&mockDriverRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Driver, error) {
				copy := *existing
				return &copy, nil
			},
			updateFn: func(ctx context.Context, id string, driver *model.Driver) error {
				written = driver
				return nil
			},
		})

		updated, err := svc.Update(context.Background(), driverID, &model.DriverUpdate{Name: "Ravi K"})
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if updated.Name != "Ravi K" {
			t.Errorf("Name = %q, want Ravi K", updated.Name)
		}
		if written == nil || written.Email != existing.Email {
			t.Error("unchanged fields must carry over")
		}
	})

	t.Run("unknown driver not found", func(t *testing.T) {
		svc := newDriverService(&mockDriverRepository{})

		_, err := svc.Update(context.Background(), driverID, &model.DriverUpdate{Name: "X Y"})

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusNotFound {
			t.Fatalf("expected 404, got %v", err)
		}
	})
}

func TestDeleteDriver(t *testing.T) {
	svc := newDriverService(&mockDriverRepository{
		deleteFn: func(ctx context.Context, id string) error {
			return driverserrors.ErrNotFound
		},
	})

	err := svc.Delete(context.Background(), driverID)

	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
