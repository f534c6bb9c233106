package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	driverserrors "cabmarket/internal/drivers/errors"
	"cabmarket/internal/drivers/repository"
	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/model"
	"cabmarket/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type DriverService interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	List(ctx context.Context, limit int, offset int64) ([]*model.Driver, int64, error)
	Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Driver, error)
	Update(ctx context.Context, id string, updates *model.DriverUpdate) (*model.Driver, error)
	Delete(ctx context.Context, id string) error
}

type driverService struct {
	repo     repository.DriverRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewDriverService(repo repository.DriverRepository, cfg *config.Config) DriverService {
	return &driverService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *driverService) Create(ctx context.Context, driver *model.Driver) error {
	driver.ID = ""
	s.sanitize(driver)

	if err := s.validateDriver(driver); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, driver); err != nil {
		s.cfg.Log.Error("Failed to create driver", "name", driver.Name, "error", err)
		return apperrors.Internal("Failed to create driver", err)
	}

	s.cfg.Log.Info("Driver created successfully", "id", driver.ID, "name", driver.Name)
	return nil
}

func (s *driverService) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Driver ID cannot be empty")
	}

	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, driverserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Driver", id)
		}
		if errors.Is(err, driverserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid driver ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve driver", err)
	}

	return driver, nil
}

func (s *driverService) List(ctx context.Context, limit int, offset int64) ([]*model.Driver, int64, error) {
	var count int64
	var drivers []*model.Driver
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count drivers", "error", errCount)
			errCount = apperrors.Internal("Failed to count drivers", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		drivers, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list drivers", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve drivers", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return drivers, count, nil
}

func (s *driverService) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Driver, error) {
	query = sanitizer.TrimAndNormalize(query)
	if query == "" {
		return nil, apperrors.InvalidInput("Search query cannot be empty")
	}

	drivers, err := s.repo.Search(ctx, query, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to search drivers", "query", query, "error", err)
		return nil, apperrors.Internal("Failed to search drivers", err)
	}

	return drivers, nil
}

func (s *driverService) Update(ctx context.Context, id string, updates *model.DriverUpdate) (*model.Driver, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(updates); err != nil {
		s.cfg.Log.Warn("Driver update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": translate(err)})
	}

	merged := s.mergeDriverUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validateDriver(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, driverserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Driver", id)
		}
		s.cfg.Log.Error("Failed to update driver", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update driver", err)
	}

	s.cfg.Log.Info("Driver updated successfully", "id", id)
	return merged, nil
}

func (s *driverService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Driver ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, driverserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Driver", id)
		}
		if errors.Is(err, driverserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid driver ID format")
		}
		s.cfg.Log.Error("Failed to delete driver", "id", id, "error", err)
		return apperrors.Internal("Failed to delete driver", err)
	}

	s.cfg.Log.Info("Driver deleted successfully", "id", id)
	return nil
}

func (s *driverService) sanitize(driver *model.Driver) {
	driver.Name = sanitizer.NormalizeName(driver.Name)
	driver.Phone = sanitizer.SanitizePhone(driver.Phone)
	driver.Email = strings.ToLower(strings.TrimSpace(driver.Email))
	driver.DrivingLicense = strings.TrimSpace(driver.DrivingLicense)
	driver.BloodGroup = strings.ToUpper(strings.TrimSpace(driver.BloodGroup))
}

func (s *driverService) mergeDriverUpdates(existing *model.Driver, updates *model.DriverUpdate) *model.Driver {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.BloodGroup != "" {
		merged.BloodGroup = updates.BloodGroup
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.DrivingLicense != "" {
		merged.DrivingLicense = updates.DrivingLicense
	}
	if updates.ProfileImage != "" {
		merged.ProfileImage = updates.ProfileImage
	}

	return &merged
}

func (s *driverService) validateDriver(driver *model.Driver) error {
	if err := s.validate.Struct(driver); err != nil {
		s.cfg.Log.Warn("Driver validation failed", "error", err)
		return apperrors.Validation("Driver validation failed", map[string]any{"error": translate(err)})
	}
	return nil
}

func translate(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	var messages []string
	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldErr.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", fieldErr.Field()))
		case "min", "max":
			messages = append(messages, fmt.Sprintf("%s length is out of range", fieldErr.Field()))
		default:
			messages = append(messages, fieldErr.Error())
		}
	}
	return strings.Join(messages, "; ")
}
