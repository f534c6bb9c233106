package service

import (
	"context"
	"errors"
	"sync"

	carserrors "cabmarket/internal/cars/errors"
	"cabmarket/internal/cars/repository"
	"cabmarket/internal/cars/validator"
	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/model"
	"cabmarket/pkg/sanitizer"
)

type CarService interface {
	Create(ctx context.Context, car *model.Car) error
	GetByID(ctx context.Context, id string) (*model.Car, error)
	List(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Car, int64, error)
	Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Car, error)
	Update(ctx context.Context, id string, updates *model.CarUpdate) (*model.Car, error)
	Delete(ctx context.Context, id string) error

	// Availability flips used by the booking lifecycle, run inside its
	// transaction.
	Reserve(ctx context.Context, carID string) error
	Release(ctx context.Context, carID string) error
	IsUnavailable(err error) bool
	AlreadyReleased(err error) bool

	// Review index maintenance used by the review lifecycle.
	AddReviewID(ctx context.Context, carID, reviewID string) error
	RemoveReviewID(ctx context.Context, carID, reviewID string) error
	IsMissing(err error) bool
}

type carService struct {
	repo      repository.CarRepository
	validator *validator.CarValidator
	cfg       *config.Config
}

func NewCarService(repo repository.CarRepository, carValidator *validator.CarValidator, cfg *config.Config) CarService {
	return &carService{
		repo:      repo,
		validator: carValidator,
		cfg:       cfg,
	}
}

func (s *carService) Create(ctx context.Context, car *model.Car) error {
	car.ID = ""
	car.ReviewIDs = nil
	s.sanitize(car)

	if err := s.validator.Validate(car); err != nil {
		s.cfg.Log.Warn("Car validation failed", "error", err)
		return apperrors.Validation("Car validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, car); err != nil {
		s.cfg.Log.Error("Failed to create car", "name", car.Name, "error", err)
		return apperrors.Internal("Failed to create car", err)
	}

	s.cfg.Log.Info("Car created successfully", "id", car.ID, "name", car.Name)
	return nil
}

func (s *carService) GetByID(ctx context.Context, id string) (*model.Car, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Car ID cannot be empty")
	}

	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return car, nil
}

func (s *carService) List(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Car, int64, error) {
	var count int64
	var cars []*model.Car
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, onlyAvailable)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count cars", "error", errCount)
			errCount = apperrors.Internal("Failed to count cars", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		cars, errFind = s.repo.FindAll(ctx, onlyAvailable, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list cars", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve cars", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return cars, count, nil
}

func (s *carService) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Car, error) {
	query = sanitizer.TrimAndNormalize(query)
	if query == "" {
		return nil, apperrors.InvalidInput("Search query cannot be empty")
	}

	cars, err := s.repo.Search(ctx, query, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to search cars", "query", query, "error", err)
		return nil, apperrors.Internal("Failed to search cars", err)
	}

	return cars, nil
}

func (s *carService) Update(ctx context.Context, id string, updates *model.CarUpdate) (*model.Car, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Car update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeCarUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Car validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, carserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Car", id)
		}
		s.cfg.Log.Error("Failed to update car", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update car", err)
	}

	s.cfg.Log.Info("Car updated successfully", "id", id)
	return merged, nil
}

// Delete refuses to remove a car that is held by an active booking.
func (s *carService) Delete(ctx context.Context, id string) error {
	car, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if car.IsBooked {
		return apperrors.Conflict("Car is held by an active booking")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, carserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Car", id)
		}
		s.cfg.Log.Error("Failed to delete car", "id", id, "error", err)
		return apperrors.Internal("Failed to delete car", err)
	}

	s.cfg.Log.Info("Car deleted successfully", "id", id)
	return nil
}

func (s *carService) Reserve(ctx context.Context, carID string) error {
	return s.repo.Reserve(ctx, carID)
}

func (s *carService) Release(ctx context.Context, carID string) error {
	return s.repo.Release(ctx, carID)
}

func (s *carService) IsUnavailable(err error) bool {
	return errors.Is(err, carserrors.ErrUnavailable)
}

func (s *carService) AlreadyReleased(err error) bool {
	return errors.Is(err, carserrors.ErrNotBooked) || errors.Is(err, carserrors.ErrNotFound)
}

func (s *carService) AddReviewID(ctx context.Context, carID, reviewID string) error {
	return s.repo.AddReviewID(ctx, carID, reviewID)
}

func (s *carService) RemoveReviewID(ctx context.Context, carID, reviewID string) error {
	return s.repo.RemoveReviewID(ctx, carID, reviewID)
}

func (s *carService) IsMissing(err error) bool {
	return errors.Is(err, carserrors.ErrNotFound) || errors.Is(err, carserrors.ErrInvalidID)
}

func (s *carService) sanitize(car *model.Car) {
	car.Name = sanitizer.NormalizeName(car.Name)
	car.Description = sanitizer.TrimAndNormalize(car.Description)
	car.Type = sanitizer.TrimAndNormalize(car.Type)
}

func (s *carService) mergeCarUpdates(existing *model.Car, updates *model.CarUpdate) *model.Car {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != "" {
		merged.Description = updates.Description
	}
	if updates.Image != "" {
		merged.Image = updates.Image
	}
	if updates.Seats != nil {
		merged.Seats = *updates.Seats
	}
	if updates.MaxWeight != nil {
		merged.MaxWeight = *updates.MaxWeight
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}

	return &merged
}

func (s *carService) mapLookupError(err error, id string) error {
	if errors.Is(err, carserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Car", id)
	}
	if errors.Is(err, carserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid car ID format")
	}
	return apperrors.Internal("Failed to retrieve car", err)
}
