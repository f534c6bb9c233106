package service

import (
	"context"
	"errors"
	"sync"

	reviewserrors "cabmarket/internal/reviews/errors"
	"cabmarket/internal/reviews/repository"
	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/model"
	"cabmarket/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// CarReviewIndex keeps a car's review_ids list in step with the
// Reviews collection. The cars service satisfies it.
type CarReviewIndex interface {
	AddReviewID(ctx context.Context, carID, reviewID string) error
	RemoveReviewID(ctx context.Context, carID, reviewID string) error
	IsMissing(err error) bool
}

type ReviewService interface {
	Create(ctx context.Context, userID string, review *model.Review) error
	GetByID(ctx context.Context, id string) (*model.Review, error)
	ListByCar(ctx context.Context, carID string, limit int, offset int64) ([]*model.Review, int64, error)
	Update(ctx context.Context, userID string, isAdmin bool, id, content string) (*model.Review, error)
	Delete(ctx context.Context, userID string, isAdmin bool, id string) error
}

type reviewService struct {
	repo     repository.ReviewRepository
	cars     CarReviewIndex
	validate *validator.Validate
	cfg      *config.Config
}

func NewReviewService(repo repository.ReviewRepository, cars CarReviewIndex, cfg *config.Config) ReviewService {
	return &reviewService{
		repo:     repo,
		cars:     cars,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *reviewService) Create(ctx context.Context, userID string, review *model.Review) error {
	review.ID = ""
	review.UserID = userID
	review.Content = sanitizer.TrimAndNormalize(review.Content)

	if err := s.validate.Struct(review); err != nil {
		s.cfg.Log.Warn("Review validation failed", "car_id", review.CarID, "error", err)
		return apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, review); err != nil {
			return apperrors.Internal("Failed to create review", err)
		}
		if err := s.cars.AddReviewID(sessCtx, review.CarID, review.ID); err != nil {
			if s.cars.IsMissing(err) {
				return apperrors.NotFoundWithID("Car", review.CarID)
			}
			return apperrors.Internal("Failed to index review on car", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create review", "car_id", review.CarID, "error", err)
		return err
	}

	s.cfg.Log.Info("Review created successfully", "id", review.ID, "car_id", review.CarID)
	return nil
}

func (s *reviewService) GetByID(ctx context.Context, id string) (*model.Review, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Review ID cannot be empty")
	}

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reviewserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Review", id)
		}
		if errors.Is(err, reviewserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid review ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve review", err)
	}

	if err := s.repo.AttachUsers(ctx, []*model.Review{review}); err != nil {
		s.cfg.Log.Warn("Failed to attach review author", "id", id, "error", err)
	}

	return review, nil
}

func (s *reviewService) ListByCar(ctx context.Context, carID string, limit int, offset int64) ([]*model.Review, int64, error) {
	if carID == "" {
		return nil, 0, apperrors.InvalidInput("Car ID cannot be empty")
	}

	var count int64
	var reviews []*model.Review
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByCar(ctx, carID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reviews", "car_id", carID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reviews", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reviews, errFind = s.repo.FindByCar(ctx, carID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reviews", "car_id", carID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reviews", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	if err := s.repo.AttachUsers(ctx, reviews); err != nil {
		s.cfg.Log.Warn("Failed to attach review authors", "car_id", carID, "error", err)
	}

	return reviews, count, nil
}

func (s *reviewService) Update(ctx context.Context, userID string, isAdmin bool, id, content string) (*model.Review, error) {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && review.UserID != userID {
		return nil, apperrors.Forbidden("You do not have access to this review")
	}

	review.Content = sanitizer.TrimAndNormalize(content)
	if err := s.validate.Struct(review); err != nil {
		s.cfg.Log.Warn("Review validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.UpdateContent(ctx, id, review.Content); err != nil {
		if errors.Is(err, reviewserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Review", id)
		}
		s.cfg.Log.Error("Failed to update review", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update review", err)
	}

	s.cfg.Log.Info("Review updated successfully", "id", id)
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, userID string, isAdmin bool, id string) error {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !isAdmin && review.UserID != userID {
		return apperrors.Forbidden("You do not have access to this review")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, reviewserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Review", id)
			}
			return apperrors.Internal("Failed to delete review", err)
		}
		// A review may outlive its car, so a missing car does not abort.
		if err := s.cars.RemoveReviewID(sessCtx, review.CarID, id); err != nil && !s.cars.IsMissing(err) {
			return apperrors.Internal("Failed to unlink review from car", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete review", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Review deleted successfully", "id", id, "car_id", review.CarID)
	return nil
}
