package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	reviewserrors "cabmarket/internal/reviews/errors"
	"cabmarket/pkg/config"
	mongotx "cabmarket/pkg/db/mongo"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/model"
)

const (
	reviewID   = "507f1f77bcf86cd799439021"
	reviewCar  = "507f1f77bcf86cd799439022"
	reviewUser = "507f1f77bcf86cd799439023"
	otherUser  = "507f1f77bcf86cd799439024"
)

var errCarGone = errors.New("car not found")

type mockReviewRepository struct {
	createFn   func(ctx context.Context, review *model.Review) error
	findByIDFn func(ctx context.Context, id string) (*model.Review, error)
	updateFn   func(ctx context.Context, id, content string) error
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	if m.createFn != nil {
		return m.createFn(ctx, review)
	}
	review.ID = reviewID
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, reviewserrors.ErrNotFound
}

func (m *mockReviewRepository) FindByCar(ctx context.Context, carID string, limit int, offset int64) ([]*model.Review, error) {
	return nil, nil
}

func (m *mockReviewRepository) CountByCar(ctx context.Context, carID string) (int64, error) {
	return 0, nil
}

func (m *mockReviewRepository) UpdateContent(ctx context.Context, id, content string) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, content)
	}
	return nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockReviewRepository) AttachUsers(ctx context.Context, reviews []*model.Review) error {
	return nil
}

func (m *mockReviewRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockCarIndex struct {
	added   []string
	removed []string
	addErr  error
}

func (m *mockCarIndex) AddReviewID(ctx context.Context, carID, reviewID string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, reviewID)
	return nil
}

func (m *mockCarIndex) RemoveReviewID(ctx context.Context, carID, reviewID string) error {
	m.removed = append(m.removed, reviewID)
	return nil
}

func (m *mockCarIndex) IsMissing(err error) bool {
	return errors.Is(err, errCarGone)
}

func newReviewService(repo *mockReviewRepository, cars *mockCarIndex) ReviewService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: "error", Output: io.Discard}),
	}
	return NewReviewService(repo, cars, cfg)
}

func storedReview() *model.Review {
	return &model.Review{
		ID:      reviewID,
		CarID:   reviewCar,
		UserID:  reviewUser,
		Content: "Smooth ride, clean car.",
	}
}

func TestCreateReview(t *testing.T) {
	t.Run("review linked to car", func(t *testing.T) {
		cars := &mockCarIndex{}
		svc := newReviewService(&mockReviewRepository{}, cars)
		review := &model.Review{CarID: reviewCar, Content: "Great driver, on time."}

		if err := svc.Create(context.Background(), reviewUser, review); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if review.UserID != reviewUser {
			t.Errorf("UserID = %q, want caller's ID", review.UserID)
		}
		if len(cars.added) != 1 || cars.added[0] != reviewID {
			t.Errorf("car index additions = %v, want [%s]", cars.added, reviewID)
		}
	})

	t.Run("missing car rejected", func(t *testing.T) {
		cars := &mockCarIndex{addErr: errCarGone}
		svc := newReviewService(&mockReviewRepository{}, cars)
		review := &model.Review{CarID: reviewCar, Content: "Great driver, on time."}

		err := svc.Create(context.Background(), reviewUser, review)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusNotFound {
			t.Fatalf("expected 404, got %v", err)
		}
	})

	t.Run("empty content rejected before any write", func(t *testing.T) {
		cars := &mockCarIndex{}
		svc := newReviewService(&mockReviewRepository{
			createFn: func(ctx context.Context, review *model.Review) error {
				t.Error("invalid review must not reach the repository")
				return nil
			},
		}, cars)
		review := &model.Review{CarID: reviewCar, Content: "   "}

		if err := svc.Create(context.Background(), reviewUser, review); err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func TestUpdateReview(t *testing.T) {
	t.Run("owner edits content", func(t *testing.T) {
		var written string
		svc := newReviewService(&mockReviewRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Review, error) {
				return storedReview(), nil
			},
			updateFn: func(ctx context.Context, id, content string) error {
				written = content
				return nil
			},
		}, &mockCarIndex{})

		updated, err := svc.Update(context.Background(), reviewUser, false, reviewID, "  Car was  late. ")
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if written != "Car was late." {
			t.Errorf("stored content = %q, want normalized text", written)
		}
		if updated.Content != written {
			t.Errorf("returned content = %q, want %q", updated.Content, written)
		}
	})

	t.Run("other user forbidden", func(t *testing.T) {
		svc := newReviewService(&mockReviewRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Review, error) {
				return storedReview(), nil
			},
			updateFn: func(ctx context.Context, id, content string) error {
				t.Error("forbidden update must not reach the repository")
				return nil
			},
		}, &mockCarIndex{})

		_, err := svc.Update(context.Background(), otherUser, false, reviewID, "edited")

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusForbidden {
			t.Fatalf("expected 403, got %v", err)
		}
	})

	t.Run("blank content rejected", func(t *testing.T) {
		svc := newReviewService(&mockReviewRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Review, error) {
				return storedReview(), nil
			},
		}, &mockCarIndex{})

		if _, err := svc.Update(context.Background(), reviewUser, false, reviewID, "  "); err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func TestDeleteReview(t *testing.T) {
	t.Run("owner deletes and car is unlinked", func(t *testing.T) {
		cars := &mockCarIndex{}
		deleted := false
		svc := newReviewService(&mockReviewRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Review, error) {
				return storedReview(), nil
			},
			deleteFn: func(ctx context.Context, id string) error {
				deleted = true
				return nil
			},
		}, cars)

		if err := svc.Delete(context.Background(), reviewUser, false, reviewID); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		if !deleted {
			t.Error("review was not deleted")
		}
		if len(cars.removed) != 1 || cars.removed[0] != reviewID {
			t.Errorf("car index removals = %v, want [%s]", cars.removed, reviewID)
		}
	})

	t.Run("other user forbidden", func(t *testing.T) {
		cars := &mockCarIndex{}
		svc := newReviewService(&mockReviewRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Review, error) {
				return storedReview(), nil
			},
			deleteFn: func(ctx context.Context, id string) error {
				t.Error("forbidden delete must not reach the repository")
				return nil
			},
		}, cars)

		err := svc.Delete(context.Background(), otherUser, false, reviewID)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusForbidden {
			t.Fatalf("expected 403, got %v", err)
		}
	})

	t.Run("admin may delete any review", func(t *testing.T) {
		cars := &mockCarIndex{}
		svc := newReviewService(&mockReviewRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Review, error) {
				return storedReview(), nil
			},
		}, cars)

		if err := svc.Delete(context.Background(), otherUser, true, reviewID); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
	})

	t.Run("unknown review not found", func(t *testing.T) {
		svc := newReviewService(&mockReviewRepository{}, &mockCarIndex{})

		err := svc.Delete(context.Background(), reviewUser, false, reviewID)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusNotFound {
			t.Fatalf("expected 404, got %v", err)
		}
	})
}
