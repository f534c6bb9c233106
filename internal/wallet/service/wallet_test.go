package service

import (
	"context"
	"io"
	"net/http"
	"testing"

	walleterrors "cabmarket/internal/wallet/errors"
	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/model"
)

const (
	walletUser    = "507f1f77bcf86cd799439031"
	walletBooking = "507f1f77bcf86cd799439032"
)

type mockWalletRepository struct {
	insertFn func(ctx context.Context, entry *model.WalletEntry) error
	entries  []*model.WalletEntry
	balance  float64
	inserted []*model.WalletEntry
}

func (m *mockWalletRepository) Insert(ctx context.Context, entry *model.WalletEntry) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, entry)
	}
	m.inserted = append(m.inserted, entry)
	return nil
}

func (m *mockWalletRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.WalletEntry, error) {
	return m.entries, nil
}

func (m *mockWalletRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *mockWalletRepository) BalanceByUser(ctx context.Context, userID string) (float64, error) {
	return m.balance, nil
}

func newWalletService(repo *mockWalletRepository) WalletService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: "error", Output: io.Discard}),
	}
	return NewWalletService(repo, cfg)
}

func TestAccrue(t *testing.T) {
	t.Run("positive credit appended", func(t *testing.T) {
		repo := &mockWalletRepository{}
		svc := newWalletService(repo)

		if err := svc.Accrue(context.Background(), walletUser, walletBooking, 2); err != nil {
			t.Fatalf("Accrue returned error: %v", err)
		}
		if len(repo.inserted) != 1 {
			t.Fatalf("inserted %d entries, want 1", len(repo.inserted))
		}
		entry := repo.inserted[0]
		if entry.UserID != walletUser || entry.BookingID != walletBooking || entry.Amount != 2 {
			t.Errorf("unexpected entry %+v", entry)
		}
	})

	t.Run("non-positive credit rejected", func(t *testing.T) {
		repo := &mockWalletRepository{
			insertFn: func(ctx context.Context, entry *model.WalletEntry) error {
				t.Error("invalid credit must not reach the repository")
				return nil
			},
		}
		svc := newWalletService(repo)

		err := svc.Accrue(context.Background(), walletUser, walletBooking, 0)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
	})

	t.Run("duplicate booking mapped to conflict", func(t *testing.T) {
		repo := &mockWalletRepository{
			insertFn: func(ctx context.Context, entry *model.WalletEntry) error {
				return walleterrors.ErrDuplicateEntry
			},
		}
		svc := newWalletService(repo)

		err := svc.Accrue(context.Background(), walletUser, walletBooking, 2)

		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus != http.StatusConflict {
			t.Fatalf("expected 409, got %v", err)
		}
	})
}

func TestStatement(t *testing.T) {
	repo := &mockWalletRepository{
		entries: []*model.WalletEntry{
			{UserID: walletUser, BookingID: walletBooking, Amount: 2},
			{UserID: walletUser, BookingID: "507f1f77bcf86cd799439033", Amount: 3},
		},
		balance: 5,
	}
	svc := newWalletService(repo)

	statement, total, err := svc.Statement(context.Background(), walletUser, 10, 0)
	if err != nil {
		t.Fatalf("Statement returned error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if statement.Balance != 5 {
		t.Errorf("Balance = %g, want 5", statement.Balance)
	}
	if len(statement.Entries) != 2 {
		t.Errorf("Entries = %d, want 2", len(statement.Entries))
	}
}

func TestStatementEmptyWallet(t *testing.T) {
	svc := newWalletService(&mockWalletRepository{})

	statement, total, err := svc.Statement(context.Background(), walletUser, 10, 0)
	if err != nil {
		t.Fatalf("Statement returned error: %v", err)
	}
	if total != 0 || statement.Balance != 0 {
		t.Errorf("empty wallet: total = %d balance = %g, want zeros", total, statement.Balance)
	}
	if statement.Entries == nil {
		t.Error("Entries must be an empty slice, not nil")
	}
}
