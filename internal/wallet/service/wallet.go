package service

import (
	"context"
	"errors"
	"sync"

	walleterrors "cabmarket/internal/wallet/errors"
	"cabmarket/internal/wallet/repository"
	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
	"cabmarket/pkg/model"
)

// Statement is a page of a user's wallet history plus the running
// balance across all entries.
type Statement struct {
	Balance float64              `json:"balance"`
	Entries []*model.WalletEntry `json:"entries"`
}

type WalletService interface {
	// Accrue appends a reward credit. It is called from the booking
	// claim transaction and must stay append-only.
	Accrue(ctx context.Context, userID, bookingID string, amount float64) error

	Statement(ctx context.Context, userID string, limit int, offset int64) (*Statement, int64, error)
}

type walletService struct {
	repo repository.WalletRepository
	cfg  *config.Config
}

func NewWalletService(repo repository.WalletRepository, cfg *config.Config) WalletService {
	return &walletService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *walletService) Accrue(ctx context.Context, userID, bookingID string, amount float64) error {
	if amount <= 0 {
		return apperrors.InvalidInput("Wallet credit must be positive")
	}

	entry := &model.WalletEntry{
		UserID:    userID,
		BookingID: bookingID,
		Amount:    amount,
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		if errors.Is(err, walleterrors.ErrDuplicateEntry) {
			return apperrors.Conflict("Booking reward already claimed")
		}
		return err
	}

	s.cfg.Log.Info("Wallet credit accrued",
		"user_id", userID,
		"booking_id", bookingID,
		"amount", amount,
	)
	return nil
}

func (s *walletService) Statement(ctx context.Context, userID string, limit int, offset int64) (*Statement, int64, error) {
	var count int64
	var balance float64
	var entries []*model.WalletEntry
	var errCount, errBalance, errFind error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count wallet entries", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count wallet entries", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		balance, errBalance = s.repo.BalanceByUser(ctx, userID)
		if errBalance != nil {
			s.cfg.Log.Error("Failed to compute wallet balance", "user_id", userID, "error", errBalance)
			errBalance = apperrors.Internal("Failed to compute wallet balance", errBalance)
		}
	}()

	go func() {
		defer wg.Done()
		entries, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list wallet entries", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve wallet entries", errFind)
		}
	}()

	wg.Wait()
	for _, err := range []error{errCount, errBalance, errFind} {
		if err != nil {
			return nil, 0, err
		}
	}

	if entries == nil {
		entries = []*model.WalletEntry{}
	}

	return &Statement{Balance: balance, Entries: entries}, count, nil
}
