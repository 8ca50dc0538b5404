package userservice

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/pg"
)

const LeaderboardSize = 10

type UserRepo interface {
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	LockByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	MarkJoined(ctx context.Context, telegramID int64) (bool, error)
	IncrementReferrals(ctx context.Context, telegramID int64) error
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	RankOf(ctx context.Context, telegramID int64) (*domain.LeaderboardEntry, error)
}

type PendingRepo interface {
	PendingSum(ctx context.Context, userID int64) (int, error)
}

type Oracle interface {
	IsMember(ctx context.Context, telegramID int64) (bool, error)
}

var ErrUserNotFound = errors.New("user not found")

type Service struct {
	userRepo    UserRepo
	pendingRepo PendingRepo
	oracle      Oracle
	txManager   pg.TXManager
}

func New(userRepo UserRepo, pendingRepo PendingRepo, oracle Oracle, txManager pg.TXManager) *Service {
	return &Service{
		userRepo:    userRepo,
		pendingRepo: pendingRepo,
		oracle:      oracle,
		txManager:   txManager,
	}
}

// Sync registers the user on first contact and refreshes the profile on
// later calls. The referrer is recorded only when the user is new.
func (s *Service) Sync(ctx context.Context, telegramID int64, name, username string, referrer *int64) (*domain.Dashboard, error) {
	user, err := s.userRepo.Upsert(ctx, &domain.User{
		TelegramID: telegramID,
		Name:       name,
		Username:   username,
		ReferredBy: referrer,
	})
	if err != nil {
		zap.L().Error("failed to sync user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, err
	}
	return s.dashboard(ctx, user)
}

func (s *Service) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.userRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) Dashboard(ctx context.Context, telegramID int64) (*domain.Dashboard, error) {
	user, err := s.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return s.dashboard(ctx, user)
}

func (s *Service) dashboard(ctx context.Context, user *domain.User) (*domain.Dashboard, error) {
	pending, err := s.pendingRepo.PendingSum(ctx, user.ID)
	if err != nil {
		zap.L().Error("failed to sum pending referrals", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	return &domain.Dashboard{
		User:      *user,
		Pending:   pending,
		Available: max(user.Unclaimed()-pending, 0),
	}, nil
}

// ConfirmMembership checks the user against the channel and, on the first
// successful check, credits the referrer. An inconclusive check counts as
// not a member.
func (s *Service) ConfirmMembership(ctx context.Context, telegramID int64) (bool, error) {
	user, err := s.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return false, err
	}

	member, err := s.oracle.IsMember(ctx, telegramID)
	if err != nil {
		zap.L().Warn("membership check failed, treating as not joined",
			zap.Int64("telegram_id", telegramID), zap.Error(err))
		return false, nil
	}
	if !member {
		return false, nil
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		var referrer *domain.User
		if user.ReferredBy != nil {
			var err error
			if referrer, err = s.userRepo.LockByTelegramID(ctx, *user.ReferredBy); err != nil {
				return err
			}
		}

		flipped, err := s.userRepo.MarkJoined(ctx, telegramID)
		if err != nil {
			return err
		}
		if !flipped || referrer == nil {
			return nil
		}
		return s.userRepo.IncrementReferrals(ctx, referrer.TelegramID)
	})
	if err != nil {
		zap.L().Error("failed to confirm membership", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Leaderboard returns the top users and the caller's own position.
func (s *Service) Leaderboard(ctx context.Context, telegramID int64) (*domain.Leaderboard, error) {
	top, err := s.userRepo.Leaderboard(ctx, LeaderboardSize)
	if err != nil {
		zap.L().Error("failed to load leaderboard", zap.Error(err))
		return nil, err
	}

	board := &domain.Leaderboard{Top: top}
	for i := range top {
		if top[i].TelegramID == telegramID {
			board.Current = &top[i]
			return board, nil
		}
	}

	board.Current, err = s.userRepo.RankOf(ctx, telegramID)
	if err != nil {
		zap.L().Error("failed to load user rank", zap.Error(err))
		return nil, err
	}
	return board, nil
}
