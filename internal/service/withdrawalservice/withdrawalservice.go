package withdrawalservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/pg"
)

type UserRepo interface {
	LockByID(ctx context.Context, id int64) (*domain.User, error)
	AddClaimed(ctx context.Context, id int64, referrals int) error
}

type WithdrawalRepo interface {
	PendingSum(ctx context.Context, userID int64) (int, error)
	Create(ctx context.Context, wd *domain.WithdrawalRequest) (*domain.WithdrawalRequest, error)
	LockByID(ctx context.Context, id int64) (*domain.WithdrawalRequest, error)
	MarkPaid(ctx context.Context, id int64, processedAt time.Time) error
	FindByUserID(ctx context.Context, userID int64) ([]domain.WithdrawalRequest, error)
	FindPendingByAdmin(ctx context.Context, admin string) ([]domain.WithdrawalRequest, error)
}

type Balancer interface {
	PickLeastLoaded(ctx context.Context) (string, error)
}

type Notifier interface {
	Notify(telegramID int64, text string)
}

var (
	ErrInvalidContact     = errors.New("name, bank name and bank account are required")
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientCredit = errors.New("insufficient referral credit")
	ErrRequestNotFound    = errors.New("withdrawal request not found")
	ErrAlreadyProcessed   = errors.New("withdrawal request already processed")
)

type Service struct {
	userRepo       UserRepo
	withdrawalRepo WithdrawalRepo
	balancer       Balancer
	notifier       Notifier
	txManager      pg.TXManager
	rate           decimal.Decimal
	now            func() time.Time
}

func New(userRepo UserRepo, withdrawalRepo WithdrawalRepo, balancer Balancer, notifier Notifier,
	txManager pg.TXManager, rate decimal.Decimal) *Service {
	return &Service{
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		balancer:       balancer,
		notifier:       notifier,
		txManager:      txManager,
		rate:           rate,
		now:            time.Now,
	}
}

// available must run inside a transaction that holds the user row lock.
func (s *Service) available(ctx context.Context, user *domain.User) (int, error) {
	pending, err := s.withdrawalRepo.PendingSum(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("sum pending referrals: %w", err)
	}
	return user.Unclaimed() - pending, nil
}

func (s *Service) ComputeAvailable(ctx context.Context, userID int64) (int, error) {
	var available int
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		available, err = s.available(ctx, user)
		return err
	})
	if err != nil {
		zap.L().Error("failed to compute available credit", zap.Int64("user_id", userID), zap.Error(err))
		return 0, err
	}
	return available, nil
}

func validateContact(c domain.Contact) error {
	if strings.TrimSpace(c.Name) == "" ||
		strings.TrimSpace(c.BankName) == "" ||
		strings.TrimSpace(c.BankAccount) == "" {
		return ErrInvalidContact
	}
	return nil
}

// CreateWithdrawal reserves all available credit of the user in one pending
// request assigned to the least loaded admin.
func (s *Service) CreateWithdrawal(ctx context.Context, userID int64, contact domain.Contact) (*domain.WithdrawalRequest, error) {
	if err := validateContact(contact); err != nil {
		return nil, err
	}

	var created *domain.WithdrawalRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		available, err := s.available(ctx, user)
		if err != nil {
			return err
		}
		if available <= 0 {
			return ErrInsufficientCredit
		}

		admin, err := s.balancer.PickLeastLoaded(ctx)
		if err != nil {
			return err
		}

		created, err = s.withdrawalRepo.Create(ctx, &domain.WithdrawalRequest{
			UserID:             user.ID,
			RequestedReferrals: available,
			RequestedAmount:    s.rate.Mul(decimal.NewFromInt(int64(available))),
			Contact:            contact,
			AssignedAdmin:      admin,
		})
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrInsufficientCredit) && !errors.Is(err, ErrUserNotFound) {
			zap.L().Error("failed to create withdrawal request", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("withdrawal request created",
		zap.Int64("request_id", created.ID),
		zap.Int("referrals", created.RequestedReferrals),
		zap.String("admin", created.AssignedAdmin))
	return created, nil
}

// SettleWithdrawal marks the request paid and moves its referrals into the
// claimed counter in the same transaction.
func (s *Service) SettleWithdrawal(ctx context.Context, requestID, userID int64) error {
	var user *domain.User
	var settled *domain.WithdrawalRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrRequestNotFound
		}

		settled, err = s.withdrawalRepo.LockByID(ctx, requestID)
		if err != nil {
			return err
		}
		if settled == nil || settled.UserID != user.ID {
			return ErrRequestNotFound
		}
		if !settled.IsPending() {
			return ErrAlreadyProcessed
		}

		if err := s.withdrawalRepo.MarkPaid(ctx, settled.ID, s.now()); err != nil {
			return err
		}
		return s.userRepo.AddClaimed(ctx, user.ID, settled.RequestedReferrals)
	})
	if err != nil {
		if !errors.Is(err, ErrRequestNotFound) && !errors.Is(err, ErrAlreadyProcessed) {
			zap.L().Error("failed to settle withdrawal request", zap.Int64("request_id", requestID), zap.Error(err))
		}
		return err
	}

	zap.L().Info("withdrawal request settled",
		zap.Int64("request_id", requestID),
		zap.Int("referrals", settled.RequestedReferrals))
	s.notifier.Notify(user.TelegramID, fmt.Sprintf(
		"Your withdrawal of %s for %d referrals has been paid.",
		settled.RequestedAmount.StringFixed(2), settled.RequestedReferrals))
	return nil
}

func (s *Service) GetWithdrawals(ctx context.Context, userID int64) ([]domain.WithdrawalRequest, error) {
	withdrawals, err := s.withdrawalRepo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch withdrawals", zap.Error(err))
		return nil, err
	}
	return withdrawals, nil
}

func (s *Service) GetAdminQueue(ctx context.Context, admin string) ([]domain.WithdrawalRequest, error) {
	withdrawals, err := s.withdrawalRepo.FindPendingByAdmin(ctx, admin)
	if err != nil {
		zap.L().Error("failed to fetch admin queue", zap.String("admin", admin), zap.Error(err))
		return nil, err
	}
	return withdrawals, nil
}
