package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/refledger/internal/config"
	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/pg"
)

// CursorName is the sweep_cursors row owned by the referral sweep.
const (
	CursorName      = "referrals"
	defaultInterval = 24 * time.Hour
)

var ErrAlreadyRunning = errors.New("sweep already running")

type UserRepo interface {
	FindReferrersAfter(ctx context.Context, lastSeenID int64, limit int) ([]domain.User, error)
	FindJoinedReferrals(ctx context.Context, referrerTelegramID int64) ([]domain.User, error)
	LockByID(ctx context.Context, id int64) (*domain.User, error)
	MarkLeft(ctx context.Context, referrerTelegramID int64, telegramIDs []int64) (int, error)
	RetractReferrals(ctx context.Context, id int64, n int) (int, error)
}

type WithdrawalRepo interface {
	DeletePendingByUser(ctx context.Context, userID int64) (int, error)
}

type CursorRepo interface {
	Load(ctx context.Context, name string) (int64, error)
	Save(ctx context.Context, name string, lastSeenID int64) error
}

type Oracle interface {
	IsMember(ctx context.Context, telegramID int64) (bool, error)
}

type Notifier interface {
	Notify(telegramID int64, text string)
}

type RunStats struct {
	RunID             string
	StartCursor       int64
	EndCursor         int64
	Pages             int
	Referrers         int
	Checked           int
	CheckErrors       int
	Departed          int
	Retracted         int
	CancelledRequests int
	Failed            int
	Completed         bool
	Cancelled         bool
}

type Service struct {
	userRepo       UserRepo
	withdrawalRepo WithdrawalRepo
	cursorRepo     CursorRepo
	oracle         Oracle
	notifier       Notifier
	txManager      pg.TXManager

	interval     time.Duration
	pageSize     int
	workers      int
	cursorPolicy string
	maxPages     int
	runOnStart   bool

	running atomic.Bool
}

func New(cfg *config.Config, userRepo UserRepo, withdrawalRepo WithdrawalRepo, cursorRepo CursorRepo,
	oracle Oracle, notifier Notifier, txManager pg.TXManager) *Service {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		cursorRepo:     cursorRepo,
		oracle:         oracle,
		notifier:       notifier,
		txManager:      txManager,
		interval:       interval,
		pageSize:       cfg.SweepPageSize,
		workers:        cfg.SweepCheckWorkers,
		cursorPolicy:   cfg.SweepCursorPolicy,
		maxPages:       cfg.SweepMaxPages,
		runOnStart:     cfg.SweepRunOnStart,
	}
}

// Start runs the sweep schedule and blocks until ctx is done and the run in
// flight, if any, has returned.
func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Integrity sweep started",
		zap.Duration("interval", s.interval),
		zap.Int("page_size", s.pageSize),
		zap.String("cursor_policy", s.cursorPolicy))

	if s.runOnStart {
		s.runLogged(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping sweep")
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Service) runLogged(ctx context.Context) {
	stats, err := s.Run(ctx)
	if errors.Is(err, ErrAlreadyRunning) {
		zap.L().Warn("Previous sweep still in progress, skipping tick")
		return
	}
	if err != nil {
		zap.L().Error("Sweep aborted", zap.String("run_id", stats.RunID), zap.Error(err))
	}
}

func (s *Service) Running() bool {
	return s.running.Load()
}

// Run performs one sweep. Only one run may be in flight per Service.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	stats := &RunStats{RunID: uuid.NewString()}
	started := time.Now()

	cursor, err := s.startCursor(ctx)
	if err != nil {
		return stats, fmt.Errorf("load cursor: %w", err)
	}
	stats.StartCursor = cursor
	zap.L().Info("Sweep run started", zap.String("run_id", stats.RunID), zap.Int64("cursor", cursor))

	err = s.scan(ctx, cursor, stats)

	zap.L().Info("Sweep run finished",
		zap.String("run_id", stats.RunID),
		zap.Duration("took", time.Since(started)),
		zap.Int64("cursor", stats.EndCursor),
		zap.Int("pages", stats.Pages),
		zap.Int("referrers", stats.Referrers),
		zap.Int("checked", stats.Checked),
		zap.Int("check_errors", stats.CheckErrors),
		zap.Int("departed", stats.Departed),
		zap.Int("retracted", stats.Retracted),
		zap.Int("cancelled_requests", stats.CancelledRequests),
		zap.Int("failed", stats.Failed),
		zap.Bool("completed", stats.Completed),
		zap.Bool("cancelled", stats.Cancelled))
	return stats, err
}

func (s *Service) startCursor(ctx context.Context) (int64, error) {
	if s.cursorPolicy == config.CursorPolicyReset {
		return 0, nil
	}
	return s.cursorRepo.Load(ctx, CursorName)
}

func (s *Service) saveCursor(ctx context.Context, cursor int64) error {
	if s.cursorPolicy == config.CursorPolicyReset {
		return nil
	}
	return s.cursorRepo.Save(context.WithoutCancel(ctx), CursorName, cursor)
}

func (s *Service) scan(ctx context.Context, cursor int64, stats *RunStats) error {
	stats.EndCursor = cursor
	for s.maxPages <= 0 || stats.Pages < s.maxPages {
		if ctx.Err() != nil {
			stats.Cancelled = true
			return nil
		}

		page, err := s.userRepo.FindReferrersAfter(ctx, cursor, s.pageSize)
		if err != nil {
			if ctx.Err() != nil {
				stats.Cancelled = true
				return nil
			}
			return fmt.Errorf("fetch referrers after %d: %w", cursor, err)
		}

		if len(page) == 0 {
			stats.Completed = true
			stats.EndCursor = 0
			return s.saveCursor(ctx, 0)
		}
		stats.Pages++

		for _, referrer := range page {
			if ctx.Err() != nil {
				stats.Cancelled = true
				break
			}
			s.processReferrer(ctx, referrer, stats)
			// checks cut short by cancellation are redone next run
			if ctx.Err() != nil {
				stats.Cancelled = true
				break
			}
			cursor = referrer.ID
		}

		stats.EndCursor = cursor
		if err := s.saveCursor(ctx, cursor); err != nil {
			return fmt.Errorf("save cursor %d: %w", cursor, err)
		}
		if stats.Cancelled {
			return nil
		}
	}
	return nil
}

func (s *Service) processReferrer(ctx context.Context, referrer domain.User, stats *RunStats) {
	stats.Referrers++

	referrals, err := s.userRepo.FindJoinedReferrals(ctx, referrer.TelegramID)
	if err != nil {
		zap.L().Error("Failed to fetch referrals", zap.Int64("referrer_id", referrer.ID), zap.Error(err))
		stats.Failed++
		return
	}
	if len(referrals) == 0 {
		return
	}

	departed := s.findDeparted(ctx, referrals, stats)
	if len(departed) == 0 {
		return
	}
	stats.Departed += len(departed)

	retracted, cancelled, err := s.retract(ctx, referrer.ID, departed)
	if err != nil {
		zap.L().Error("Retraction rolled back, referrer deferred to next run",
			zap.Int64("referrer_id", referrer.ID), zap.Error(err))
		stats.Failed++
		return
	}
	stats.Retracted += retracted
	stats.CancelledRequests += cancelled

	if retracted > 0 || cancelled > 0 {
		s.notifier.Notify(referrer.TelegramID, retractionMessage(len(departed), retracted, cancelled))
	}
}

type checkResult struct {
	member bool
	err    error
}

// findDeparted checks every referral against the oracle. Pacing belongs to
// the oracle; workers only overlap waiting on it. An inconclusive check
// keeps the referral.
func (s *Service) findDeparted(ctx context.Context, referrals []domain.User, stats *RunStats) []int64 {
	results := make([]checkResult, len(referrals))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, referral := range referrals {
		i, telegramID := i, referral.TelegramID
		g.Go(func() error {
			member, err := s.oracle.IsMember(ctx, telegramID)
			results[i] = checkResult{member: member, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var departed []int64
	for i, res := range results {
		stats.Checked++
		if res.err != nil {
			stats.CheckErrors++
			zap.L().Warn("Membership check failed, keeping referral",
				zap.Int64("telegram_id", referrals[i].TelegramID), zap.Error(res.err))
			continue
		}
		if !res.member {
			departed = append(departed, referrals[i].TelegramID)
		}
	}
	return departed
}

// retract applies one referrer's departures atomically. It runs detached
// from ctx so shutdown cannot cut the transaction in half.
func (s *Service) retract(ctx context.Context, referrerID int64, departed []int64) (retracted, cancelled int, err error) {
	err = s.txManager.Begin(context.WithoutCancel(ctx), func(ctx context.Context) error {
		referrer, err := s.userRepo.LockByID(ctx, referrerID)
		if err != nil {
			return err
		}
		if referrer == nil {
			return fmt.Errorf("referrer %d disappeared", referrerID)
		}

		flipped, err := s.userRepo.MarkLeft(ctx, referrer.TelegramID, departed)
		if err != nil {
			return err
		}
		if flipped == 0 {
			return nil
		}

		remaining, err := s.userRepo.RetractReferrals(ctx, referrer.ID, flipped)
		if err != nil {
			return err
		}
		retracted = referrer.ReferralCount - remaining

		cancelled, err = s.withdrawalRepo.DeletePendingByUser(ctx, referrer.ID)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return retracted, cancelled, nil
}

func retractionMessage(departed, retracted, cancelled int) string {
	msg := fmt.Sprintf("%d of your referrals left the channel, your referral count was reduced by %d.", departed, retracted)
	if cancelled > 0 {
		msg += " Your pending withdrawal request was cancelled, please submit a new one."
	}
	return msg
}
