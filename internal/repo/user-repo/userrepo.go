package userrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/pg"
)

const userColumns = `id, telegram_id, name, username, referral_count, claimed_referral_count, referred_by, joined_telegram, created_at`

var ErrUserNotUpdated = errors.New("user not updated")

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.Name, &u.Username, &u.ReferralCount,
		&u.ClaimedReferralCount, &u.ReferredBy, &u.JoinedTelegram, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) findOne(ctx context.Context, query string, arg int64) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *Repository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
}

// LockByID reads the user row and holds its lock until the surrounding
// transaction ends.
func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) LockByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1 FOR UPDATE`, telegramID)
}

// Upsert creates the user on first contact. referred_by is written only on
// insert, and only when the referrer exists and is not the user itself.
func (r *Repository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (telegram_id, name, username, referred_by)
		VALUES ($1, $2, $3, (SELECT telegram_id FROM users WHERE telegram_id = $4 AND telegram_id <> $1))
		ON CONFLICT (telegram_id) DO UPDATE
		SET name = EXCLUDED.name, username = EXCLUDED.username
		RETURNING ` + userColumns
	saved, err := scanUser(r.db.QueryRow(ctx, query, user.TelegramID, user.Name, user.Username, user.ReferredBy))
	if err != nil {
		zap.L().Error("can't upsert user", zap.Error(err))
		return nil, err
	}
	return saved, nil
}

// MarkJoined reports whether the flag actually flipped from false to true.
func (r *Repository) MarkJoined(ctx context.Context, telegramID int64) (bool, error) {
	query := `
		UPDATE users
		SET joined_telegram = true
		WHERE telegram_id = $1 AND joined_telegram = false
	`
	tag, err := r.db.Exec(ctx, query, telegramID)
	if err != nil {
		zap.L().Error("can't mark user joined", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) IncrementReferrals(ctx context.Context, telegramID int64) error {
	query := `
		UPDATE users
		SET referral_count = referral_count + 1
		WHERE telegram_id = $1
	`
	tag, err := r.db.Exec(ctx, query, telegramID)
	if err != nil {
		zap.L().Error("can't increment referral count", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment referrals of %d: %w", telegramID, ErrUserNotUpdated)
	}
	return nil
}

func (r *Repository) AddClaimed(ctx context.Context, id int64, referrals int) error {
	query := `
		UPDATE users
		SET claimed_referral_count = claimed_referral_count + $1
		WHERE id = $2
	`
	tag, err := r.db.Exec(ctx, query, referrals, id)
	if err != nil {
		zap.L().Error("can't add claimed referrals", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add claimed referrals to user %d: %w", id, ErrUserNotUpdated)
	}
	return nil
}

func (r *Repository) findMany(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't query users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("can't scan user row", zap.Error(err))
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// FindReferrersAfter returns the next page of users holding referral credit,
// ordered by id and strictly after lastSeenID.
func (r *Repository) FindReferrersAfter(ctx context.Context, lastSeenID int64, limit int) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE referral_count > 0 AND id > $1
		ORDER BY id
		LIMIT $2
	`
	return r.findMany(ctx, query, lastSeenID, limit)
}

func (r *Repository) FindJoinedReferrals(ctx context.Context, referrerTelegramID int64) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE referred_by = $1 AND joined_telegram = true
		ORDER BY id
	`
	return r.findMany(ctx, query, referrerTelegramID)
}

// MarkLeft clears the membership flag of the given referrals of one referrer
// and returns how many flags actually flipped.
func (r *Repository) MarkLeft(ctx context.Context, referrerTelegramID int64, telegramIDs []int64) (int, error) {
	if len(telegramIDs) == 0 {
		return 0, nil
	}
	query, args, err := sq.
		Update("users").
		Set("joined_telegram", false).
		Where(sq.Eq{
			"telegram_id":     telegramIDs,
			"referred_by":     referrerTelegramID,
			"joined_telegram": true,
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark left query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't mark referrals as left", zap.Error(err))
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// RetractReferrals lowers referral_count by n without going below the credit
// already paid out, so earned minus claimed never turns negative.
func (r *Repository) RetractReferrals(ctx context.Context, id int64, n int) (int, error) {
	query := `
		UPDATE users
		SET referral_count = GREATEST(claimed_referral_count, referral_count - $1)
		WHERE id = $2
		RETURNING referral_count
	`
	var count int
	if err := r.db.QueryRow(ctx, query, n, id).Scan(&count); err != nil {
		zap.L().Error("can't retract referrals", zap.Error(err))
		return 0, err
	}
	return count, nil
}

const rankedUsers = `
	WITH ranked_users AS (
		SELECT telegram_id, name, referral_count,
			ROW_NUMBER() OVER (ORDER BY referral_count DESC, id ASC) AS rank
		FROM users
	)
`

func (r *Repository) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := rankedUsers + `SELECT telegram_id, name, referral_count, rank FROM ranked_users ORDER BY rank LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("can't load leaderboard", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.TelegramID, &e.Name, &e.ReferralCount, &e.Rank); err != nil {
			zap.L().Error("can't scan leaderboard row", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) RankOf(ctx context.Context, telegramID int64) (*domain.LeaderboardEntry, error) {
	query := rankedUsers + `SELECT telegram_id, name, referral_count, rank FROM ranked_users WHERE telegram_id = $1`
	var e domain.LeaderboardEntry
	err := r.db.QueryRow(ctx, query, telegramID).Scan(&e.TelegramID, &e.Name, &e.ReferralCount, &e.Rank)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't load user rank", zap.Error(err))
		return nil, err
	}
	return &e, nil
}
