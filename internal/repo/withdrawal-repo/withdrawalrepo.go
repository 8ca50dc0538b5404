package withdrawalrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/pg"
)

const withdrawalColumns = `id, user_id, requested_referrals, requested_amount, name, bank_name, bank_account, phone, status, assigned_admin, created_at, processed_at`

var ErrNotPending = errors.New("withdrawal request is not pending")

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	err := row.Scan(&w.ID, &w.UserID, &w.RequestedReferrals, &w.RequestedAmount,
		&w.Contact.Name, &w.Contact.BankName, &w.Contact.BankAccount, &w.Contact.Phone,
		&w.Status, &w.AssignedAdmin, &w.CreatedAt, &w.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) findMany(ctx context.Context, query string, args ...any) ([]domain.WithdrawalRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to fetch withdrawal requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var withdrawals []domain.WithdrawalRequest
	for rows.Next() {
		wd, err := scanWithdrawal(rows)
		if err != nil {
			zap.L().Error("failed to scan withdrawal row", zap.Error(err))
			return nil, err
		}
		withdrawals = append(withdrawals, *wd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// PendingSum is the number of referrals reserved by the user's pending requests.
func (r *Repository) PendingSum(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(requested_referrals), 0)
		FROM withdrawal_requests
		WHERE user_id = $1 AND status = 'pending'
	`
	var sum int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		zap.L().Error("failed to sum pending referrals", zap.Error(err))
		return 0, err
	}
	return int(sum), nil
}

func (r *Repository) Create(ctx context.Context, wd *domain.WithdrawalRequest) (*domain.WithdrawalRequest, error) {
	query := `
		INSERT INTO withdrawal_requests
			(user_id, name, bank_name, bank_account, phone, requested_referrals, requested_amount, status, assigned_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		RETURNING id, status, created_at
	`
	err := r.db.QueryRow(ctx, query,
		wd.UserID, wd.Contact.Name, wd.Contact.BankName, wd.Contact.BankAccount, wd.Contact.Phone,
		wd.RequestedReferrals, wd.RequestedAmount, wd.AssignedAdmin,
	).Scan(&wd.ID, &wd.Status, &wd.CreatedAt)
	if err != nil {
		zap.L().Error("can't save withdrawal request", zap.Error(err))
		return nil, err
	}
	return wd, nil
}

func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`
	wd, err := scanWithdrawal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to lock withdrawal request", zap.Error(err))
		return nil, err
	}
	return wd, nil
}

func (r *Repository) MarkPaid(ctx context.Context, id int64, processedAt time.Time) error {
	query := `
		UPDATE withdrawal_requests
		SET status = 'paid', processed_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, processedAt, id)
	if err != nil {
		zap.L().Error("failed to mark withdrawal request paid", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark request %d paid: %w", id, ErrNotPending)
	}
	return nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int64) ([]domain.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.findMany(ctx, query, userID)
}

func (r *Repository) FindPendingByAdmin(ctx context.Context, admin string) ([]domain.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE assigned_admin = $1 AND status = 'pending'
		ORDER BY created_at ASC, id ASC
	`
	return r.findMany(ctx, query, admin)
}

// CountPendingByAdmins counts pending requests per admin. Admins without
// assignments are absent from the result.
func (r *Repository) CountPendingByAdmins(ctx context.Context, admins []string) (map[string]int, error) {
	query, args, err := sq.
		Select("assigned_admin", "COUNT(*)").
		From("withdrawal_requests").
		Where(sq.Eq{
			"status":         domain.WithdrawalStatusPending,
			"assigned_admin": admins,
		}).
		GroupBy("assigned_admin").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build admin load query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to count pending requests per admin", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int, len(admins))
	for rows.Next() {
		var admin string
		var count int64
		if err := rows.Scan(&admin, &count); err != nil {
			zap.L().Error("failed to scan admin load row", zap.Error(err))
			return nil, err
		}
		counts[admin] = int(count)
	}
	return counts, rows.Err()
}

// DeletePendingByUser cancels every pending request of the user.
func (r *Repository) DeletePendingByUser(ctx context.Context, userID int64) (int, error) {
	query := `DELETE FROM withdrawal_requests WHERE user_id = $1 AND status = 'pending'`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to cancel pending withdrawal requests", zap.Error(err))
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
