package withdrawalrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/refledger/internal/domain"
)

var withdrawalColumnNames = []string{"id", "user_id", "requested_referrals", "requested_amount", "name",
	"bank_name", "bank_account", "phone", "status", "assigned_admin", "created_at", "processed_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_PendingSum(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`
		SELECT COALESCE(SUM(requested_referrals), 0)
		FROM withdrawal_requests
		WHERE user_id = $1 AND status = 'pending'
	`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    int
	}{
		{
			name: "Has pending requests",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1)).
					WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(6)))
			},
			result: 6,
		},
		{
			name: "No pending requests",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1)).
					WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(0)))
			},
			result: 0,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1)).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.PendingSum(context.Background(), 1)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Now()
	query := regexp.QuoteMeta(`
		INSERT INTO withdrawal_requests
			(user_id, name, bank_name, bank_account, phone, requested_referrals, requested_amount, status, assigned_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		RETURNING id, status, created_at
	`)
	newRequest := func() *domain.WithdrawalRequest {
		return &domain.WithdrawalRequest{
			UserID:             1,
			RequestedReferrals: 3,
			RequestedAmount:    decimal.RequireFromString("1.2"),
			Contact:            domain.Contact{Name: "Alice", BankName: "Bank", BankAccount: "0001"},
			AssignedAdmin:      "admin_a",
		}
	}

	t.Run("Create request successfully", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(1), "Alice", "Bank", "0001", "", 3, pgxmock.AnyArg(), "admin_a").
			WillReturnRows(pgxmock.NewRows([]string{"id", "status", "created_at"}).
				AddRow(int64(10), domain.WithdrawalStatusPending, createdAt))

		wd, err := repo.Create(context.Background(), newRequest())
		assert.NoError(t, err)
		assert.Equal(t, int64(10), wd.ID)
		assert.True(t, wd.IsPending())
		assert.Equal(t, createdAt, wd.CreatedAt)
		assert.True(t, decimal.RequireFromString("1.2").Equal(wd.RequestedAmount))
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(1), "Alice", "Bank", "0001", "", 3, pgxmock.AnyArg(), "admin_a").
			WillReturnError(errors.New("database error"))

		wd, err := repo.Create(context.Background(), newRequest())
		assert.Error(t, err)
		assert.Nil(t, wd)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockByID(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Now()
	query := regexp.QuoteMeta(`SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`)

	mock.ExpectQuery(query).WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows(withdrawalColumnNames).
			AddRow(int64(10), int64(1), 3, decimal.RequireFromString("1.2"), "Alice", "Bank", "0001", "",
				domain.WithdrawalStatusPending, "admin_a", createdAt, nil))

	wd, err := repo.LockByID(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, &domain.WithdrawalRequest{
		ID:                 10,
		UserID:             1,
		RequestedReferrals: 3,
		RequestedAmount:    decimal.RequireFromString("1.2"),
		Contact:            domain.Contact{Name: "Alice", BankName: "Bank", BankAccount: "0001"},
		Status:             domain.WithdrawalStatusPending,
		AssignedAdmin:      "admin_a",
		CreatedAt:          createdAt,
	}, wd)

	mock.ExpectQuery(query).WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
	wd, err = repo.LockByID(context.Background(), 11)
	assert.NoError(t, err)
	assert.Nil(t, wd)

	mock.ExpectQuery(query).WithArgs(int64(12)).WillReturnError(errors.New("database error"))
	_, err = repo.LockByID(context.Background(), 12)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkPaid(t *testing.T) {
	repo, mock := NewMock(t)
	processedAt := time.Now()
	query := regexp.QuoteMeta(`
		UPDATE withdrawal_requests
		SET status = 'paid', processed_at = $1
		WHERE id = $2 AND status = 'pending'
	`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr error
		anyErr    bool
	}{
		{
			name: "Marked paid",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(processedAt, int64(10)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "Already processed",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(processedAt, int64(10)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectErr: ErrNotPending,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(processedAt, int64(10)).
					WillReturnError(errors.New("database error"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.MarkPaid(context.Background(), 10, processedAt)
			switch {
			case tt.expectErr != nil:
				assert.ErrorIs(t, err, tt.expectErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByUserID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	paidAt := now.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 ORDER BY created_at DESC, id DESC`)).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(withdrawalColumnNames).
			AddRow(int64(2), int64(1), 1, decimal.RequireFromString("0.4"), "A", "B", "C", "",
				domain.WithdrawalStatusPending, "admin_a", now, nil).
			AddRow(int64(1), int64(1), 2, decimal.RequireFromString("0.8"), "A", "B", "C", "",
				domain.WithdrawalStatusPaid, "admin_b", now.Add(-time.Hour), &paidAt))

	list, err := repo.FindByUserID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Nil(t, list[0].ProcessedAt)
	assert.Equal(t, paidAt, *list[1].ProcessedAt)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1`)).
		WithArgs(int64(2)).
		WillReturnError(errors.New("database error"))
	_, err = repo.FindByUserID(context.Background(), 2)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindPendingByAdmin(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE assigned_admin = $1 AND status = 'pending' ORDER BY created_at ASC, id ASC`)).
		WithArgs("admin_a").
		WillReturnRows(pgxmock.NewRows(withdrawalColumnNames))

	list, err := repo.FindPendingByAdmin(context.Background(), "admin_a")
	assert.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountPendingByAdmins(t *testing.T) {
	repo, mock := NewMock(t)
	query := `SELECT assigned_admin, COUNT\(\*\) FROM withdrawal_requests WHERE .+ GROUP BY assigned_admin`

	mock.ExpectQuery(query).
		WithArgs("admin_a", "admin_b", "admin_c", domain.WithdrawalStatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"assigned_admin", "count"}).
			AddRow("admin_a", int64(3)).
			AddRow("admin_c", int64(1)))

	counts, err := repo.CountPendingByAdmins(context.Background(), []string{"admin_a", "admin_b", "admin_c"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"admin_a": 3, "admin_c": 1}, counts)

	mock.ExpectQuery(query).
		WithArgs("admin_a", domain.WithdrawalStatusPending).
		WillReturnError(errors.New("database error"))
	_, err = repo.CountPendingByAdmins(context.Background(), []string{"admin_a"})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeletePendingByUser(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`DELETE FROM withdrawal_requests WHERE user_id = $1 AND status = 'pending'`)

	mock.ExpectExec(query).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	n, err := repo.DeletePendingByUser(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	mock.ExpectExec(query).WithArgs(int64(1)).WillReturnError(errors.New("database error"))
	_, err = repo.DeletePendingByUser(context.Background(), 1)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
