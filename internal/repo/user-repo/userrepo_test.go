package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/refledger/internal/domain"
)

var userColumnNames = []string{"id", "telegram_id", "name", "username", "referral_count",
	"claimed_referral_count", "referred_by", "joined_telegram", "created_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func int64Ptr(v int64) *int64 { return &v }

func TestRepository_FindByTelegramID(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`)

	tests := []struct {
		name       string
		telegramID int64
		mockSetup  func()
		expectErr  bool
		result     *domain.User
	}{
		{
			name:       "User found",
			telegramID: 1001,
			mockSetup: func() {
				rows := pgxmock.NewRows(userColumnNames).
					AddRow(int64(1), int64(1001), "Alice", "alice", 3, 1, int64Ptr(2002), true, createdAt)
				mock.ExpectQuery(query).WithArgs(int64(1001)).WillReturnRows(rows)
			},
			result: &domain.User{
				ID:                   1,
				TelegramID:           1001,
				Name:                 "Alice",
				Username:             "alice",
				ReferralCount:        3,
				ClaimedReferralCount: 1,
				ReferredBy:           int64Ptr(2002),
				JoinedTelegram:       true,
				CreatedAt:            createdAt,
			},
		},
		{
			name:       "User not found",
			telegramID: 404,
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(404)).WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name:       "Database error",
			telegramID: 1001,
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1001)).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByTelegramID(context.Background(), tt.telegramID)
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

func TestRepository_LockByID(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(userColumnNames).
			AddRow(int64(7), int64(77), "Bob", "", 5, 2, nil, false, createdAt))

	user, err := repo.LockByID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Nil(t, user.ReferredBy)
	assert.Equal(t, 3, user.Unclaimed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Upsert(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Now()
	query := regexp.QuoteMeta(`
		INSERT INTO users (telegram_id, name, username, referred_by)
		VALUES ($1, $2, $3, (SELECT telegram_id FROM users WHERE telegram_id = $4 AND telegram_id <> $1))
		ON CONFLICT (telegram_id) DO UPDATE
		SET name = EXCLUDED.name, username = EXCLUDED.username
		RETURNING ` + userColumns)

	tests := []struct {
		name      string
		user      *domain.User
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name: "New user with referrer",
			user: &domain.User{TelegramID: 10, Name: "Carol", Username: "carol", ReferredBy: int64Ptr(20)},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(int64(10), "Carol", "carol", int64Ptr(20)).
					WillReturnRows(pgxmock.NewRows(userColumnNames).
						AddRow(int64(3), int64(10), "Carol", "carol", 0, 0, int64Ptr(20), false, createdAt))
			},
			result: &domain.User{
				ID: 3, TelegramID: 10, Name: "Carol", Username: "carol",
				ReferredBy: int64Ptr(20), CreatedAt: createdAt,
			},
		},
		{
			name: "Existing user keeps its referrer",
			user: &domain.User{TelegramID: 10, Name: "Carol B", Username: "carol"},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(int64(10), "Carol B", "carol", (*int64)(nil)).
					WillReturnRows(pgxmock.NewRows(userColumnNames).
						AddRow(int64(3), int64(10), "Carol B", "carol", 2, 0, int64Ptr(20), true, createdAt))
			},
			result: &domain.User{
				ID: 3, TelegramID: 10, Name: "Carol B", Username: "carol", ReferralCount: 2,
				ReferredBy: int64Ptr(20), JoinedTelegram: true, CreatedAt: createdAt,
			},
		},
		{
			name: "Database error",
			user: &domain.User{TelegramID: 10},
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(int64(10), "", "", (*int64)(nil)).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Upsert(context.Background(), tt.user)
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

func TestRepository_MarkJoined(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE users SET joined_telegram = true WHERE telegram_id = $1 AND joined_telegram = false`)

	tests := []struct {
		name      string
		affected  int64
		err       error
		flipped   bool
		expectErr bool
	}{
		{name: "Flag flipped", affected: 1, flipped: true},
		{name: "Already joined", affected: 0, flipped: false},
		{name: "Database error", err: errors.New("database error"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := mock.ExpectExec(query).WithArgs(int64(55))
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			}

			flipped, err := repo.MarkJoined(context.Background(), 55)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.flipped, flipped)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_IncrementReferrals(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE users SET referral_count = referral_count + 1 WHERE telegram_id = $1`)

	mock.ExpectExec(query).WithArgs(int64(20)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.IncrementReferrals(context.Background(), 20))

	mock.ExpectExec(query).WithArgs(int64(21)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := repo.IncrementReferrals(context.Background(), 21)
	assert.ErrorIs(t, err, ErrUserNotUpdated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AddClaimed(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE users SET claimed_referral_count = claimed_referral_count + $1 WHERE id = $2`)

	mock.ExpectExec(query).WithArgs(4, int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.AddClaimed(context.Background(), 1, 4))

	mock.ExpectExec(query).WithArgs(4, int64(2)).WillReturnError(errors.New("check constraint violated"))
	assert.Error(t, repo.AddClaimed(context.Background(), 2, 4))

	mock.ExpectExec(query).WithArgs(4, int64(3)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.AddClaimed(context.Background(), 3, 4), ErrUserNotUpdated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindReferrersAfter(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Now()
	query := regexp.QuoteMeta(`
		SELECT ` + userColumns + `
		FROM users
		WHERE referral_count > 0 AND id > $1
		ORDER BY id
		LIMIT $2
	`)

	mock.ExpectQuery(query).
		WithArgs(int64(100), 2).
		WillReturnRows(pgxmock.NewRows(userColumnNames).
			AddRow(int64(101), int64(9001), "A", "a", 1, 0, nil, true, createdAt).
			AddRow(int64(105), int64(9005), "B", "b", 4, 4, nil, true, createdAt))

	users, err := repo.FindReferrersAfter(context.Background(), 100, 2)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int64(101), users[0].ID)
	assert.Equal(t, int64(105), users[1].ID)

	mock.ExpectQuery(query).WithArgs(int64(105), 2).WillReturnError(errors.New("database error"))
	_, err = repo.FindReferrersAfter(context.Background(), 105, 2)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindJoinedReferrals(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE referred_by = $1 AND joined_telegram = true`)).
		WithArgs(int64(9001)).
		WillReturnRows(pgxmock.NewRows(userColumnNames).
			AddRow(int64(200), int64(1), "X", "x", 0, 0, int64Ptr(9001), true, createdAt))

	users, err := repo.FindJoinedReferrals(context.Background(), 9001)
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, int64(9001), *users[0].ReferredBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkLeft(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("No referrals to mark", func(t *testing.T) {
		n, err := repo.MarkLeft(context.Background(), 9001, nil)
		assert.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Marks only still joined referrals", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET joined_telegram = \$1 WHERE .+`).
			WithArgs(false, true, int64(9001), int64(1), int64(2)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 2))

		n, err := repo.MarkLeft(context.Background(), 9001, []int64{1, 2})
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET joined_telegram = \$1 WHERE .+`).
			WithArgs(false, true, int64(9001), int64(3)).
			WillReturnError(errors.New("database error"))

		_, err := repo.MarkLeft(context.Background(), 9001, []int64{3})
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RetractReferrals(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`
		UPDATE users
		SET referral_count = GREATEST(claimed_referral_count, referral_count - $1)
		WHERE id = $2
		RETURNING referral_count
	`)

	mock.ExpectQuery(query).WithArgs(2, int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"referral_count"}).AddRow(3))
	count, err := repo.RetractReferrals(context.Background(), 5, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	mock.ExpectQuery(query).WithArgs(2, int64(6)).WillReturnError(errors.New("database error"))
	_, err = repo.RetractReferrals(context.Background(), 6, 2)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Leaderboard(t *testing.T) {
	repo, mock := NewMock(t)
	columns := []string{"telegram_id", "name", "referral_count", "rank"}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT telegram_id, name, referral_count, rank FROM ranked_users ORDER BY rank LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(1), "Top", 9, int64(1)).
			AddRow(int64(2), "Second", 4, int64(2)))

	entries, err := repo.Leaderboard(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, []domain.LeaderboardEntry{
		{TelegramID: 1, Name: "Top", ReferralCount: 9, Rank: 1},
		{TelegramID: 2, Name: "Second", ReferralCount: 4, Rank: 2},
	}, entries)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM ranked_users WHERE telegram_id = $1`)).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(2), "Second", 4, int64(2)))
	entry, err := repo.RankOf(context.Background(), 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), entry.Rank)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM ranked_users WHERE telegram_id = $1`)).
		WithArgs(int64(3)).
		WillReturnError(pgx.ErrNoRows)
	entry, err = repo.RankOf(context.Background(), 3)
	assert.NoError(t, err)
	assert.Nil(t, entry)

	assert.NoError(t, mock.ExpectationsWereMet())
}
