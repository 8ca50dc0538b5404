package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	WithdrawalStatusPending = "pending"
	WithdrawalStatusPaid    = "paid"
)

type User struct {
	ID                   int64     `db:"id"`
	TelegramID           int64     `db:"telegram_id"`
	Name                 string    `db:"name"`
	Username             string    `db:"username"`
	ReferralCount        int       `db:"referral_count"`
	ClaimedReferralCount int       `db:"claimed_referral_count"`
	ReferredBy           *int64    `db:"referred_by"`
	JoinedTelegram       bool      `db:"joined_telegram"`
	CreatedAt            time.Time `db:"created_at"`
}

// Unclaimed is the credit not yet paid out, before pending reservations.
func (u *User) Unclaimed() int {
	return u.ReferralCount - u.ClaimedReferralCount
}

type Contact struct {
	Name        string
	BankName    string
	BankAccount string
	Phone       string
}

type WithdrawalRequest struct {
	ID                 int64           `db:"id"`
	UserID             int64           `db:"user_id"`
	RequestedReferrals int             `db:"requested_referrals"`
	RequestedAmount    decimal.Decimal `db:"requested_amount"`
	Contact            Contact
	Status             string     `db:"status"`
	AssignedAdmin      string     `db:"assigned_admin"`
	CreatedAt          time.Time  `db:"created_at"`
	ProcessedAt        *time.Time `db:"processed_at"`
}

func (w *WithdrawalRequest) IsPending() bool {
	return w.Status == WithdrawalStatusPending
}

type Dashboard struct {
	User      User
	Pending   int
	Available int
}

type LeaderboardEntry struct {
	TelegramID    int64  `db:"telegram_id"`
	Name          string `db:"name"`
	ReferralCount int    `db:"referral_count"`
	Rank          int64  `db:"rank"`
}

type Leaderboard struct {
	Top     []LeaderboardEntry
	Current *LeaderboardEntry
}
