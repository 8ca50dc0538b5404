package dto

import "github.com/shopspring/decimal"

type SyncRequestDTO struct {
	ReferrerID *int64 `json:"referrer_id,omitempty" example:"279058397"`
}

type DashboardResponseDTO struct {
	TelegramID           int64           `json:"telegram_id" example:"279058397"`
	Name                 string          `json:"name" example:"Vladislav"`
	Username             string          `json:"username" example:"vdkfrost"`
	ReferralCount        int             `json:"referral_count" example:"20"`
	ClaimedReferralCount int             `json:"claimed_referral_count" example:"5"`
	PendingReferrals     int             `json:"pending_referrals" example:"3"`
	Available            int             `json:"available" example:"12"`
	AvailableAmount      decimal.Decimal `json:"available_amount" swaggertype:"string" example:"4.8"`
	JoinedTelegram       bool            `json:"joined_telegram" example:"true"`
}

type VerifyResponseDTO struct {
	Joined bool `json:"joined" example:"true"`
}

type LeaderboardEntryDTO struct {
	TelegramID    int64  `json:"telegram_id" example:"279058397"`
	Name          string `json:"name" example:"Vladislav"`
	ReferralCount int    `json:"referral_count" example:"42"`
	Rank          int64  `json:"rank" example:"1"`
}

type LeaderboardResponseDTO struct {
	Top     []LeaderboardEntryDTO `json:"top"`
	Current *LeaderboardEntryDTO  `json:"current,omitempty"`
}
