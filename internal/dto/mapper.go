package dto

import (
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/refledger/internal/domain"
)

func NewDashboardResponse(d *domain.Dashboard, rate decimal.Decimal) DashboardResponseDTO {
	return DashboardResponseDTO{
		TelegramID:           d.User.TelegramID,
		Name:                 d.User.Name,
		Username:             d.User.Username,
		ReferralCount:        d.User.ReferralCount,
		ClaimedReferralCount: d.User.ClaimedReferralCount,
		PendingReferrals:     d.Pending,
		Available:            d.Available,
		AvailableAmount:      rate.Mul(decimal.NewFromInt(int64(d.Available))),
		JoinedTelegram:       d.User.JoinedTelegram,
	}
}

func newLeaderboardEntry(e domain.LeaderboardEntry) LeaderboardEntryDTO {
	return LeaderboardEntryDTO{
		TelegramID:    e.TelegramID,
		Name:          e.Name,
		ReferralCount: e.ReferralCount,
		Rank:          e.Rank,
	}
}

func NewLeaderboardResponse(b *domain.Leaderboard) LeaderboardResponseDTO {
	resp := LeaderboardResponseDTO{Top: make([]LeaderboardEntryDTO, len(b.Top))}
	for i, e := range b.Top {
		resp.Top[i] = newLeaderboardEntry(e)
	}
	if b.Current != nil {
		current := newLeaderboardEntry(*b.Current)
		resp.Current = &current
	}
	return resp
}

func (r CreateWithdrawalRequestDTO) Contact() domain.Contact {
	return domain.Contact{
		Name:        r.Name,
		BankName:    r.BankName,
		BankAccount: r.BankAccount,
		Phone:       r.Phone,
	}
}

func NewWithdrawalResponse(w domain.WithdrawalRequest) WithdrawalResponseDTO {
	return WithdrawalResponseDTO{
		ID:                 w.ID,
		UserID:             w.UserID,
		RequestedReferrals: w.RequestedReferrals,
		RequestedAmount:    w.RequestedAmount,
		Name:               w.Contact.Name,
		BankName:           w.Contact.BankName,
		BankAccount:        w.Contact.BankAccount,
		Phone:              w.Contact.Phone,
		Status:             w.Status,
		AssignedAdmin:      w.AssignedAdmin,
		CreatedAt:          w.CreatedAt,
		ProcessedAt:        w.ProcessedAt,
	}
}

func NewWithdrawalsResponse(list []domain.WithdrawalRequest) []WithdrawalResponseDTO {
	resp := make([]WithdrawalResponseDTO, len(list))
	for i, w := range list {
		resp[i] = NewWithdrawalResponse(w)
	}
	return resp
}
