package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateWithdrawalRequestDTO struct {
	Name        string `json:"name" validate:"required,max=128" example:"Vladislav Kibenko"`
	BankName    string `json:"bank_name" validate:"required,max=128" example:"Chase"`
	BankAccount string `json:"bank_account" validate:"required,max=64" example:"4000123412341234"`
	Phone       string `json:"phone" validate:"omitempty,max=32" example:"+15550001111"`
}

type SettleWithdrawalRequestDTO struct {
	UserID int64 `json:"user_id" validate:"required,gt=0" example:"17"`
}

type WithdrawalResponseDTO struct {
	ID                 int64           `json:"id" example:"42"`
	UserID             int64           `json:"user_id" example:"17"`
	RequestedReferrals int             `json:"requested_referrals" example:"12"`
	RequestedAmount    decimal.Decimal `json:"requested_amount" swaggertype:"string" example:"4.8"`
	Name               string          `json:"name" example:"Vladislav Kibenko"`
	BankName           string          `json:"bank_name" example:"Chase"`
	BankAccount        string          `json:"bank_account" example:"4000123412341234"`
	Phone              string          `json:"phone,omitempty" example:"+15550001111"`
	Status             string          `json:"status" example:"pending"`
	AssignedAdmin      string          `json:"assigned_admin" example:"admin_a"`
	CreatedAt          time.Time       `json:"created_at" example:"2020-12-09T16:09:57+03:00"`
	ProcessedAt        *time.Time      `json:"processed_at,omitempty" example:"2020-12-10T10:00:00+03:00"`
}
