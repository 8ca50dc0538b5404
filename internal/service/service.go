package service

import (
	"github.com/GlebRadaev/refledger/internal/config"
	"github.com/GlebRadaev/refledger/internal/handlers/admin"
	"github.com/GlebRadaev/refledger/internal/handlers/users"
	"github.com/GlebRadaev/refledger/internal/handlers/withdrawals"
	"github.com/GlebRadaev/refledger/internal/pg"
	"github.com/GlebRadaev/refledger/internal/repo"
	"github.com/GlebRadaev/refledger/internal/service/balancer"
	"github.com/GlebRadaev/refledger/internal/service/userservice"
	"github.com/GlebRadaev/refledger/internal/service/withdrawalservice"
)

type UserService interface {
	users.Service
	withdrawals.UserService
}

type WithdrawalService interface {
	withdrawals.Service
	admin.Service
}

type Services struct {
	UserService       UserService
	WithdrawalService WithdrawalService
}

func New(cfg *config.Config, repos *repo.Repositories, oracle userservice.Oracle,
	notifier withdrawalservice.Notifier, txManager pg.TXManager) *Services {
	adminBalancer := balancer.New(repos.WithdrawalRepo, cfg.Admins)

	return &Services{
		UserService: userservice.New(repos.UserRepo, repos.WithdrawalRepo, oracle, txManager),
		WithdrawalService: withdrawalservice.New(repos.UserRepo, repos.WithdrawalRepo, adminBalancer,
			notifier, txManager, cfg.ReferralValue),
	}
}
