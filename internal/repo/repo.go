package repo

import (
	"github.com/GlebRadaev/refledger/internal/pg"
	sweeprepo "github.com/GlebRadaev/refledger/internal/repo/sweep-repo"
	userrepo "github.com/GlebRadaev/refledger/internal/repo/user-repo"
	withdrawalrepo "github.com/GlebRadaev/refledger/internal/repo/withdrawal-repo"
)

type Repositories struct {
	UserRepo       *userrepo.Repository
	WithdrawalRepo *withdrawalrepo.Repository
	CursorRepo     *sweeprepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:       userrepo.New(conn),
		WithdrawalRepo: withdrawalrepo.New(conn),
		CursorRepo:     sweeprepo.New(conn),
	}
}
