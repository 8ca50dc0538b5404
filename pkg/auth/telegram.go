package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/pkg/utils"
)

const (
	authScheme     = "tma "
	referralPrefix = "ref_"
)

type TelegramUser struct {
	ID         int64
	Name       string
	Username   string
	StartParam string
}

// ReferrerID extracts the referrer from a "ref_<telegram id>" start param.
func (u *TelegramUser) ReferrerID() *int64 {
	raw, ok := strings.CutPrefix(u.StartParam, referralPrefix)
	if !ok {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == u.ID {
		return nil
	}
	return &id
}

type TelegramAuth struct {
	botToken string
	expIn    time.Duration
}

func NewTelegramAuth(botToken string, expIn time.Duration) *TelegramAuth {
	return &TelegramAuth{
		botToken: botToken,
		expIn:    expIn,
	}
}

// Middleware authenticates mini-app calls carrying "Authorization: tma <init data>".
func (t *TelegramAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, authScheme) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		raw := strings.TrimPrefix(authHeader, authScheme)
		if err := initdata.Validate(raw, t.botToken, t.expIn); err != nil {
			zap.L().Info("invalid telegram init data", zap.Error(err))
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		data, err := initdata.Parse(raw)
		if err != nil || data.User.ID == 0 {
			zap.L().Info("failed to parse telegram init data", zap.Error(err))
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user := &TelegramUser{
			ID:         data.User.ID,
			Name:       strings.TrimSpace(data.User.FirstName + " " + data.User.LastName),
			Username:   data.User.Username,
			StartParam: data.StartParam,
		}
		ctx := context.WithValue(r.Context(), TelegramUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
