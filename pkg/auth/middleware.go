package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/pkg/utils"
)

type ContextKey string

const (
	AdminHandleKey  ContextKey = "adminHandle"
	TelegramUserKey ContextKey = "telegramUser"
)

// AdminMiddleware accepts bearer tokens whose handle is on the roster.
func AdminMiddleware(jwtService JWTServiceInterface, roster []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !slices.Contains(roster, claims.Handle) {
				zap.L().Warn("admin handle not on roster", zap.String("handle", claims.Handle))
				utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), AdminHandleKey, claims.Handle)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminHandleFromContext(ctx context.Context) (string, bool) {
	handle, ok := ctx.Value(AdminHandleKey).(string)
	return handle, ok && handle != ""
}

func TelegramUserFromContext(ctx context.Context) (*TelegramUser, bool) {
	user, ok := ctx.Value(TelegramUserKey).(*TelegramUser)
	return user, ok && user != nil
}
