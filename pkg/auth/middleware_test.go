package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testBotToken = "123456:TEST-TOKEN"

func signInitData(values url.Values, token string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func initData(authDate time.Time, startParam string) string {
	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("query_id", "AAHdF6IQAAAAAN0XohDhrOrc")
	values.Set("user", `{"id":279058397,"first_name":"Vladislav","last_name":"Kibenko","username":"vdkfrost"}`)
	if startParam != "" {
		values.Set("start_param", startParam)
	}
	return signInitData(values, testBotToken)
}

func TestTelegramAuth_Middleware(t *testing.T) {
	tgAuth := NewTelegramAuth(testBotToken, time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		check      func(t *testing.T, user *TelegramUser)
	}{
		{
			name:       "Valid init data",
			header:     "tma " + initData(time.Now(), "ref_42"),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, user *TelegramUser) {
				assert.Equal(t, int64(279058397), user.ID)
				assert.Equal(t, "Vladislav Kibenko", user.Name)
				assert.Equal(t, "vdkfrost", user.Username)
				assert.Equal(t, int64(42), *user.ReferrerID())
			},
		},
		{
			name:       "Missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Wrong scheme",
			header:     "Bearer " + initData(time.Now(), ""),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Expired",
			header:     "tma " + initData(time.Now().Add(-2*time.Hour), ""),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Tampered",
			header:     "tma " + strings.Replace(initData(time.Now(), ""), "vdkfrost", "someone", 1),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *TelegramUser
			handler := tgAuth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = TelegramUserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestTelegramUser_ReferrerID(t *testing.T) {
	tests := []struct {
		name       string
		startParam string
		expected   *int64
	}{
		{name: "No start param", startParam: ""},
		{name: "Other start param", startParam: "promo"},
		{name: "Not a number", startParam: "ref_abc"},
		{name: "Self referral", startParam: "ref_7"},
		{name: "Valid", startParam: "ref_9", expected: func() *int64 { v := int64(9); return &v }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &TelegramUser{ID: 7, StartParam: tt.startParam}
			assert.Equal(t, tt.expected, user.ReferrerID())
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	jwtService := NewJWTService("test-secret")
	roster := []string{"admin_a", "admin_b"}
	valid, _ := jwtService.GenerateJWT("admin_b", time.Now().Add(time.Hour))
	stranger, _ := jwtService.GenerateJWT("stranger", time.Now().Add(time.Hour))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantHandle string
	}{
		{name: "Valid admin", header: "Bearer " + valid, wantStatus: http.StatusOK, wantHandle: "admin_b"},
		{name: "Missing header", wantStatus: http.StatusUnauthorized},
		{name: "Garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "Handle off roster", header: "Bearer " + stranger, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var handle string
			handler := AdminMiddleware(jwtService, roster)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handle, _ = AdminHandleFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/admin/withdrawals", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantHandle, handle)
		})
	}
}
