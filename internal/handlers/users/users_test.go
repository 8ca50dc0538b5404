package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/dto"
	"github.com/GlebRadaev/refledger/internal/service/userservice"
	"github.com/GlebRadaev/refledger/pkg/auth"
)

func NewMock(t *testing.T) (*UserHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service, decimal.RequireFromString("0.4"))
	return handler, service
}

func withUser(r *http.Request, user *auth.TelegramUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.TelegramUserKey, user))
}

func int64Ptr(v int64) *int64 { return &v }

func dashboard() *domain.Dashboard {
	return &domain.Dashboard{
		User: domain.User{
			ID:                   1,
			TelegramID:           100,
			Name:                 "Alice",
			Username:             "alice",
			ReferralCount:        20,
			ClaimedReferralCount: 5,
			JoinedTelegram:       true,
		},
		Pending:   3,
		Available: 12,
	}
}

func TestSync(t *testing.T) {
	handler, service := NewMock(t)
	tests := []struct {
		name         string
		body         string
		user         *auth.TelegramUser
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Referrer from body",
			body: `{"referrer_id": 200}`,
			user: &auth.TelegramUser{ID: 100, Name: "Alice", Username: "alice"},
			prepareMock: func() {
				service.EXPECT().Sync(gomock.Any(), int64(100), "Alice", "alice", int64Ptr(200)).Return(dashboard(), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Referrer from start param",
			user: &auth.TelegramUser{ID: 100, Name: "Alice", Username: "alice", StartParam: "ref_300"},
			prepareMock: func() {
				service.EXPECT().Sync(gomock.Any(), int64(100), "Alice", "alice", int64Ptr(300)).Return(dashboard(), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "No referrer",
			body: `{}`,
			user: &auth.TelegramUser{ID: 100, Name: "Alice", Username: "alice"},
			prepareMock: func() {
				service.EXPECT().Sync(gomock.Any(), int64(100), "Alice", "alice", (*int64)(nil)).Return(dashboard(), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid body",
			body:         `{"referrer_id":`,
			user:         &auth.TelegramUser{ID: 100},
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "No user in context",
			prepareMock:  func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "Service error",
			user: &auth.TelegramUser{ID: 100, Name: "Alice", Username: "alice"},
			prepareMock: func() {
				service.EXPECT().Sync(gomock.Any(), int64(100), "Alice", "alice", (*int64)(nil)).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/user/sync", strings.NewReader(tt.body))
			if tt.user != nil {
				r = withUser(r, tt.user)
			}
			w := httptest.NewRecorder()
			handler.Sync(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.DashboardResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, int64(100), body.TelegramID)
				assert.Equal(t, 12, body.Available)
				assert.Equal(t, 3, body.PendingReferrals)
				assert.Equal(t, "4.8", body.AvailableAmount.String())
			}
		})
	}
}

func TestMe(t *testing.T) {
	handler, service := NewMock(t)
	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Dashboard",
			prepareMock: func() {
				service.EXPECT().Dashboard(gomock.Any(), int64(100)).Return(dashboard(), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Not synced",
			prepareMock: func() {
				service.EXPECT().Dashboard(gomock.Any(), int64(100)).Return(nil, userservice.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Service error",
			prepareMock: func() {
				service.EXPECT().Dashboard(gomock.Any(), int64(100)).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := withUser(httptest.NewRequest(http.MethodGet, "/api/user/me", nil), &auth.TelegramUser{ID: 100})
			w := httptest.NewRecorder()
			handler.Me(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestVerify(t *testing.T) {
	handler, service := NewMock(t)
	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedBody dto.VerifyResponseDTO
	}{
		{
			name: "Joined",
			prepareMock: func() {
				service.EXPECT().ConfirmMembership(gomock.Any(), int64(100)).Return(true, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: dto.VerifyResponseDTO{Joined: true},
		},
		{
			name: "Not joined",
			prepareMock: func() {
				service.EXPECT().ConfirmMembership(gomock.Any(), int64(100)).Return(false, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: dto.VerifyResponseDTO{Joined: false},
		},
		{
			name: "Not synced",
			prepareMock: func() {
				service.EXPECT().ConfirmMembership(gomock.Any(), int64(100)).Return(false, userservice.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Service error",
			prepareMock: func() {
				service.EXPECT().ConfirmMembership(gomock.Any(), int64(100)).Return(false, errors.New("tx failed"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := withUser(httptest.NewRequest(http.MethodPost, "/api/user/verify", nil), &auth.TelegramUser{ID: 100})
			w := httptest.NewRecorder()
			handler.Verify(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.VerifyResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.expectedBody, body)
			}
		})
	}
}

func TestLeaderboard(t *testing.T) {
	handler, service := NewMock(t)

	t.Run("Caller outside the top", func(t *testing.T) {
		service.EXPECT().Leaderboard(gomock.Any(), int64(100)).Return(&domain.Leaderboard{
			Top:     []domain.LeaderboardEntry{{TelegramID: 1, Name: "Bob", ReferralCount: 50, Rank: 1}},
			Current: &domain.LeaderboardEntry{TelegramID: 100, Name: "Alice", ReferralCount: 2, Rank: 31},
		}, nil)

		r := withUser(httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil), &auth.TelegramUser{ID: 100})
		w := httptest.NewRecorder()
		handler.Leaderboard(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.LeaderboardResponseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, []dto.LeaderboardEntryDTO{{TelegramID: 1, Name: "Bob", ReferralCount: 50, Rank: 1}}, body.Top)
		require.NotNil(t, body.Current)
		assert.Equal(t, int64(31), body.Current.Rank)
	})

	t.Run("Service error", func(t *testing.T) {
		service.EXPECT().Leaderboard(gomock.Any(), int64(100)).Return(nil, errors.New("db down"))

		r := withUser(httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil), &auth.TelegramUser{ID: 100})
		w := httptest.NewRecorder()
		handler.Leaderboard(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
