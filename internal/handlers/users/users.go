package users

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/dto"
	"github.com/GlebRadaev/refledger/internal/service/userservice"
	"github.com/GlebRadaev/refledger/pkg/auth"
	"github.com/GlebRadaev/refledger/pkg/utils"
)

type Service interface {
	Sync(ctx context.Context, telegramID int64, name, username string, referrer *int64) (*domain.Dashboard, error)
	Dashboard(ctx context.Context, telegramID int64) (*domain.Dashboard, error)
	ConfirmMembership(ctx context.Context, telegramID int64) (bool, error)
	Leaderboard(ctx context.Context, telegramID int64) (*domain.Leaderboard, error)
}

type UserHandler struct {
	userService Service
	rate        decimal.Decimal
}

func New(userService Service, rate decimal.Decimal) *UserHandler {
	return &UserHandler{
		userService: userService,
		rate:        rate,
	}
}

// Sync godoc
//
//	@Summary		Sync mini-app user
//	@Description	Create the user on first open and return the dashboard. The referrer is taken from the body or from the "ref_<id>" start param and is recorded only once.
//	@Tags			Users
//	@Security		TelegramAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.SyncRequestDTO			false	"Optional referrer"
//	@Success		200		{object}	dto.DashboardResponseDTO	"User dashboard"
//	@Failure		400		{object}	utils.Response				"Invalid request body"
//	@Failure		401		{object}	utils.Response				"Invalid init data"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/user/sync [post]
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.TelegramUserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.SyncRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	referrer := req.ReferrerID
	if referrer == nil {
		referrer = user.ReferrerID()
	}

	dashboard, err := h.userService.Sync(r.Context(), user.ID, user.Name, user.Username, referrer)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewDashboardResponse(dashboard, h.rate))
}

// Me godoc
//
//	@Summary		Get user dashboard
//	@Description	Referral counters, pending reservations and the credit available for withdrawal.
//	@Tags			Users
//	@Security		TelegramAuth
//	@Produce		json
//	@Success		200	{object}	dto.DashboardResponseDTO	"User dashboard"
//	@Failure		401	{object}	utils.Response				"Invalid init data"
//	@Failure		404	{object}	utils.Response				"User not synced yet"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/user/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.TelegramUserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	dashboard, err := h.userService.Dashboard(r.Context(), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewDashboardResponse(dashboard, h.rate))
}

// Verify godoc
//
//	@Summary		Confirm channel membership
//	@Description	Ask Telegram whether the user joined the channel. The first confirmation credits the referrer. An unreachable Telegram reports not joined.
//	@Tags			Users
//	@Security		TelegramAuth
//	@Produce		json
//	@Success		200	{object}	dto.VerifyResponseDTO	"Membership state"
//	@Failure		401	{object}	utils.Response			"Invalid init data"
//	@Failure		404	{object}	utils.Response			"User not synced yet"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/user/verify [post]
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.TelegramUserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	joined, err := h.userService.ConfirmMembership(r.Context(), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.VerifyResponseDTO{Joined: joined})
}

// Leaderboard godoc
//
//	@Summary		Get referral leaderboard
//	@Description	Top referrers plus the caller's own rank when outside the top.
//	@Tags			Users
//	@Security		TelegramAuth
//	@Produce		json
//	@Success		200	{object}	dto.LeaderboardResponseDTO	"Leaderboard"
//	@Failure		401	{object}	utils.Response				"Invalid init data"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/leaderboard [get]
func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.TelegramUserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	board, err := h.userService.Leaderboard(r.Context(), user.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewLeaderboardResponse(board))
}
