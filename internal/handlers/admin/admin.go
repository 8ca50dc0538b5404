package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/dto"
	"github.com/GlebRadaev/refledger/internal/service/withdrawalservice"
	"github.com/GlebRadaev/refledger/pkg/auth"
	"github.com/GlebRadaev/refledger/pkg/utils"
	"github.com/GlebRadaev/refledger/pkg/validate"
)

type Service interface {
	GetAdminQueue(ctx context.Context, admin string) ([]domain.WithdrawalRequest, error)
	SettleWithdrawal(ctx context.Context, requestID, userID int64) error
}

type AdminHandler struct {
	withdrawalService Service
}

func New(withdrawalService Service) *AdminHandler {
	return &AdminHandler{
		withdrawalService: withdrawalService,
	}
}

// Queue godoc
//
//	@Summary		Get admin payout queue
//	@Description	Pending withdrawal requests assigned to the calling admin, oldest first.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.WithdrawalResponseDTO	"Pending requests"
//	@Failure		401	{object}	utils.Response				"Invalid token"
//	@Failure		403	{object}	utils.Response				"Handle not on the roster"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/admin/withdrawals [get]
func (h *AdminHandler) Queue(w http.ResponseWriter, r *http.Request) {
	handle, ok := auth.AdminHandleFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	queue, err := h.withdrawalService.GetAdminQueue(r.Context(), handle)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalsResponse(queue))
}

// Settle godoc
//
//	@Summary		Mark a withdrawal paid
//	@Description	Settle a pending request after the payout was made. The user's claimed counter grows by the requested referrals.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Withdrawal request id"
//	@Param			request	body		dto.SettleWithdrawalRequestDTO	true	"Owner of the request"
//	@Success		200		{string}	string							"Settled"
//	@Failure		400		{object}	utils.Response					"Invalid request"
//	@Failure		401		{object}	utils.Response					"Invalid token"
//	@Failure		403		{object}	utils.Response					"Handle not on the roster"
//	@Failure		404		{object}	utils.Response					"Request not found"
//	@Failure		409		{object}	utils.Response					"Request already paid"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/admin/withdrawals/{id}/settle [post]
func (h *AdminHandler) Settle(w http.ResponseWriter, r *http.Request) {
	handle, ok := auth.AdminHandleFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || requestID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var req dto.SettleWithdrawalRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.withdrawalService.SettleWithdrawal(r.Context(), requestID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, withdrawalservice.ErrRequestNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, withdrawalservice.ErrAlreadyProcessed):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	zap.L().Info("withdrawal settled by admin", zap.String("admin", handle), zap.Int64("request_id", requestID))
	utils.RespondWithJSON(w, http.StatusOK, "withdrawal settled")
}
