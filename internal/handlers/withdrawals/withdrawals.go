package withdrawals

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/internal/domain"
	"github.com/GlebRadaev/refledger/internal/dto"
	"github.com/GlebRadaev/refledger/internal/service/balancer"
	"github.com/GlebRadaev/refledger/internal/service/userservice"
	"github.com/GlebRadaev/refledger/internal/service/withdrawalservice"
	"github.com/GlebRadaev/refledger/pkg/auth"
	"github.com/GlebRadaev/refledger/pkg/utils"
	"github.com/GlebRadaev/refledger/pkg/validate"
)

type UserService interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
}

type Service interface {
	CreateWithdrawal(ctx context.Context, userID int64, contact domain.Contact) (*domain.WithdrawalRequest, error)
	GetWithdrawals(ctx context.Context, userID int64) ([]domain.WithdrawalRequest, error)
}

type WithdrawalHandler struct {
	userService       UserService
	withdrawalService Service
}

func New(userService UserService, withdrawalService Service) *WithdrawalHandler {
	return &WithdrawalHandler{
		userService:       userService,
		withdrawalService: withdrawalService,
	}
}

// currentUser resolves the authenticated mini-app user to its ledger row and
// writes the error response itself when it can't.
func (h *WithdrawalHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	tgUser, ok := auth.TelegramUserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	user, err := h.userService.GetByTelegramID(r.Context(), tgUser.ID)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return nil, false
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return user, true
}

// Create godoc
//
//	@Summary		Request a withdrawal
//	@Description	Reserve all available referral credit in a pending request assigned to the least loaded admin.
//	@Tags			Withdrawals
//	@Security		TelegramAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateWithdrawalRequestDTO	true	"Payout contact"
//	@Success		201		{object}	dto.WithdrawalResponseDTO		"Created request"
//	@Failure		400		{object}	utils.Response					"Invalid request body"
//	@Failure		401		{object}	utils.Response					"Invalid init data"
//	@Failure		402		{object}	utils.Response					"No credit available"
//	@Failure		404		{object}	utils.Response					"User not synced yet"
//	@Failure		422		{object}	utils.Response					"Invalid contact"
//	@Failure		503		{object}	utils.Response					"No admins configured"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/withdrawals [post]
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWithdrawalRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	request, err := h.withdrawalService.CreateWithdrawal(r.Context(), user.ID, req.Contact())
	if err != nil {
		switch {
		case errors.Is(err, withdrawalservice.ErrInvalidContact):
			utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, withdrawalservice.ErrInsufficientCredit):
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, withdrawalservice.ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, balancer.ErrNoAdmins):
			zap.L().Error("withdrawal rejected, admin roster is empty")
			utils.RespondWithError(w, http.StatusServiceUnavailable, "withdrawals are temporarily unavailable")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewWithdrawalResponse(*request))
}

// List godoc
//
//	@Summary		Get withdrawal history
//	@Description	All withdrawal requests of the user, newest first.
//	@Tags			Withdrawals
//	@Security		TelegramAuth
//	@Produce		json
//	@Success		200	{array}		dto.WithdrawalResponseDTO	"Withdrawal history"
//	@Success		204	{object}	utils.Response				"No withdrawals yet"
//	@Failure		401	{object}	utils.Response				"Invalid init data"
//	@Failure		404	{object}	utils.Response				"User not synced yet"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/withdrawals [get]
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	list, err := h.withdrawalService.GetWithdrawals(r.Context(), user.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch withdrawals")
		return
	}
	if len(list) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalsResponse(list))
}
