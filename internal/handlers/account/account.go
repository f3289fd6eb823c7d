package account

//go:generate mockgen -source=account.go -destination=mock_account.go -package=account

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/accountservice"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/utils"
)

type Service interface {
	Me(ctx context.Context, userID int64) (*accountservice.Profile, error)
	Stats(ctx context.Context, userID int64) (*domain.AccountStats, error)
	Activity(ctx context.Context, userID int64, limit int) ([]domain.Activity, error)
	Team(ctx context.Context, userID int64) ([]domain.TeamMember, error)
	FindRecipient(ctx context.Context, userID int64) (*domain.User, error)
}

type PasswordService interface {
	ChangePassword(ctx context.Context, userID int64, current string, password string, confirm string) error
	SetWithdrawPassword(ctx context.Context, userID int64, current string, password string, confirm string) error
}

type ReferralService interface {
	ListByReferrer(ctx context.Context, referrerID int64) ([]domain.ReferralBonusView, error)
}

type AccountHandler struct {
	accountService  Service
	passwordService PasswordService
	referralService ReferralService
}

func New(accountService Service, passwordService PasswordService, referralService ReferralService) *AccountHandler {
	return &AccountHandler{
		accountService:  accountService,
		passwordService: passwordService,
		referralService: referralService,
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utils.RespondWithDomainError(w, domain.ErrUnauthorized)
	}
	return userID, ok
}

// Me godoc
//
//	@Summary		Current user
//	@Description	The authenticated user with balances, referral code, points and team size.
//	@Tags			Me
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.MeResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/me [get]
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	profile, err := h.accountService.Me(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MeResponseDTO{
		User:      dto.NewWalletUserDTO(profile.User, profile.Account),
		TeamCount: profile.TeamCount,
	})
}

// AccountStats godoc
//
//	@Summary		Account statistics
//	@Tags			Me
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.AccountStatsResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/me/account-stats [get]
func (h *AccountHandler) AccountStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	stats, err := h.accountService.Stats(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewAccountStatsDTO(stats))
}

// Activity godoc
//
//	@Summary		Activity log
//	@Description	Newest ledger entries of the user, at most 100.
//	@Tags			Me
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Maximum number of items"
//	@Success		200		{object}	dto.ActivityResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid limit"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Router			/api/me/activity [get]
func (h *AccountHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, err := utils.QueryInt(r, "limit", 0)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	activities, err := h.accountService.Activity(r.Context(), userID, limit)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	resp := dto.ActivityResponseDTO{Items: make([]dto.ActivityItemDTO, 0, len(activities))}
	for i := range activities {
		resp.Items = append(resp.Items, dto.NewActivityItemDTO(&activities[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Team godoc
//
//	@Summary		Referred users
//	@Description	Users who registered with the caller's invite code, with their orders.
//	@Tags			Me
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.TeamResponseDTO
//	@Router			/api/me/team [get]
func (h *AccountHandler) Team(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	members, err := h.accountService.Team(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTeamResponseDTO(members))
}

// ReferralBonuses godoc
//
//	@Summary		Referral bonuses earned
//	@Tags			Me
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ReferralBonusesResponseDTO
//	@Router			/api/me/referral-bonuses [get]
func (h *AccountHandler) ReferralBonuses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	bonuses, err := h.referralService.ListByReferrer(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewReferralBonusesDTO(bonuses))
}

// ChangePassword godoc
//
//	@Summary		Change the login password
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.ChangePasswordRequestDTO	true	"Passwords"
//	@Success		200		{object}	dto.MessageResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or mismatched passwords"
//	@Failure		401		{object}	utils.Response	"Wrong current password"
//	@Router			/api/me/change-password [post]
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	err := h.passwordService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "Password changed"})
}

// SetWithdrawPassword godoc
//
//	@Summary		Set or change the withdraw password
//	@Description	The withdraw password authorizes transfers and withdrawals. Changing it requires the current one.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.WithdrawPasswordRequestDTO	true	"Passwords"
//	@Success		200		{object}	dto.MessageResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or mismatched passwords"
//	@Failure		422		{object}	utils.Response	"Wrong current withdraw password"
//	@Router			/api/me/withdraw-password [post]
func (h *AccountHandler) SetWithdrawPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.WithdrawPasswordRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	err := h.passwordService.SetWithdrawPassword(r.Context(), userID, req.CurrentPassword, req.Password, req.ConfirmPassword)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "Withdraw password saved"})
}

// Recipient godoc
//
//	@Summary		Look up a transfer recipient
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"User id"
//	@Success		200	{object}	dto.RecipientResponseDTO
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/users/{id} [get]
func (h *AccountHandler) Recipient(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	user, err := h.accountService.FindRecipient(r.Context(), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.RecipientResponseDTO{
		User: dto.UserRefDTO{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}
