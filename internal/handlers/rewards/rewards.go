package rewards

//go:generate mockgen -source=rewards.go -destination=mock_rewards.go -package=rewards

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/rewardservice"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/utils"
)

type Service interface {
	DailyStatus(ctx context.Context, userID int64) (*rewardservice.DailyStatus, error)
	ClaimDaily(ctx context.Context, userID int64) (*domain.Activity, error)
	SpinStatus(ctx context.Context, userID int64) (*rewardservice.SpinStatus, error)
	ClaimSpin(ctx context.Context, userID int64) (*domain.Activity, error)
}

type RewardHandler struct {
	rewardService Service
}

func New(rewardService Service) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
	}
}

// DailyStatus godoc
//
//	@Summary		Daily reward status
//	@Description	Level unlocked by approved deposits and whether today's reward can be claimed.
//	@Tags			Rewards
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.DailyRewardStatusDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/me/daily-reward-status [get]
func (h *RewardHandler) DailyStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	status, err := h.rewardService.DailyStatus(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.DailyRewardStatusDTO{
		Eligible:             status.Eligible,
		Level:                status.Level,
		AmountCents:          status.AmountCents,
		ApprovedDepositCents: status.ApprovedDepositCents,
		NextLevelCents:       status.NextLevelCents,
		LastClaimedAt:        status.LastClaimedAt,
		NextClaimAt:          status.NextClaimAt,
	})
}

// ClaimDaily godoc
//
//	@Summary		Claim the daily reward
//	@Tags			Rewards
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ClaimDailyResponseDTO
//	@Failure		409	{object}	utils.Response	"Not eligible yet"
//	@Failure		429	{object}	utils.Response	"Too many requests"
//	@Router			/api/me/claim-daily-reward [post]
func (h *RewardHandler) ClaimDaily(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	activity, err := h.rewardService.ClaimDaily(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ClaimDailyResponseDTO{
		Claimed:     true,
		RewardCents: activity.AmountCents,
		Level:       activity.Meta.Tier,
	})
}

// SpinStatus godoc
//
//	@Summary		Spin status
//	@Tags			Rewards
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.SpinStatusDTO
//	@Router			/api/me/spin-status [get]
func (h *RewardHandler) SpinStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	status, err := h.rewardService.SpinStatus(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.SpinStatusDTO{Eligible: status.Eligible, PendingCount: status.PendingCount})
}

// ClaimSpin godoc
//
//	@Summary		Spin the wheel
//	@Description	Consumes one spin credit. The reward is picked by the server.
//	@Tags			Rewards
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ClaimSpinResponseDTO
//	@Failure		409	{object}	utils.Response	"No spin credits"
//	@Failure		429	{object}	utils.Response	"Too many requests"
//	@Router			/api/me/claim-spin [post]
func (h *RewardHandler) ClaimSpin(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	activity, err := h.rewardService.ClaimSpin(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ClaimSpinResponseDTO{
		Claimed:     true,
		RewardCents: activity.AmountCents,
		Reason:      "referral",
	})
}
