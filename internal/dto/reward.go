package dto

import (
	"time"

	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type DailyRewardStatusDTO struct {
	Eligible             bool         `json:"eligible"`
	Level                int          `json:"level" example:"1"`
	AmountCents          money.Cents  `json:"amountCents" example:"2500"`
	ApprovedDepositCents money.Cents  `json:"approvedDepositCents"`
	NextLevelCents       *money.Cents `json:"nextLevelCents"`
	LastClaimedAt        *time.Time   `json:"lastClaimedAt"`
	NextClaimAt          *time.Time   `json:"nextClaimAt"`
}

type ClaimDailyResponseDTO struct {
	Claimed     bool        `json:"claimed"`
	RewardCents money.Cents `json:"rewardCents" example:"2500"`
	Level       int         `json:"level"`
}

type SpinStatusDTO struct {
	Eligible     bool  `json:"eligible"`
	PendingCount int64 `json:"pendingCount"`
}

type ClaimSpinResponseDTO struct {
	Claimed     bool        `json:"claimed"`
	RewardCents money.Cents `json:"rewardCents" example:"10000"`
	Reason      string      `json:"reason,omitempty"`
}
