package domain

import (
	"time"

	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type ActivityKind string

const (
	KindOrder         ActivityKind = "ORDER"
	KindWithdrawal    ActivityKind = "WITHDRAWAL"
	KindSend          ActivityKind = "SEND"
	KindReceive       ActivityKind = "RECEIVE"
	KindDailyReward   ActivityKind = "DAILY_REWARD"
	KindSpinReward    ActivityKind = "SPIN_REWARD"
	KindReferralBonus ActivityKind = "REFERRAL_BONUS"
)

// Direction is the effect an activity had on the account.
type Direction string

const (
	DirectionIn      Direction = "IN"
	DirectionOut     Direction = "OUT"
	DirectionHold    Direction = "HOLD"
	DirectionRelease Direction = "RELEASE"
	DirectionSettle  Direction = "SETTLE"
	DirectionNone    Direction = "NONE"
)

type ActivityMeta struct {
	CounterpartyID    *int64 `json:"counterpartyId,omitempty"`
	CounterpartyName  string `json:"counterpartyName,omitempty"`
	CounterpartyEmail string `json:"counterpartyEmail,omitempty"`
	OrderID           *int64 `json:"orderId,omitempty"`
	ProductName       string `json:"productName,omitempty"`
	WithdrawalID      *int64 `json:"withdrawalId,omitempty"`
	Status            string `json:"status,omitempty"`
	Tier              int    `json:"tier,omitempty"`
}

// Activity is one append-only ledger record; it is the authoritative history
// behind the cached balances on Account.
type Activity struct {
	ID                 int64        `db:"id"`
	UserID             int64        `db:"user_id"`
	Kind               ActivityKind `db:"kind"`
	Direction          Direction    `db:"direction"`
	AmountCents        money.Cents  `db:"amount_cents"`
	BalanceAfterCents  money.Cents  `db:"balance_after_cents"`
	ReservedAfterCents money.Cents  `db:"reserved_after_cents"`
	Meta               ActivityMeta `db:"meta"`
	CreatedAt          time.Time    `db:"created_at"`
}

// SignedAmount is the change to the available balance: positive for credits
// and releases, negative for debits and holds. Settling a hold moves balance
// and reserve together, so it leaves available untouched.
func (a *Activity) SignedAmount() money.Cents {
	switch a.Direction {
	case DirectionIn, DirectionRelease:
		return a.AmountCents
	case DirectionOut, DirectionHold:
		return -a.AmountCents
	default:
		return 0
	}
}
