package domain

import (
	"time"

	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

// Account is the per-user wallet and the unit of ledger consistency.
// ReservedBalanceCents never exceeds BalanceCents.
type Account struct {
	UserID                  int64       `db:"user_id"`
	BalanceCents            money.Cents `db:"balance_cents"`
	ReservedBalanceCents    money.Cents `db:"reserved_balance_cents"`
	Points                  int64       `db:"points"`
	ReferralCode            string      `db:"referral_code"`
	ReferredByCode          *string     `db:"referred_by_code"`
	ReferrerID              *int64      `db:"referrer_id"`
	WithdrawPasswordHash    *string     `db:"withdraw_password_hash"`
	HasFirstApprovedDeposit bool        `db:"has_first_approved_deposit"`
	ApprovedDepositCents    money.Cents `db:"approved_deposit_cents"`
	LastDailyRewardAt       *time.Time  `db:"last_daily_reward_at"`
	SpinCreditsPending      int64       `db:"spin_credits_pending"`
	UpdatedAt               time.Time   `db:"updated_at"`
}

func (a *Account) Available() money.Cents {
	return a.BalanceCents - a.ReservedBalanceCents
}

func (a *Account) HasWithdrawPassword() bool {
	return a.WithdrawPasswordHash != nil && *a.WithdrawPasswordHash != ""
}

func (a *Account) Credit(amount money.Cents) error {
	if err := amount.Positive(); err != nil {
		return AmountError(err)
	}
	balance, err := a.BalanceCents.Add(amount)
	if err != nil {
		return AmountError(err)
	}
	a.BalanceCents = balance
	return nil
}

func (a *Account) Debit(amount money.Cents) error {
	if err := amount.Positive(); err != nil {
		return AmountError(err)
	}
	if amount > a.Available() {
		return ErrInsufficientAvailableBalance
	}
	a.BalanceCents -= amount
	return nil
}

func (a *Account) Reserve(amount money.Cents) error {
	if err := amount.Positive(); err != nil {
		return AmountError(err)
	}
	if amount > a.Available() {
		return ErrInsufficientAvailableBalance
	}
	a.ReservedBalanceCents += amount
	return nil
}

func (a *Account) Release(amount money.Cents) error {
	if err := amount.Positive(); err != nil {
		return AmountError(err)
	}
	if amount > a.ReservedBalanceCents {
		return ErrReservationUnderflow
	}
	a.ReservedBalanceCents -= amount
	return nil
}

// Settle consumes a reservation: balance and reserved both drop by amount.
func (a *Account) Settle(amount money.Cents) error {
	if err := amount.Positive(); err != nil {
		return AmountError(err)
	}
	if amount > a.ReservedBalanceCents {
		return ErrReservationUnderflow
	}
	a.ReservedBalanceCents -= amount
	a.BalanceCents -= amount
	return nil
}

// DailyRewardDue reports whether interval has passed since the last claim.
func (a *Account) DailyRewardDue(now time.Time, interval time.Duration) bool {
	return a.LastDailyRewardAt == nil || now.Sub(*a.LastDailyRewardAt) >= interval
}
