package domain

import (
	"testing"
	"time"

	"github.com/GlebRadaev/rewardwallet/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Mutations(t *testing.T) {
	tests := []struct {
		name         string
		account      Account
		apply        func(a *Account) error
		expectedErr  error
		wantBalance  money.Cents
		wantReserved money.Cents
	}{
		{
			name:        "Credit adds to balance",
			account:     Account{BalanceCents: 100},
			apply:       func(a *Account) error { return a.Credit(50) },
			wantBalance: 150,
		},
		{
			name:        "Credit past the safe maximum",
			account:     Account{BalanceCents: money.MaxCents},
			apply:       func(a *Account) error { return a.Credit(1) },
			expectedErr: ErrAmountOutOfRange,
			wantBalance: money.MaxCents,
		},
		{
			name:        "Credit of zero is rejected",
			account:     Account{BalanceCents: 10},
			apply:       func(a *Account) error { return a.Credit(0) },
			expectedErr: ErrInvalidAmount,
			wantBalance: 10,
		},
		{
			name:         "Debit respects reservations",
			account:      Account{BalanceCents: 1000, ReservedBalanceCents: 1},
			apply:        func(a *Account) error { return a.Debit(1000) },
			expectedErr:  ErrInsufficientAvailableBalance,
			wantBalance:  1000,
			wantReserved: 1,
		},
		{
			name:        "Debit of the whole available balance",
			account:     Account{BalanceCents: 1000},
			apply:       func(a *Account) error { return a.Debit(1000) },
			wantBalance: 0,
		},
		{
			name:         "Reserve holds funds",
			account:      Account{BalanceCents: 6000},
			apply:        func(a *Account) error { return a.Reserve(5000) },
			wantBalance:  6000,
			wantReserved: 5000,
		},
		{
			name:         "Reserve more than available",
			account:      Account{BalanceCents: 6000, ReservedBalanceCents: 2000},
			apply:        func(a *Account) error { return a.Reserve(5000) },
			expectedErr:  ErrInsufficientAvailableBalance,
			wantBalance:  6000,
			wantReserved: 2000,
		},
		{
			name:         "Release more than reserved",
			account:      Account{BalanceCents: 6000, ReservedBalanceCents: 2000},
			apply:        func(a *Account) error { return a.Release(2001) },
			expectedErr:  ErrReservationUnderflow,
			wantBalance:  6000,
			wantReserved: 2000,
		},
		{
			name:         "Settle drops balance and reservation",
			account:      Account{BalanceCents: 6000, ReservedBalanceCents: 5000},
			apply:        func(a *Account) error { return a.Settle(5000) },
			wantBalance:  1000,
			wantReserved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := tt.account
			err := tt.apply(&acc)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantBalance, acc.BalanceCents)
			assert.Equal(t, tt.wantReserved, acc.ReservedBalanceCents)
			assert.True(t, acc.ReservedBalanceCents >= 0 && acc.ReservedBalanceCents <= acc.BalanceCents)
		})
	}
}

func TestAccount_DailyRewardDue(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	last := now.Add(-23 * time.Hour)
	old := now.Add(-24 * time.Hour)

	assert.True(t, (&Account{}).DailyRewardDue(now, 24*time.Hour))
	assert.False(t, (&Account{LastDailyRewardAt: &last}).DailyRewardDue(now, 24*time.Hour))
	assert.True(t, (&Account{LastDailyRewardAt: &old}).DailyRewardDue(now, 24*time.Hour))
}

func TestActivity_SignedAmount(t *testing.T) {
	assert.Equal(t, money.Cents(100), (&Activity{Direction: DirectionIn, AmountCents: 100}).SignedAmount())
	assert.Equal(t, money.Cents(-100), (&Activity{Direction: DirectionOut, AmountCents: 100}).SignedAmount())
	assert.Equal(t, money.Cents(0), (&Activity{Direction: DirectionNone, AmountCents: 100}).SignedAmount())
	assert.Equal(t, money.Cents(0), (&Activity{Direction: DirectionSettle, AmountCents: 100}).SignedAmount())
}

func TestActivity_SignedAmountTracksAvailable(t *testing.T) {
	account := &Account{UserID: 1, BalanceCents: 10000}
	before := account.Available()

	require.NoError(t, account.Reserve(5000))
	hold := &Activity{Direction: DirectionHold, AmountCents: 5000}
	require.NoError(t, account.Settle(5000))
	settle := &Activity{Direction: DirectionSettle, AmountCents: 5000}

	assert.Equal(t, account.Available()-before, hold.SignedAmount()+settle.SignedAmount())
	assert.Equal(t, money.Cents(-5000), hold.SignedAmount()+settle.SignedAmount())
}
