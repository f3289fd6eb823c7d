package ledgerservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/metrics"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

func NewMock(t *testing.T) (*Service, *MockAccountRepo, *MockActivityRepo) {
	ctrl := gomock.NewController(t)
	accounts := NewMockAccountRepo(ctrl)
	activities := NewMockActivityRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
	return New(accounts, activities, txManager, metrics.New()), accounts, activities
}

func echoActivity(_ context.Context, a *domain.Activity) (*domain.Activity, error) {
	created := *a
	created.ID = 1
	return &created, nil
}

func TestService_SingleAccountOperations(t *testing.T) {
	tests := []struct {
		name          string
		op            func(s *Service, ctx context.Context, e Entry) (*domain.Activity, error)
		balance       money.Cents
		reserved      money.Cents
		amount        money.Cents
		wantBalance   money.Cents
		wantReserved  money.Cents
		wantDirection domain.Direction
		expectedErr   error
	}{
		{
			name:          "Credit",
			op:            (*Service).Credit,
			balance:       1000,
			amount:        250,
			wantBalance:   1250,
			wantDirection: domain.DirectionIn,
		},
		{
			name:          "Debit within available",
			op:            (*Service).Debit,
			balance:       1000,
			reserved:      200,
			amount:        800,
			wantBalance:   200,
			wantReserved:  200,
			wantDirection: domain.DirectionOut,
		},
		{
			name:        "Debit beyond available",
			op:          (*Service).Debit,
			balance:     1000,
			reserved:    200,
			amount:      801,
			expectedErr: domain.ErrInsufficientAvailableBalance,
		},
		{
			name:          "Reserve",
			op:            (*Service).Reserve,
			balance:       1000,
			amount:        300,
			wantBalance:   1000,
			wantReserved:  300,
			wantDirection: domain.DirectionHold,
		},
		{
			name:          "Release",
			op:            (*Service).Release,
			balance:       1000,
			reserved:      300,
			amount:        300,
			wantBalance:   1000,
			wantDirection: domain.DirectionRelease,
		},
		{
			name:        "Release more than reserved",
			op:          (*Service).Release,
			balance:     1000,
			reserved:    100,
			amount:      300,
			expectedErr: domain.ErrReservationUnderflow,
		},
		{
			name:          "Settle",
			op:            (*Service).Settle,
			balance:       1000,
			reserved:      300,
			amount:        300,
			wantBalance:   700,
			wantDirection: domain.DirectionSettle,
		},
		{
			name:        "Credit past the maximum",
			op:          (*Service).Credit,
			balance:     money.MaxCents,
			amount:      1,
			expectedErr: domain.ErrAmountOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, accounts, activities := NewMock(t)
			accounts.EXPECT().LockAccounts(gomock.Any(), int64(1)).Return(map[int64]*domain.Account{
				1: {UserID: 1, BalanceCents: tt.balance, ReservedBalanceCents: tt.reserved},
			}, nil)
			if tt.expectedErr == nil {
				accounts.EXPECT().UpdateBalances(gomock.Any(), &domain.Account{
					UserID: 1, BalanceCents: tt.wantBalance, ReservedBalanceCents: tt.wantReserved,
				}).Return(nil)
				activities.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(echoActivity)
			}

			activity, err := tt.op(service, context.Background(), Entry{UserID: 1, Kind: domain.KindOrder, Amount: tt.amount})
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, activity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDirection, activity.Direction)
			assert.Equal(t, tt.amount, activity.AmountCents)
			assert.Equal(t, tt.wantBalance, activity.BalanceAfterCents)
			assert.Equal(t, tt.wantReserved, activity.ReservedAfterCents)
		})
	}
}

func TestService_RejectsInvalidAmountBeforeLocking(t *testing.T) {
	service, _, _ := NewMock(t)

	for _, amount := range []money.Cents{0, -5, money.MaxCents + 1} {
		_, err := service.Credit(context.Background(), Entry{UserID: 1, Kind: domain.KindDailyReward, Amount: amount})
		assert.Error(t, err)
	}
}

func TestService_RecordLeavesBalances(t *testing.T) {
	service, accounts, activities := NewMock(t)
	accounts.EXPECT().LockAccounts(gomock.Any(), int64(1)).Return(map[int64]*domain.Account{
		1: {UserID: 1, BalanceCents: 500},
	}, nil)
	activities.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(echoActivity)

	activity, err := service.Record(context.Background(), Entry{UserID: 1, Kind: domain.KindOrder, Amount: 8000})
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionNone, activity.Direction)
	assert.Equal(t, money.Cents(500), activity.BalanceAfterCents)
	assert.Equal(t, money.Cents(0), activity.SignedAmount())
}

func TestService_UnknownAccount(t *testing.T) {
	service, accounts, _ := NewMock(t)
	accounts.EXPECT().LockAccounts(gomock.Any(), int64(9)).Return(map[int64]*domain.Account{}, nil)

	_, err := service.Credit(context.Background(), Entry{UserID: 9, Kind: domain.KindSpinReward, Amount: 100})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestService_AppendFailureFailsOperation(t *testing.T) {
	service, accounts, activities := NewMock(t)
	accounts.EXPECT().LockAccounts(gomock.Any(), int64(1)).Return(map[int64]*domain.Account{
		1: {UserID: 1, BalanceCents: 500},
	}, nil)
	accounts.EXPECT().UpdateBalances(gomock.Any(), gomock.Any()).Return(nil)
	activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	_, err := service.Credit(context.Background(), Entry{UserID: 1, Kind: domain.KindSpinReward, Amount: 100})
	assert.EqualError(t, err, "ledger credit: db error")
}

func TestService_Transfer(t *testing.T) {
	tests := []struct {
		name        string
		from, to    int64
		amount      money.Cents
		fromBalance money.Cents
		prepare     bool
		expectedErr error
	}{
		{name: "Transfer to higher id", from: 1, to: 2, amount: 300, fromBalance: 1000, prepare: true},
		{name: "Transfer to lower id", from: 2, to: 1, amount: 300, fromBalance: 1000, prepare: true},
		{name: "Insufficient funds", from: 1, to: 2, amount: 3000, fromBalance: 1000, prepare: true, expectedErr: domain.ErrInsufficientAvailableBalance},
		{name: "Self transfer", from: 1, to: 1, amount: 300, expectedErr: domain.ErrSelfTransferNotAllowed},
		{name: "Zero amount", from: 1, to: 2, amount: 0, expectedErr: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, accounts, activities := NewMock(t)
			if tt.prepare {
				accounts.EXPECT().LockAccounts(gomock.Any(), tt.from, tt.to).Return(map[int64]*domain.Account{
					tt.from: {UserID: tt.from, BalanceCents: tt.fromBalance},
					tt.to:   {UserID: tt.to, BalanceCents: 50},
				}, nil)
			}
			if tt.prepare && tt.expectedErr == nil {
				lo, hi := min(tt.from, tt.to), max(tt.from, tt.to)
				gomock.InOrder(
					accounts.EXPECT().UpdateBalances(gomock.Any(), gomock.Cond(func(x any) bool { return x.(*domain.Account).UserID == lo })).Return(nil),
					accounts.EXPECT().UpdateBalances(gomock.Any(), gomock.Cond(func(x any) bool { return x.(*domain.Account).UserID == hi })).Return(nil),
				)
				activities.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(echoActivity).Times(2)
			}

			result, err := service.Transfer(context.Background(), Transfer{
				FromID: tt.from, FromName: "Abebe", ToID: tt.to, ToName: "Sara", Amount: tt.amount,
			})
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.KindSend, result.Sent.Kind)
			assert.Equal(t, tt.fromBalance-tt.amount, result.Sent.BalanceAfterCents)
			assert.Equal(t, "Sara", result.Sent.Meta.CounterpartyName)
			assert.Equal(t, tt.to, *result.Sent.Meta.CounterpartyID)
			assert.Equal(t, domain.KindReceive, result.Received.Kind)
			assert.Equal(t, money.Cents(50)+tt.amount, result.Received.BalanceAfterCents)
			assert.Equal(t, tt.from, *result.Received.Meta.CounterpartyID)
		})
	}
}
