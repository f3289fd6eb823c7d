package rewardservice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/servicetest"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

var (
	now      = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	settings = Settings{
		Levels: []Level{
			{ThresholdCents: 55000, AmountCents: 2500},
			{ThresholdCents: 110000, AmountCents: 7000},
		},
		Interval:    24 * time.Hour,
		SpinRewards: []money.Cents{8000, 10000, 30000, 50000},
	}
)

func NewMock(t *testing.T) (*Service, *MockAccountRepo, *MockLedger, *MockPicker) {
	ctrl := gomock.NewController(t)
	accounts := NewMockAccountRepo(ctrl)
	ledger := NewMockLedger(ctrl)
	picker := NewMockPicker(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
	service := New(accounts, ledger, txManager, picker, settings, nil).WithClock(func() time.Time { return now })
	return service, accounts, ledger, picker
}

func creditEcho(_ context.Context, e ledgerservice.Entry) (*domain.Activity, error) {
	return &domain.Activity{UserID: e.UserID, Kind: e.Kind, Direction: domain.DirectionIn, AmountCents: e.Amount}, nil
}

func TestService_DailyStatus(t *testing.T) {
	lastClaim := now.Add(-2 * time.Hour)

	tests := []struct {
		name         string
		account      *domain.Account
		wantEligible bool
		wantLevel    int
		wantAmount   money.Cents
		wantNext     *money.Cents
	}{
		{
			name:      "Below first threshold",
			account:   &domain.Account{UserID: 1, ApprovedDepositCents: 54999},
			wantNext:  ptr(money.Cents(55000)),
			wantLevel: 0,
		},
		{
			name:         "Level one never claimed",
			account:      &domain.Account{UserID: 1, ApprovedDepositCents: 60000},
			wantEligible: true,
			wantLevel:    1,
			wantAmount:   2500,
			wantNext:     ptr(money.Cents(110000)),
		},
		{
			name:       "Top level claimed two hours ago",
			account:    &domain.Account{UserID: 1, ApprovedDepositCents: 110000, LastDailyRewardAt: &lastClaim},
			wantLevel:  2,
			wantAmount: 7000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, accounts, _, _ := NewMock(t)
			accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(tt.account, nil)

			status, err := service.DailyStatus(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEligible, status.Eligible)
			assert.Equal(t, tt.wantLevel, status.Level)
			assert.Equal(t, tt.wantAmount, status.AmountCents)
			assert.Equal(t, tt.wantNext, status.NextLevelCents)
		})
	}
}

func TestService_ClaimDaily(t *testing.T) {
	yesterday := now.Add(-24 * time.Hour)
	recent := now.Add(-23 * time.Hour)

	tests := []struct {
		name        string
		prepareMock func(accounts *MockAccountRepo, ledger *MockLedger)
		wantAmount  money.Cents
		expectedErr error
	}{
		{
			name: "Level one first claim",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger) {
				accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1, ApprovedDepositCents: 55000}, nil)
				accounts.EXPECT().CompareAndSetLastDaily(gomock.Any(), int64(1), (*time.Time)(nil), now).Return(true, nil)
				ledger.EXPECT().Credit(gomock.Any(), ledgerservice.Entry{
					UserID: 1, Kind: domain.KindDailyReward, Amount: 2500, Meta: domain.ActivityMeta{Tier: 1},
				}).DoAndReturn(creditEcho)
			},
			wantAmount: 2500,
		},
		{
			name: "Level two after a full interval",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger) {
				accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).
					Return(&domain.Account{UserID: 1, ApprovedDepositCents: 200000, LastDailyRewardAt: &yesterday}, nil)
				accounts.EXPECT().CompareAndSetLastDaily(gomock.Any(), int64(1), &yesterday, now).Return(true, nil)
				ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(creditEcho)
			},
			wantAmount: 7000,
		},
		{
			name: "No level reached",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger) {
				accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1, ApprovedDepositCents: 1000}, nil)
			},
			expectedErr: domain.ErrNotEligible,
		},
		{
			name: "Claimed within the interval",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger) {
				accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).
					Return(&domain.Account{UserID: 1, ApprovedDepositCents: 60000, LastDailyRewardAt: &recent}, nil)
			},
			expectedErr: domain.ErrNotEligible,
		},
		{
			name: "Lost the race",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger) {
				accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1, ApprovedDepositCents: 60000}, nil)
				accounts.EXPECT().CompareAndSetLastDaily(gomock.Any(), int64(1), gomock.Any(), now).Return(false, nil)
			},
			expectedErr: domain.ErrNotEligible,
		},
		{
			name: "Unknown user",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger) {
				accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(nil, nil)
			},
			expectedErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, accounts, ledger, _ := NewMock(t)
			tt.prepareMock(accounts, ledger)

			activity, err := service.ClaimDaily(context.Background(), 1)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, activity.AmountCents)
		})
	}
}

func TestService_ClaimSpin(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(accounts *MockAccountRepo, ledger *MockLedger, picker *MockPicker)
		wantAmount  money.Cents
		expectedErr error
	}{
		{
			name: "Credit consumed",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger, picker *MockPicker) {
				accounts.EXPECT().ConsumeSpinCredit(gomock.Any(), int64(1)).Return(true, nil)
				picker.EXPECT().Pick(settings.SpinRewards, settings.SpinWeights).Return(money.Cents(30000))
				ledger.EXPECT().Credit(gomock.Any(), ledgerservice.Entry{UserID: 1, Kind: domain.KindSpinReward, Amount: 30000}).
					DoAndReturn(creditEcho)
			},
			wantAmount: 30000,
		},
		{
			name: "No credits",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger, picker *MockPicker) {
				accounts.EXPECT().ConsumeSpinCredit(gomock.Any(), int64(1)).Return(false, nil)
			},
			expectedErr: domain.ErrNoSpinCredits,
		},
		{
			name: "Credit failure",
			prepareMock: func(accounts *MockAccountRepo, ledger *MockLedger, picker *MockPicker) {
				accounts.EXPECT().ConsumeSpinCredit(gomock.Any(), int64(1)).Return(true, nil)
				picker.EXPECT().Pick(gomock.Any(), gomock.Any()).Return(money.Cents(8000))
				ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedErr: errors.New("claim spin: db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, accounts, ledger, picker := NewMock(t)
			tt.prepareMock(accounts, ledger, picker)

			activity, err := service.ClaimSpin(context.Background(), 1)
			if tt.expectedErr != nil {
				if errors.Is(tt.expectedErr, domain.ErrNoSpinCredits) {
					assert.ErrorIs(t, err, domain.ErrNoSpinCredits)
				} else {
					assert.EqualError(t, err, tt.expectedErr.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, activity.AmountCents)
		})
	}
}

func TestService_SpinStatus(t *testing.T) {
	service, accounts, _, _ := NewMock(t)
	accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1, SpinCreditsPending: 2}, nil)

	status, err := service.SpinStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, status.Eligible)
	assert.Equal(t, int64(2), status.PendingCount)
}

func newStoreService(account domain.Account) (*Service, *servicetest.Store) {
	store := servicetest.NewStore()
	store.AddAccount(account)
	ledger := ledgerservice.New(store, store, store, nil)
	service := New(store, ledger, store, NewWeightedPicker(), settings, nil).WithClock(func() time.Time { return now })
	return service, store
}

func TestClaimDaily_ConcurrentClaimsPayOnce(t *testing.T) {
	service, store := newStoreService(domain.Account{UserID: 1, ApprovedDepositCents: 60000})

	var (
		wg      sync.WaitGroup
		claimed atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ClaimDaily(context.Background(), 1)
			if err == nil {
				claimed.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrNotEligible)
		}()
	}
	wg.Wait()

	account := store.Account(1)
	assert.Equal(t, int32(1), claimed.Load())
	assert.Equal(t, money.Cents(2500), account.BalanceCents)
	require.NotNil(t, account.LastDailyRewardAt)
	assert.True(t, account.LastDailyRewardAt.Equal(now))
	assert.Len(t, store.Activities(1), 1)
}

func TestClaimSpin_ConsumesEachCreditOnce(t *testing.T) {
	service, store := newStoreService(domain.Account{UserID: 1, SpinCreditsPending: 3})

	var (
		wg      sync.WaitGroup
		claimed atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.ClaimSpin(context.Background(), 1); err == nil {
				claimed.Add(1)
			}
		}()
	}
	wg.Wait()

	account := store.Account(1)
	assert.Equal(t, int32(3), claimed.Load())
	assert.Equal(t, int64(0), account.SpinCreditsPending)

	var credited money.Cents
	for _, a := range store.Activities(1) {
		assert.Contains(t, settings.SpinRewards, a.AmountCents)
		credited += a.AmountCents
	}
	assert.Equal(t, credited, account.BalanceCents)
}

func TestWeightedPicker(t *testing.T) {
	rewards := []money.Cents{8000, 10000, 30000, 50000}

	tests := []struct {
		name    string
		weights []int64
		draw    int64
		want    money.Cents
	}{
		{name: "Uniform", draw: 2, want: 30000},
		{name: "First bucket", weights: []int64{70, 20, 9, 1}, draw: 69, want: 8000},
		{name: "Second bucket", weights: []int64{70, 20, 9, 1}, draw: 70, want: 10000},
		{name: "Last bucket", weights: []int64{70, 20, 9, 1}, draw: 99, want: 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &WeightedPicker{intN: func(int64) int64 { return tt.draw }}
			assert.Equal(t, tt.want, p.Pick(rewards, tt.weights))
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
