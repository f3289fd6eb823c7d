package withdrawalservice

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

type mocks struct {
	withdrawals *MockWithdrawalRepo
	accounts    *MockAccountRepo
	ledger      *MockLedger
	hasher      *MockHasher
}

var decidedAt = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		withdrawals: NewMockWithdrawalRepo(ctrl),
		accounts:    NewMockAccountRepo(ctrl),
		ledger:      NewMockLedger(ctrl),
		hasher:      NewMockHasher(ctrl),
	}
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
	service := New(m.withdrawals, m.accounts, m.ledger, m.hasher, txManager)
	service.now = func() time.Time { return decidedAt }
	return service, m
}

func TestService_Request(t *testing.T) {
	hash := "$2a$hash"
	withPassword := &domain.Account{UserID: 1, BalanceCents: 10000, WithdrawPasswordHash: &hash}
	phone := domain.Destination{Phone: "0911000000"}

	tests := []struct {
		name        string
		amount      money.Cents
		method      domain.PaymentMethod
		dest        domain.Destination
		prepareMock func(m mocks)
		expectedErr error
	}{
		{
			name:   "Reserved and filed",
			amount: 6000,
			method: domain.PaymentTelebirr,
			dest:   phone,
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(withPassword, nil)
				m.hasher.EXPECT().ComparePassword(hash, "1234").Return(true)
				m.withdrawals.EXPECT().Create(gomock.Any(), &domain.Withdrawal{
					UserID: 1, AmountCents: 6000, Method: domain.PaymentTelebirr, Phone: "0911000000", Status: domain.WithdrawalPending,
				}).Return(&domain.Withdrawal{ID: 5, UserID: 1, AmountCents: 6000, Status: domain.WithdrawalPending}, nil)
				m.ledger.EXPECT().Reserve(gomock.Any(), gomock.Cond(func(x any) bool {
					e := x.(ledgerservice.Entry)
					return e.Kind == domain.KindWithdrawal && e.Amount == 6000 && *e.Meta.WithdrawalID == 5 && e.Meta.Status == "PENDING"
				})).Return(&domain.Activity{}, nil)
			},
		},
		{
			name:   "Bank needs account details",
			amount: 6000,
			method: domain.PaymentCommercialBank,
			dest:   domain.Destination{AccountName: "Abel"},
			prepareMock: func(m mocks) {
			},
			expectedErr: domain.ErrInvalidWithdrawMethod,
		},
		{
			name:        "Wallet needs phone",
			amount:      6000,
			method:      domain.PaymentCBEBirr,
			dest:        domain.Destination{AccountName: "Abel", AccountNumber: "1000"},
			prepareMock: func(m mocks) {},
			expectedErr: domain.ErrInvalidWithdrawMethod,
		},
		{
			name:        "Negative amount",
			amount:      -1,
			method:      domain.PaymentTelebirr,
			dest:        phone,
			prepareMock: func(m mocks) {},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name:   "Password not set",
			amount: 6000,
			method: domain.PaymentTelebirr,
			dest:   phone,
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1}, nil)
			},
			expectedErr: domain.ErrWithdrawPasswordNotSet,
		},
		{
			name:   "Wrong password",
			amount: 6000,
			method: domain.PaymentTelebirr,
			dest:   phone,
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(withPassword, nil)
				m.hasher.EXPECT().ComparePassword(hash, "1234").Return(false)
			},
			expectedErr: domain.ErrInvalidWithdrawPassword,
		},
		{
			name:   "Insufficient balance",
			amount: 60000,
			method: domain.PaymentTelebirr,
			dest:   phone,
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(withPassword, nil)
				m.hasher.EXPECT().ComparePassword(hash, "1234").Return(true)
				m.withdrawals.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Withdrawal{ID: 5, UserID: 1, AmountCents: 60000}, nil)
				m.ledger.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(nil, domain.ErrInsufficientAvailableBalance)
			},
			expectedErr: domain.ErrInsufficientAvailableBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			withdrawal, err := service.Request(context.Background(), 1, tt.amount, tt.method, tt.dest, "1234")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, withdrawal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(5), withdrawal.ID)
		})
	}
}

func TestService_Decide(t *testing.T) {
	pending := &domain.Withdrawal{ID: 5, UserID: 1, AmountCents: 6000, Status: domain.WithdrawalPending}

	tests := []struct {
		name        string
		status      domain.WithdrawalStatus
		prepareMock func(m mocks)
		expectedErr error
	}{
		{
			name:   "Approve settles",
			status: domain.WithdrawalApproved,
			prepareMock: func(m mocks) {
				m.withdrawals.EXPECT().LockByID(gomock.Any(), int64(5)).Return(pending, nil)
				m.ledger.EXPECT().Settle(gomock.Any(), gomock.Cond(func(x any) bool {
					return x.(ledgerservice.Entry).Meta.Status == "APPROVED"
				})).Return(&domain.Activity{}, nil)
				m.withdrawals.EXPECT().UpdateStatus(gomock.Any(), int64(5), domain.WithdrawalApproved, decidedAt).
					Return(&domain.Withdrawal{ID: 5, Status: domain.WithdrawalApproved, DecidedAt: &decidedAt}, nil)
			},
		},
		{
			name:   "Reject releases",
			status: domain.WithdrawalRejected,
			prepareMock: func(m mocks) {
				m.withdrawals.EXPECT().LockByID(gomock.Any(), int64(5)).Return(pending, nil)
				m.ledger.EXPECT().Release(gomock.Any(), gomock.Any()).Return(&domain.Activity{}, nil)
				m.withdrawals.EXPECT().UpdateStatus(gomock.Any(), int64(5), domain.WithdrawalRejected, decidedAt).
					Return(&domain.Withdrawal{ID: 5, Status: domain.WithdrawalRejected, DecidedAt: &decidedAt}, nil)
			},
		},
		{
			name:   "Already decided",
			status: domain.WithdrawalRejected,
			prepareMock: func(m mocks) {
				m.withdrawals.EXPECT().LockByID(gomock.Any(), int64(5)).
					Return(&domain.Withdrawal{ID: 5, Status: domain.WithdrawalApproved}, nil)
			},
			expectedErr: domain.ErrInvalidStatusTransition,
		},
		{
			name:        "Back to pending",
			status:      domain.WithdrawalPending,
			prepareMock: func(m mocks) {},
			expectedErr: domain.ErrInvalidStatusTransition,
		},
		{
			name:   "Missing withdrawal",
			status: domain.WithdrawalApproved,
			prepareMock: func(m mocks) {
				m.withdrawals.EXPECT().LockByID(gomock.Any(), int64(5)).Return(nil, domain.ErrWithdrawalNotFound)
			},
			expectedErr: domain.ErrWithdrawalNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			withdrawal, err := service.Decide(context.Background(), 5, tt.status)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, withdrawal.Status)
			assert.Equal(t, &decidedAt, withdrawal.DecidedAt)
		})
	}
}

func TestService_Mine(t *testing.T) {
	service, m := NewMock(t)
	m.withdrawals.EXPECT().ListByUser(gomock.Any(), int64(1)).Return(nil, errors.New("db error"))

	_, err := service.Mine(context.Background(), 1)
	assert.EqualError(t, err, "list withdrawals: db error")
}

type equalHasher struct{}

func (equalHasher) ComparePassword(hashedPassword string, password string) bool {
	return hashedPassword == password
}

func newStoreService(balance money.Cents) (*Service, *servicetest.Store) {
	store := servicetest.NewStore()
	password := "1234"
	store.AddAccount(domain.Account{UserID: 1, BalanceCents: balance, WithdrawPasswordHash: &password})
	ledger := ledgerservice.New(store, store, store, nil)
	return New(store.Withdrawals(), store, ledger, equalHasher{}, store), store
}

func TestRequest_ConcurrentRequestsNeverOverReserve(t *testing.T) {
	service, store := newStoreService(10000)

	var (
		wg        sync.WaitGroup
		requested atomic.Int32
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Request(context.Background(), 1, 3000, domain.PaymentTelebirr, domain.Destination{Phone: "0911"}, "1234")
			if err == nil {
				requested.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientAvailableBalance)
		}()
	}
	wg.Wait()

	account := store.Account(1)
	assert.Equal(t, int32(3), requested.Load())
	assert.Equal(t, money.Cents(9000), account.ReservedBalanceCents)
	assert.Equal(t, money.Cents(10000), account.BalanceCents)

	pending, err := service.List(context.Background(), domain.WithdrawalPending)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestDecide_ConcurrentDecisionsApplyOnce(t *testing.T) {
	service, store := newStoreService(10000)
	withdrawal, err := service.Request(context.Background(), 1, 6000, domain.PaymentTelebirr, domain.Destination{Phone: "0911"}, "1234")
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		decided atomic.Int32
	)
	for _, status := range []domain.WithdrawalStatus{
		domain.WithdrawalApproved, domain.WithdrawalRejected, domain.WithdrawalApproved, domain.WithdrawalRejected,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Decide(context.Background(), withdrawal.ID, status)
			if err == nil {
				decided.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), decided.Load())
	account := store.Account(1)
	assert.Equal(t, money.Cents(0), account.ReservedBalanceCents)
	switch store.Withdrawal(withdrawal.ID).Status {
	case domain.WithdrawalApproved:
		assert.Equal(t, money.Cents(4000), account.BalanceCents)
	case domain.WithdrawalRejected:
		assert.Equal(t, money.Cents(10000), account.BalanceCents)
	default:
		t.Fatal("withdrawal left pending")
	}
	assert.Len(t, store.Activities(1), 2)
}
