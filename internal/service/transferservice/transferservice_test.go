package transferservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type mocks struct {
	users      *MockUserRepo
	accounts   *MockAccountRepo
	activities *MockActivityRepo
	ledger     *MockLedger
	hasher     *MockHasher
}

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		users:      NewMockUserRepo(ctrl),
		accounts:   NewMockAccountRepo(ctrl),
		activities: NewMockActivityRepo(ctrl),
		ledger:     NewMockLedger(ctrl),
		hasher:     NewMockHasher(ctrl),
	}
	return New(m.users, m.accounts, m.activities, m.ledger, m.hasher), m
}

func TestService_Send(t *testing.T) {
	hash := "$2a$hash"
	sender := &domain.User{ID: 1, Name: "Abel", Email: "abel@example.com", IsActive: true}
	recipient := &domain.User{ID: 2, Name: "Sara", Email: "sara@example.com", IsActive: true}
	counterpartyID := int64(2)

	tests := []struct {
		name        string
		toID        int64
		amount      money.Cents
		prepareMock func(m mocks)
		expected    *Record
		expectedErr error
	}{
		{
			name:   "Sent",
			toID:   2,
			amount: 1500,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByID(gomock.Any(), int64(2)).Return(recipient, nil)
				m.users.EXPECT().FindByID(gomock.Any(), int64(1)).Return(sender, nil)
				m.accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1, WithdrawPasswordHash: &hash}, nil)
				m.hasher.EXPECT().ComparePassword(hash, "1234").Return(true)
				m.ledger.EXPECT().Transfer(gomock.Any(), ledgerservice.Transfer{
					FromID: 1, FromName: "Abel", FromEmail: "abel@example.com",
					ToID: 2, ToName: "Sara", ToEmail: "sara@example.com",
					Amount: 1500,
				}).Return(&ledgerservice.TransferResult{
					Sent: &domain.Activity{ID: 9, Kind: domain.KindSend, AmountCents: 1500, Meta: domain.ActivityMeta{
						CounterpartyID: &counterpartyID, CounterpartyName: "Sara", CounterpartyEmail: "sara@example.com",
					}},
					Received: &domain.Activity{ID: 10, Kind: domain.KindReceive, AmountCents: 1500},
				}, nil)
			},
			expected: &Record{
				ID: 9, AmountCents: 1500, Kind: domain.KindSend,
				Counterparty: Counterparty{ID: 2, Name: "Sara", Email: "sara@example.com"},
			},
		},
		{
			name:        "Self transfer",
			toID:        1,
			amount:      1500,
			prepareMock: func(m mocks) {},
			expectedErr: domain.ErrSelfTransferNotAllowed,
		},
		{
			name:        "Zero amount",
			toID:        2,
			amount:      0,
			prepareMock: func(m mocks) {},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name:   "Unknown recipient",
			toID:   2,
			amount: 1500,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByID(gomock.Any(), int64(2)).Return(nil, nil)
			},
			expectedErr: domain.ErrUserNotFound,
		},
		{
			name:   "Disabled recipient",
			toID:   2,
			amount: 1500,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByID(gomock.Any(), int64(2)).Return(&domain.User{ID: 2, IsActive: false}, nil)
			},
			expectedErr: domain.ErrUserNotFound,
		},
		{
			name:   "Withdraw password not set",
			toID:   2,
			amount: 1500,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByID(gomock.Any(), int64(2)).Return(recipient, nil)
				m.users.EXPECT().FindByID(gomock.Any(), int64(1)).Return(sender, nil)
				m.accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1}, nil)
			},
			expectedErr: domain.ErrWithdrawPasswordNotSet,
		},
		{
			name:   "Wrong withdraw password",
			toID:   2,
			amount: 1500,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByID(gomock.Any(), int64(2)).Return(recipient, nil)
				m.users.EXPECT().FindByID(gomock.Any(), int64(1)).Return(sender, nil)
				m.accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1, WithdrawPasswordHash: &hash}, nil)
				m.hasher.EXPECT().ComparePassword(hash, "1234").Return(false)
			},
			expectedErr: domain.ErrInvalidWithdrawPassword,
		},
		{
			name:   "Insufficient balance",
			toID:   2,
			amount: 1500,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByID(gomock.Any(), int64(2)).Return(recipient, nil)
				m.users.EXPECT().FindByID(gomock.Any(), int64(1)).Return(sender, nil)
				m.accounts.EXPECT().FindByUserID(gomock.Any(), int64(1)).Return(&domain.Account{UserID: 1, WithdrawPasswordHash: &hash}, nil)
				m.hasher.EXPECT().ComparePassword(hash, "1234").Return(true)
				m.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(nil, domain.ErrInsufficientAvailableBalance)
			},
			expectedErr: domain.ErrInsufficientAvailableBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			record, err := service.Send(context.Background(), 1, tt.toID, tt.amount, "1234")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, record)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, record)
		})
	}
}

func TestService_History(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	fromID := int64(3)

	t.Run("Received", func(t *testing.T) {
		service, m := NewMock(t)
		m.activities.EXPECT().ListByUser(gomock.Any(), int64(1), historyLimit, domain.KindReceive).Return([]domain.Activity{
			{ID: 4, Kind: domain.KindReceive, AmountCents: 700, CreatedAt: createdAt,
				Meta: domain.ActivityMeta{CounterpartyID: &fromID, CounterpartyName: "Lia"}},
		}, nil)

		records, err := service.Received(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []Record{{
			ID: 4, AmountCents: 700, Kind: domain.KindReceive, CreatedAt: createdAt,
			Counterparty: Counterparty{ID: 3, Name: "Lia"},
		}}, records)
	})

	t.Run("Sent empty", func(t *testing.T) {
		service, m := NewMock(t)
		m.activities.EXPECT().ListByUser(gomock.Any(), int64(1), historyLimit, domain.KindSend).Return([]domain.Activity{}, nil)

		records, err := service.Sent(context.Background(), 1)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("Repository failure", func(t *testing.T) {
		service, m := NewMock(t)
		m.activities.EXPECT().ListByUser(gomock.Any(), int64(1), historyLimit, domain.KindSend).Return(nil, errors.New("db error"))

		_, err := service.Sent(context.Background(), 1)
		assert.EqualError(t, err, "list transfers: db error")
	})
}
