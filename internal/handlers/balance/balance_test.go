package balance

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/transferservice"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
	"github.com/GlebRadaev/rewardwallet/pkg/utils"
)

type mocks struct {
	transfers   *MockTransferService
	withdrawals *MockWithdrawalService
}

func NewMock(t *testing.T) (*BalanceHandler, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		transfers:   NewMockTransferService(ctrl),
		withdrawals: NewMockWithdrawalService(ctrl),
	}
	return New(m.transfers, m.withdrawals), m
}

func authed(r *http.Request) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), 1, domain.RoleUser))
}

func TestSendHandler(t *testing.T) {
	record := &transferservice.Record{
		ID:           7,
		AmountCents:  1550,
		Kind:         domain.KindSend,
		Counterparty: transferservice.Counterparty{ID: 2, Name: "Sara", Email: "sara@example.com"},
		CreatedAt:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name          string
		body          string
		prepareMock   func(m mocks)
		expectedCode  int
		expectedError string
	}{
		{
			name: "Decimal birr amount",
			body: `{"toUserId":2,"amountEtb":15.50,"withdrawPassword":"1234"}`,
			prepareMock: func(m mocks) {
				m.transfers.EXPECT().Send(gomock.Any(), int64(1), int64(2), money.Cents(1550), "1234").Return(record, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Cents win over birr",
			body: `{"toUserId":2,"amountCents":1550,"amountEtb":99,"withdrawPassword":"1234"}`,
			prepareMock: func(m mocks) {
				m.transfers.EXPECT().Send(gomock.Any(), int64(1), int64(2), money.Cents(1550), "1234").Return(record, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:          "Sub-cent amount",
			body:          `{"toUserId":2,"amountEtb":1.555,"withdrawPassword":"1234"}`,
			prepareMock:   func(m mocks) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: domain.ErrInvalidAmount.Message,
		},
		{
			name:          "No amount",
			body:          `{"toUserId":2,"withdrawPassword":"1234"}`,
			prepareMock:   func(m mocks) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: domain.ErrInvalidAmount.Message,
		},
		{
			name:          "Missing password",
			body:          `{"toUserId":2,"amountCents":100}`,
			prepareMock:   func(m mocks) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "withdrawPassword failed on required",
		},
		{
			name: "Insufficient balance",
			body: `{"toUserId":2,"amountCents":100,"withdrawPassword":"1234"}`,
			prepareMock: func(m mocks) {
				m.transfers.EXPECT().Send(gomock.Any(), int64(1), int64(2), money.Cents(100), "1234").
					Return(nil, domain.ErrInsufficientAvailableBalance)
			},
			expectedCode:  http.StatusPaymentRequired,
			expectedError: domain.ErrInsufficientAvailableBalance.Message,
		},
		{
			name: "Wrong password",
			body: `{"toUserId":2,"amountCents":100,"withdrawPassword":"0000"}`,
			prepareMock: func(m mocks) {
				m.transfers.EXPECT().Send(gomock.Any(), int64(1), int64(2), money.Cents(100), "0000").
					Return(nil, domain.ErrInvalidWithdrawPassword)
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: domain.ErrInvalidWithdrawPassword.Message,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := NewMock(t)
			tt.prepareMock(m)

			rr := httptest.NewRecorder()
			handler.Send(rr, authed(httptest.NewRequest(http.MethodPost, "/api/transactions/send", bytes.NewBufferString(tt.body))))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Message)
				return
			}
			var resp dto.TransactionResponseDTO
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, "SEND", resp.Transaction.Type)
			require.NotNil(t, resp.Transaction.ToUser)
			assert.Equal(t, "sara@example.com", resp.Transaction.ToUser.Email)
			assert.Nil(t, resp.Transaction.FromUser)
		})
	}
}

func TestReceivedHandler(t *testing.T) {
	handler, m := NewMock(t)
	m.transfers.EXPECT().Received(gomock.Any(), int64(1)).Return([]transferservice.Record{{
		ID:           8,
		AmountCents:  300,
		Kind:         domain.KindReceive,
		Counterparty: transferservice.Counterparty{ID: 3, Name: "Kebede"},
	}}, nil)

	rr := httptest.NewRecorder()
	handler.Received(rr, authed(httptest.NewRequest(http.MethodGet, "/api/transactions/received", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.TransactionsResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Transactions, 1)
	require.NotNil(t, resp.Transactions[0].FromUser)
	assert.Equal(t, "Kebede", resp.Transactions[0].FromUser.Name)
}

func TestSentHandler_Empty(t *testing.T) {
	handler, m := NewMock(t)
	m.transfers.EXPECT().Sent(gomock.Any(), int64(1)).Return(nil, nil)

	rr := httptest.NewRecorder()
	handler.Sent(rr, authed(httptest.NewRequest(http.MethodGet, "/api/transactions/sent", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"transactions":[]}`, rr.Body.String())
}

func TestWithdrawHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		prepareMock  func(m mocks)
		expectedCode int
	}{
		{
			name: "Mobile withdrawal",
			body: `{"amountCents":5000,"method":"TELEBIRR","phone":"0911000000","withdrawPassword":"1234"}`,
			prepareMock: func(m mocks) {
				m.withdrawals.EXPECT().Request(gomock.Any(), int64(1), money.Cents(5000), domain.PaymentTelebirr,
					domain.Destination{Phone: "0911000000"}, "1234").
					Return(&domain.Withdrawal{ID: 4, UserID: 1, AmountCents: 5000, Method: domain.PaymentTelebirr, Status: domain.WithdrawalPending}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Zero amount",
			body:         `{"amountCents":0,"method":"TELEBIRR","phone":"0911000000","withdrawPassword":"1234"}`,
			prepareMock:  func(m mocks) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Missing bank destination",
			body: `{"amountCents":5000,"method":"COMMERCIAL_BANK","withdrawPassword":"1234"}`,
			prepareMock: func(m mocks) {
				m.withdrawals.EXPECT().Request(gomock.Any(), int64(1), money.Cents(5000), domain.PaymentCommercialBank,
					domain.Destination{}, "1234").
					Return(nil, domain.ErrInvalidWithdrawMethod)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Password not set",
			body: `{"amountCents":5000,"method":"CBE_BIRR","phone":"0911","withdrawPassword":"1234"}`,
			prepareMock: func(m mocks) {
				m.withdrawals.EXPECT().Request(gomock.Any(), int64(1), money.Cents(5000), domain.PaymentCBEBirr,
					domain.Destination{Phone: "0911"}, "1234").
					Return(nil, domain.ErrWithdrawPasswordNotSet)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := NewMock(t)
			tt.prepareMock(m)

			rr := httptest.NewRecorder()
			handler.Withdraw(rr, authed(httptest.NewRequest(http.MethodPost, "/api/withdrawals", bytes.NewBufferString(tt.body))))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestGetWithdrawalsHandler(t *testing.T) {
	handler, m := NewMock(t)
	m.withdrawals.EXPECT().Mine(gomock.Any(), int64(1)).Return([]domain.Withdrawal{
		{ID: 4, UserID: 1, AmountCents: 5000, Method: domain.PaymentTelebirr, Status: domain.WithdrawalApproved},
	}, nil)

	rr := httptest.NewRecorder()
	handler.GetWithdrawals(rr, authed(httptest.NewRequest(http.MethodGet, "/api/withdrawals/mine", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.WithdrawalsResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Withdrawals, 1)
	assert.Equal(t, "APPROVED", resp.Withdrawals[0].Status)
	assert.Nil(t, resp.Withdrawals[0].User)
}
