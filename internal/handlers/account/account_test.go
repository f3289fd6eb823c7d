package account

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/accountservice"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
)

type mocks struct {
	accounts  *MockService
	passwords *MockPasswordService
	referrals *MockReferralService
}

func NewMock(t *testing.T) (*AccountHandler, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		accounts:  NewMockService(ctrl),
		passwords: NewMockPasswordService(ctrl),
		referrals: NewMockReferralService(ctrl),
	}
	return New(m.accounts, m.passwords, m.referrals), m
}

func authed(r *http.Request) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), 1, domain.RoleUser))
}

func TestMeHandler(t *testing.T) {
	t.Run("Renders wallet", func(t *testing.T) {
		handler, m := NewMock(t)
		hash := "$2a$hash"
		m.accounts.EXPECT().Me(gomock.Any(), int64(1)).Return(&accountservice.Profile{
			User: &domain.User{ID: 1, Name: "Abel", Email: "abel@example.com", Role: domain.RoleUser, IsActive: true},
			Account: &domain.Account{
				UserID: 1, BalanceCents: 12000, ReservedBalanceCents: 2000, Points: 80,
				ReferralCode: "79927398", WithdrawPasswordHash: &hash,
			},
			TeamCount: 2,
		}, nil)

		rr := httptest.NewRecorder()
		handler.Me(rr, authed(httptest.NewRequest(http.MethodGet, "/api/me", nil)))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp dto.MeResponseDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 2, resp.TeamCount)
		assert.EqualValues(t, 12000, resp.User.BalanceCents)
		assert.EqualValues(t, 2000, resp.User.ReservedBalanceCents)
		assert.EqualValues(t, 10000, resp.User.AvailableCents)
		assert.Equal(t, "79927398", resp.User.ReferralCode)
		assert.True(t, resp.User.HasWithdrawPassword)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		handler, _ := NewMock(t)

		rr := httptest.NewRecorder()
		handler.Me(rr, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestActivityHandler(t *testing.T) {
	counterparty := int64(2)
	tests := []struct {
		name         string
		url          string
		prepareMock  func(m mocks)
		expectedCode int
	}{
		{
			name: "Transfers name the counterparty",
			url:  "/api/me/activity?limit=20",
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().Activity(gomock.Any(), int64(1), 20).Return([]domain.Activity{
					{ID: 5, Kind: domain.KindSend, Direction: domain.DirectionOut, AmountCents: 1500, Meta: domain.ActivityMeta{
						CounterpartyID: &counterparty, CounterpartyName: "Sara", CounterpartyEmail: "sara@example.com",
					}},
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Bad limit",
			url:          "/api/me/activity?limit=abc",
			prepareMock:  func(m mocks) {},
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := NewMock(t)
			tt.prepareMock(m)

			rr := httptest.NewRecorder()
			handler.Activity(rr, authed(httptest.NewRequest(http.MethodGet, tt.url, nil)))

			require.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedCode != http.StatusOK {
				return
			}
			var resp struct {
				Items []struct {
					Kind string `json:"kind"`
					Meta struct {
						To struct {
							Email string `json:"email"`
						} `json:"to"`
					} `json:"meta"`
				} `json:"items"`
			}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "SEND", resp.Items[0].Kind)
			assert.Equal(t, "sara@example.com", resp.Items[0].Meta.To.Email)
		})
	}
}

func TestTeamHandler(t *testing.T) {
	handler, m := NewMock(t)
	m.accounts.EXPECT().Team(gomock.Any(), int64(1)).Return([]domain.TeamMember{
		{User: domain.User{ID: 2, Name: "Sara"}, Orders: []domain.Order{{ID: 10, Status: domain.OrderApproved, AmountCents: 8000}}},
	}, nil)

	rr := httptest.NewRecorder()
	handler.Team(rr, authed(httptest.NewRequest(http.MethodGet, "/api/me/team", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.TeamResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.TeamMembers, 1)
	assert.Len(t, resp.TeamMembers[0].Orders, 1)
}

func TestReferralBonusesHandler(t *testing.T) {
	handler, m := NewMock(t)
	view := domain.ReferralBonusView{ProductName: "Gold pack", ReferredName: "Sara"}
	view.ID, view.Tier, view.AmountCents = 3, 2, 400
	m.referrals.EXPECT().ListByReferrer(gomock.Any(), int64(1)).Return([]domain.ReferralBonusView{view}, nil)

	rr := httptest.NewRecorder()
	handler.ReferralBonuses(rr, authed(httptest.NewRequest(http.MethodGet, "/api/me/referral-bonuses", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.ReferralBonusesResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Bonuses, 1)
	assert.Equal(t, "Gold pack", resp.Bonuses[0].Order.Product.Name)
	assert.Equal(t, 2, resp.Bonuses[0].Tier)
}

func TestSetWithdrawPasswordHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		prepareMock  func(m mocks)
		expectedCode int
	}{
		{
			name: "First time",
			body: `{"password":"1234","confirmPassword":"1234"}`,
			prepareMock: func(m mocks) {
				m.passwords.EXPECT().SetWithdrawPassword(gomock.Any(), int64(1), "", "1234", "1234").Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Wrong current password",
			body: `{"currentPassword":"0000","password":"1234","confirmPassword":"1234"}`,
			prepareMock: func(m mocks) {
				m.passwords.EXPECT().SetWithdrawPassword(gomock.Any(), int64(1), "0000", "1234", "1234").
					Return(domain.ErrInvalidWithdrawPassword)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "Too short",
			body:         `{"password":"12","confirmPassword":"12"}`,
			prepareMock:  func(m mocks) {},
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := NewMock(t)
			tt.prepareMock(m)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/me/withdraw-password", bytes.NewReader([]byte(tt.body)))
			handler.SetWithdrawPassword(rr, authed(req))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestChangePasswordHandler(t *testing.T) {
	handler, m := NewMock(t)
	m.passwords.EXPECT().ChangePassword(gomock.Any(), int64(1), "old-secret", "new-secret", "new-secret").
		Return(domain.ErrInvalidCredentials)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/me/change-password",
		bytes.NewReader([]byte(`{"currentPassword":"old-secret","newPassword":"new-secret","confirmPassword":"new-secret"}`)))
	handler.ChangePassword(rr, authed(req))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRecipientHandler(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		prepareMock  func(m mocks)
		expectedCode int
	}{
		{
			name: "Found",
			id:   "2",
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().FindRecipient(gomock.Any(), int64(2)).
					Return(&domain.User{ID: 2, Name: "Sara", Email: "sara@example.com"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Unknown",
			id:   "9",
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().FindRecipient(gomock.Any(), int64(9)).Return(nil, domain.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Bad id",
			id:           "x",
			prepareMock:  func(m mocks) {},
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := NewMock(t)
			tt.prepareMock(m)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req := httptest.NewRequest(http.MethodGet, "/api/users/"+tt.id, nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rr := httptest.NewRecorder()
			handler.Recipient(rr, authed(req))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}
