package rewards

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/rewardservice"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

func NewMock(t *testing.T) (*RewardHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func authed(r *http.Request) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), 1, domain.RoleUser))
}

func TestDailyStatusHandler(t *testing.T) {
	handler, service := NewMock(t)
	next := money.Cents(110000)
	last := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	service.EXPECT().DailyStatus(gomock.Any(), int64(1)).Return(&rewardservice.DailyStatus{
		Level: 1, AmountCents: 2500, ApprovedDepositCents: 60000, NextLevelCents: &next, LastClaimedAt: &last,
	}, nil)

	rr := httptest.NewRecorder()
	handler.DailyStatus(rr, authed(httptest.NewRequest(http.MethodGet, "/api/me/daily-reward-status", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.DailyRewardStatusDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.Eligible)
	assert.Equal(t, 1, resp.Level)
	assert.Equal(t, next, *resp.NextLevelCents)
}

func TestClaimDailyHandler(t *testing.T) {
	tests := []struct {
		name         string
		prepareMock  func(service *MockService)
		expectedCode int
	}{
		{
			name: "Claimed",
			prepareMock: func(service *MockService) {
				service.EXPECT().ClaimDaily(gomock.Any(), int64(1)).
					Return(&domain.Activity{AmountCents: 2500, Meta: domain.ActivityMeta{Tier: 1}}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Already claimed",
			prepareMock: func(service *MockService) {
				service.EXPECT().ClaimDaily(gomock.Any(), int64(1)).
					Return(nil, fmt.Errorf("claim daily reward: %w", domain.ErrNotEligible))
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Lock contention",
			prepareMock: func(service *MockService) {
				service.EXPECT().ClaimDaily(gomock.Any(), int64(1)).Return(nil, domain.ErrTransientConflict)
			},
			expectedCode: http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.ClaimDaily(rr, authed(httptest.NewRequest(http.MethodPost, "/api/me/claim-daily-reward", nil)))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestClaimSpinHandler(t *testing.T) {
	t.Run("Claimed", func(t *testing.T) {
		handler, service := NewMock(t)
		service.EXPECT().ClaimSpin(gomock.Any(), int64(1)).Return(&domain.Activity{AmountCents: 10000}, nil)

		rr := httptest.NewRecorder()
		handler.ClaimSpin(rr, authed(httptest.NewRequest(http.MethodPost, "/api/me/claim-spin", nil)))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp dto.ClaimSpinResponseDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.True(t, resp.Claimed)
		assert.Equal(t, money.Cents(10000), resp.RewardCents)
	})

	t.Run("No credits", func(t *testing.T) {
		handler, service := NewMock(t)
		service.EXPECT().ClaimSpin(gomock.Any(), int64(1)).Return(nil, domain.ErrNoSpinCredits)

		rr := httptest.NewRecorder()
		handler.ClaimSpin(rr, authed(httptest.NewRequest(http.MethodPost, "/api/me/claim-spin", nil)))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestSpinStatusHandler(t *testing.T) {
	handler, service := NewMock(t)
	service.EXPECT().SpinStatus(gomock.Any(), int64(1)).Return(&rewardservice.SpinStatus{Eligible: true, PendingCount: 2}, nil)

	rr := httptest.NewRecorder()
	handler.SpinStatus(rr, authed(httptest.NewRequest(http.MethodGet, "/api/me/spin-status", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"eligible":true,"pendingCount":2}`, rr.Body.String())
}
