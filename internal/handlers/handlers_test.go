package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardwallet/internal/config"
	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/metrics"
	"github.com/GlebRadaev/rewardwallet/internal/service"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/ratelimit"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{AuthRatePerMinute: 30, AuthRateBurst: 5, RequestTimeout: time.Second}

	h := New(&service.Services{}, cfg, metrics.New())
	assert.NotNil(t, h, "Handlers should not be nil")
	assert.NotNil(t, h.AdminHandler)
	assert.NotNil(t, h.limiter)
}

func newRouter(t *testing.T, limiter *ratelimit.Limiter, proxies ...netip.Prefix) (http.Handler, *auth.JWTService) {
	ctrl := gomock.NewController(t)

	authHandler := NewMockAuthHandler(ctrl)
	accountHandler := NewMockAccountHandler(ctrl)
	rewardHandler := NewMockRewardHandler(ctrl)
	orderHandler := NewMockOrderHandler(ctrl)
	balanceHandler := NewMockBalanceHandler(ctrl)
	adminHandler := NewMockAdminHandler(ctrl)

	authHandler.EXPECT().Register(gomock.Any(), gomock.Any()).AnyTimes()
	authHandler.EXPECT().Login(gomock.Any(), gomock.Any()).AnyTimes()
	authHandler.EXPECT().Refresh(gomock.Any(), gomock.Any()).AnyTimes()
	authHandler.EXPECT().Logout(gomock.Any(), gomock.Any()).AnyTimes()
	authHandler.EXPECT().ForgotPassword(gomock.Any(), gomock.Any()).AnyTimes()
	authHandler.EXPECT().ResetPassword(gomock.Any(), gomock.Any()).AnyTimes()
	accountHandler.EXPECT().Me(gomock.Any(), gomock.Any()).AnyTimes()
	accountHandler.EXPECT().AccountStats(gomock.Any(), gomock.Any()).AnyTimes()
	accountHandler.EXPECT().Activity(gomock.Any(), gomock.Any()).AnyTimes()
	accountHandler.EXPECT().Team(gomock.Any(), gomock.Any()).AnyTimes()
	accountHandler.EXPECT().ReferralBonuses(gomock.Any(), gomock.Any()).AnyTimes()
	accountHandler.EXPECT().ChangePassword(gomock.Any(), gomock.Any()).AnyTimes()
	accountHandler.EXPECT().SetWithdrawPassword(gomock.Any(), gomock.Any()).AnyTimes()
	accountHandler.EXPECT().Recipient(gomock.Any(), gomock.Any()).AnyTimes()
	rewardHandler.EXPECT().DailyStatus(gomock.Any(), gomock.Any()).AnyTimes()
	rewardHandler.EXPECT().ClaimDaily(gomock.Any(), gomock.Any()).AnyTimes()
	rewardHandler.EXPECT().SpinStatus(gomock.Any(), gomock.Any()).AnyTimes()
	rewardHandler.EXPECT().ClaimSpin(gomock.Any(), gomock.Any()).AnyTimes()
	orderHandler.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).AnyTimes()
	orderHandler.EXPECT().GetOrders(gomock.Any(), gomock.Any()).AnyTimes()
	orderHandler.EXPECT().PaymentDetails(gomock.Any(), gomock.Any()).AnyTimes()
	orderHandler.EXPECT().PaymentSettings(gomock.Any(), gomock.Any()).AnyTimes()
	orderHandler.EXPECT().Products(gomock.Any(), gomock.Any()).AnyTimes()
	orderHandler.EXPECT().Featured(gomock.Any(), gomock.Any()).AnyTimes()
	balanceHandler.EXPECT().Send(gomock.Any(), gomock.Any()).AnyTimes()
	balanceHandler.EXPECT().Sent(gomock.Any(), gomock.Any()).AnyTimes()
	balanceHandler.EXPECT().Received(gomock.Any(), gomock.Any()).AnyTimes()
	balanceHandler.EXPECT().Withdraw(gomock.Any(), gomock.Any()).AnyTimes()
	balanceHandler.EXPECT().GetWithdrawals(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().ListOrders(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().ListWithdrawals(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().DecideWithdrawal(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().ListUsers(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().GetUser(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().Analytics(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().ListProducts(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().DeleteProduct(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().GetPaymentSettings(gomock.Any(), gomock.Any()).AnyTimes()
	adminHandler.EXPECT().PutPaymentSettings(gomock.Any(), gomock.Any()).AnyTimes()

	tokens := auth.NewJWTService("test-secret", time.Hour)
	h := &Handlers{
		AuthHandler:    authHandler,
		AccountHandler: accountHandler,
		RewardHandler:  rewardHandler,
		OrderHandler:   orderHandler,
		BalanceHandler: balanceHandler,
		AdminHandler:   adminHandler,
		tokens:         tokens,
		metrics:        metrics.New(),
		limiter:        limiter,
		proxies:        proxies,
		timeout:        time.Second,
	}

	router := chi.NewRouter()
	h.InitRoutes(router)
	return router, tokens
}

func TestInitRoutes(t *testing.T) {
	router, tokens := newRouter(t, ratelimit.New(6000, 1000))

	userToken, err := tokens.GenerateJWT(1, string(domain.RoleUser), time.Now())
	require.NoError(t, err)
	adminToken, err := tokens.GenerateJWT(2, string(domain.RoleAdmin), time.Now())
	require.NoError(t, err)

	tests := []struct {
		method string
		url    string
		token  string
		status int
	}{
		{"GET", "/healthz", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"POST", "/api/auth/register", "", http.StatusOK},
		{"POST", "/api/auth/login", "", http.StatusOK},
		{"POST", "/api/auth/refresh", "", http.StatusOK},
		{"POST", "/api/auth/logout", "", http.StatusOK},
		{"POST", "/api/auth/forgot-password", "", http.StatusOK},
		{"POST", "/api/auth/reset-password", "", http.StatusOK},
		{"GET", "/api/products", "", http.StatusOK},
		{"GET", "/api/products/featured", "", http.StatusOK},
		{"GET", "/api/payment-settings", "", http.StatusOK},

		{"GET", "/api/me", "", http.StatusUnauthorized},
		{"POST", "/api/me/claim-spin", "", http.StatusUnauthorized},
		{"POST", "/api/orders", "", http.StatusUnauthorized},
		{"POST", "/api/transactions/send", "", http.StatusUnauthorized},
		{"GET", "/api/withdrawals/mine", "", http.StatusUnauthorized},
		{"GET", "/api/admin/orders", "", http.StatusUnauthorized},
		{"GET", "/api/me", "garbage", http.StatusUnauthorized},

		{"GET", "/api/me", userToken, http.StatusOK},
		{"GET", "/api/me/account-stats", userToken, http.StatusOK},
		{"GET", "/api/me/activity", userToken, http.StatusOK},
		{"GET", "/api/me/team", userToken, http.StatusOK},
		{"GET", "/api/me/referral-bonuses", userToken, http.StatusOK},
		{"POST", "/api/me/change-password", userToken, http.StatusOK},
		{"POST", "/api/me/withdraw-password", userToken, http.StatusOK},
		{"GET", "/api/me/daily-reward-status", userToken, http.StatusOK},
		{"POST", "/api/me/claim-daily-reward", userToken, http.StatusOK},
		{"GET", "/api/me/spin-status", userToken, http.StatusOK},
		{"POST", "/api/me/claim-spin", userToken, http.StatusOK},
		{"GET", "/api/users/5", userToken, http.StatusOK},
		{"POST", "/api/orders", userToken, http.StatusOK},
		{"GET", "/api/orders/mine", userToken, http.StatusOK},
		{"GET", "/api/orders/payment-details", userToken, http.StatusOK},
		{"POST", "/api/transactions/send", userToken, http.StatusOK},
		{"GET", "/api/transactions/sent", userToken, http.StatusOK},
		{"GET", "/api/transactions/received", userToken, http.StatusOK},
		{"POST", "/api/withdrawals", userToken, http.StatusOK},
		{"GET", "/api/withdrawals/mine", userToken, http.StatusOK},

		{"GET", "/api/admin/orders", userToken, http.StatusForbidden},
		{"POST", "/api/products", userToken, http.StatusForbidden},
		{"DELETE", "/api/products/3", userToken, http.StatusForbidden},

		{"GET", "/api/admin/orders", adminToken, http.StatusOK},
		{"PATCH", "/api/admin/orders/3/status", adminToken, http.StatusOK},
		{"GET", "/api/admin/withdrawals", adminToken, http.StatusOK},
		{"PATCH", "/api/admin/withdrawals/3", adminToken, http.StatusOK},
		{"GET", "/api/admin/users", adminToken, http.StatusOK},
		{"GET", "/api/admin/users/3", adminToken, http.StatusOK},
		{"PATCH", "/api/admin/users/3", adminToken, http.StatusOK},
		{"GET", "/api/admin/analytics", adminToken, http.StatusOK},
		{"GET", "/api/admin/products", adminToken, http.StatusOK},
		{"GET", "/api/admin/payment-settings", adminToken, http.StatusOK},
		{"PUT", "/api/admin/payment-settings", adminToken, http.StatusOK},
		{"POST", "/api/products", adminToken, http.StatusOK},
		{"PATCH", "/api/products/3", adminToken, http.StatusOK},
		{"DELETE", "/api/products/3", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestInitRoutes_RateLimitsAuth(t *testing.T) {
	router, _ := newRouter(t, ratelimit.New(1, 2))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestInitRoutes_ForwardedForOnlyFromTrustedProxy(t *testing.T) {
	tests := []struct {
		name    string
		proxies []netip.Prefix
		want    []int
	}{
		{
			name: "Rotating header from a direct client",
			want: []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:    "Rotating header from a trusted proxy",
			proxies: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")},
			want:    []int{http.StatusOK, http.StatusOK, http.StatusOK},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(t, ratelimit.New(1, 2), tt.proxies...)

			codes := make([]int, 0, 3)
			for _, ip := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
				req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
				req.RemoteAddr = "10.0.0.1:5000"
				req.Header.Set("X-Forwarded-For", ip)
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)
				codes = append(codes, rec.Code)
			}

			assert.Equal(t, tt.want, codes)
		})
	}
}
