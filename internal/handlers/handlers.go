package handlers

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/rewardwallet/docs"
	"github.com/GlebRadaev/rewardwallet/internal/config"
	"github.com/GlebRadaev/rewardwallet/internal/domain"
	accounthandlers "github.com/GlebRadaev/rewardwallet/internal/handlers/account"
	adminhandlers "github.com/GlebRadaev/rewardwallet/internal/handlers/admin"
	authhandlers "github.com/GlebRadaev/rewardwallet/internal/handlers/auth"
	balancehandlers "github.com/GlebRadaev/rewardwallet/internal/handlers/balance"
	ordershandlers "github.com/GlebRadaev/rewardwallet/internal/handlers/orders"
	rewardshandlers "github.com/GlebRadaev/rewardwallet/internal/handlers/rewards"
	"github.com/GlebRadaev/rewardwallet/internal/metrics"
	"github.com/GlebRadaev/rewardwallet/internal/service"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/ratelimit"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	AccountStats(w http.ResponseWriter, r *http.Request)
	Activity(w http.ResponseWriter, r *http.Request)
	Team(w http.ResponseWriter, r *http.Request)
	ReferralBonuses(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	SetWithdrawPassword(w http.ResponseWriter, r *http.Request)
	Recipient(w http.ResponseWriter, r *http.Request)
}

type RewardHandler interface {
	DailyStatus(w http.ResponseWriter, r *http.Request)
	ClaimDaily(w http.ResponseWriter, r *http.Request)
	SpinStatus(w http.ResponseWriter, r *http.Request)
	ClaimSpin(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	GetOrders(w http.ResponseWriter, r *http.Request)
	PaymentDetails(w http.ResponseWriter, r *http.Request)
	PaymentSettings(w http.ResponseWriter, r *http.Request)
	Products(w http.ResponseWriter, r *http.Request)
	Featured(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	Send(w http.ResponseWriter, r *http.Request)
	Sent(w http.ResponseWriter, r *http.Request)
	Received(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
	GetWithdrawals(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	ListOrders(w http.ResponseWriter, r *http.Request)
	UpdateOrderStatus(w http.ResponseWriter, r *http.Request)
	ListWithdrawals(w http.ResponseWriter, r *http.Request)
	DecideWithdrawal(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	Analytics(w http.ResponseWriter, r *http.Request)
	ListProducts(w http.ResponseWriter, r *http.Request)
	CreateProduct(w http.ResponseWriter, r *http.Request)
	UpdateProduct(w http.ResponseWriter, r *http.Request)
	DeleteProduct(w http.ResponseWriter, r *http.Request)
	GetPaymentSettings(w http.ResponseWriter, r *http.Request)
	PutPaymentSettings(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	AccountHandler AccountHandler
	RewardHandler  RewardHandler
	OrderHandler   OrderHandler
	BalanceHandler BalanceHandler
	AdminHandler   AdminHandler

	tokens  auth.TokenValidator
	metrics *metrics.Metrics
	limiter *ratelimit.Limiter
	proxies []netip.Prefix
	timeout time.Duration
}

func New(s *service.Services, cfg *config.Config, m *metrics.Metrics) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService, cfg.CookieSecure),
		AccountHandler: accounthandlers.New(s.AccountService, s.AuthService, s.ReferralService),
		RewardHandler:  rewardshandlers.New(s.RewardService),
		OrderHandler:   ordershandlers.New(s.OrderService, s.ProductService, s.SettingsService),
		BalanceHandler: balancehandlers.New(s.TransferService, s.WithdrawalService),
		AdminHandler: adminhandlers.New(
			s.OrderService,
			s.WithdrawalService,
			s.AccountService,
			s.ProductService,
			s.SettingsService,
		),

		tokens:  s.Tokens,
		metrics: m,
		limiter: ratelimit.New(cfg.AuthRatePerMinute, cfg.AuthRateBurst),
		proxies: cfg.TrustedProxies,
		timeout: cfg.RequestTimeout,
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RequestID,
		ratelimit.TrustedRealIP(h.proxies),
		middleware.Recoverer,
		middleware.Logger,
		h.metrics.Middleware,
	)
	if h.timeout > 0 {
		r.Use(middleware.Timeout(h.timeout))
	}

	r.Get("/healthz", healthz)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	authn := auth.NewMiddleware(h.tokens)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(h.limiter.Middleware)
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
			r.Post("/refresh", h.AuthHandler.Refresh)
			r.Post("/logout", h.AuthHandler.Logout)
			r.Post("/forgot-password", h.AuthHandler.ForgotPassword)
			r.Post("/reset-password", h.AuthHandler.ResetPassword)
		})

		r.Get("/products", h.OrderHandler.Products)
		r.Get("/products/featured", h.OrderHandler.Featured)
		r.Get("/payment-settings", h.OrderHandler.PaymentSettings)

		r.Group(func(r chi.Router) {
			r.Use(authn.Authenticate)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.AccountHandler.Me)
				r.Get("/account-stats", h.AccountHandler.AccountStats)
				r.Get("/activity", h.AccountHandler.Activity)
				r.Get("/team", h.AccountHandler.Team)
				r.Get("/referral-bonuses", h.AccountHandler.ReferralBonuses)
				r.Post("/change-password", h.AccountHandler.ChangePassword)
				r.Post("/withdraw-password", h.AccountHandler.SetWithdrawPassword)

				r.Get("/daily-reward-status", h.RewardHandler.DailyStatus)
				r.Get("/spin-status", h.RewardHandler.SpinStatus)
				r.With(h.limiter.Middleware).Post("/claim-daily-reward", h.RewardHandler.ClaimDaily)
				r.With(h.limiter.Middleware).Post("/claim-spin", h.RewardHandler.ClaimSpin)
			})

			r.Get("/users/{id}", h.AccountHandler.Recipient)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.OrderHandler.CreateOrder)
				r.Get("/mine", h.OrderHandler.GetOrders)
				r.Get("/payment-details", h.OrderHandler.PaymentDetails)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/send", h.BalanceHandler.Send)
				r.Get("/sent", h.BalanceHandler.Sent)
				r.Get("/received", h.BalanceHandler.Received)
			})

			r.Route("/withdrawals", func(r chi.Router) {
				r.Post("/", h.BalanceHandler.Withdraw)
				r.Get("/mine", h.BalanceHandler.GetWithdrawals)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAdmin))

				r.Post("/products", h.AdminHandler.CreateProduct)
				r.Patch("/products/{id}", h.AdminHandler.UpdateProduct)
				r.Delete("/products/{id}", h.AdminHandler.DeleteProduct)

				r.Route("/admin", func(r chi.Router) {
					r.Get("/orders", h.AdminHandler.ListOrders)
					r.Patch("/orders/{id}/status", h.AdminHandler.UpdateOrderStatus)
					r.Get("/withdrawals", h.AdminHandler.ListWithdrawals)
					r.Patch("/withdrawals/{id}", h.AdminHandler.DecideWithdrawal)
					r.Get("/users", h.AdminHandler.ListUsers)
					r.Get("/users/{id}", h.AdminHandler.GetUser)
					r.Patch("/users/{id}", h.AdminHandler.UpdateUser)
					r.Get("/analytics", h.AdminHandler.Analytics)
					r.Get("/products", h.AdminHandler.ListProducts)
					r.Get("/payment-settings", h.AdminHandler.GetPaymentSettings)
					r.Put("/payment-settings", h.AdminHandler.PutPaymentSettings)
				})
			})
		})
	})

	return r
}
