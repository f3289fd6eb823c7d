package service

import (
	"github.com/GlebRadaev/rewardwallet/internal/config"
	"github.com/GlebRadaev/rewardwallet/internal/metrics"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/internal/repo"
	"github.com/GlebRadaev/rewardwallet/internal/service/accountservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/authservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/orderservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/productservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/referralservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/rewardservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/settingsservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/transferservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/withdrawalservice"
	pkgauth "github.com/GlebRadaev/rewardwallet/pkg/auth"
)

type Services struct {
	AuthService       *authservice.Service
	AccountService    *accountservice.Service
	LedgerService     *ledgerservice.Service
	OrderService      *orderservice.Service
	ProductService    *productservice.Service
	ReferralService   *referralservice.Service
	RewardService     *rewardservice.Service
	SettingsService   *settingsservice.Service
	TransferService   *transferservice.Service
	WithdrawalService *withdrawalservice.Service

	Tokens *pkgauth.JWTService
}

func New(cfg *config.Config, repo *repo.Repositories, txManager pg.TXManager, m *metrics.Metrics) *Services {
	hashService := pkgauth.NewHashService()
	jwtService := pkgauth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)

	ledgerService := ledgerservice.New(repo.AccountRepo, repo.ActivityRepo, txManager, m)
	referralService := referralservice.New(repo.BonusRepo, ledgerService, txManager, referralservice.TiersFromConfig(cfg.Rewards))
	rewardService := rewardservice.New(
		repo.AccountRepo,
		ledgerService,
		txManager,
		rewardservice.NewWeightedPicker(),
		rewardservice.SettingsFromConfig(cfg.Rewards),
		m,
	)
	orderService := orderservice.New(
		repo.OrderRepo,
		repo.ProductRepo,
		repo.AccountRepo,
		ledgerService,
		referralService,
		rewardService,
		txManager,
		orderservice.SettingsFromConfig(cfg.Rewards),
	)
	authService := authservice.New(
		repo.UserRepo,
		repo.AccountRepo,
		repo.SessionRepo,
		txManager,
		hashService,
		jwtService,
		authservice.Settings{
			RefreshTTL:        cfg.RefreshTokenTTL,
			ResetTTL:          cfg.ResetTokenTTL,
			ExposeResetTokens: cfg.ExposeResetTokens,
		},
	)

	return &Services{
		AuthService:       authService,
		AccountService:    accountservice.New(repo.UserRepo, repo.AccountRepo, repo.OrderRepo, repo.BonusRepo, repo.ActivityRepo),
		LedgerService:     ledgerService,
		OrderService:      orderService,
		ProductService:    productservice.New(repo.ProductRepo, productservice.DefaultFeaturedCount),
		ReferralService:   referralService,
		RewardService:     rewardService,
		SettingsService:   settingsservice.New(repo.SettingsRepo, orderService.PaymentMethods()),
		TransferService:   transferservice.New(repo.UserRepo, repo.AccountRepo, repo.ActivityRepo, ledgerService, hashService),
		WithdrawalService: withdrawalservice.New(repo.WithdrawalRepo, repo.AccountRepo, ledgerService, hashService, txManager),
		Tokens:            jwtService,
	}
}
