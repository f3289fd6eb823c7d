package repo

import (
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	accountrepo "github.com/GlebRadaev/rewardwallet/internal/repo/account-repo"
	activityrepo "github.com/GlebRadaev/rewardwallet/internal/repo/activity-repo"
	bonusrepo "github.com/GlebRadaev/rewardwallet/internal/repo/bonus-repo"
	orderrepo "github.com/GlebRadaev/rewardwallet/internal/repo/order-repo"
	productrepo "github.com/GlebRadaev/rewardwallet/internal/repo/product-repo"
	sessionrepo "github.com/GlebRadaev/rewardwallet/internal/repo/session-repo"
	settingsrepo "github.com/GlebRadaev/rewardwallet/internal/repo/settings-repo"
	userrepo "github.com/GlebRadaev/rewardwallet/internal/repo/user-repo"
	withdrawalrepo "github.com/GlebRadaev/rewardwallet/internal/repo/withdrawal-repo"
)

// Repositories are shared by the services; one repository usually serves
// several narrow service interfaces.
type Repositories struct {
	UserRepo       *userrepo.Repository
	AccountRepo    *accountrepo.Repository
	ActivityRepo   *activityrepo.Repository
	OrderRepo      *orderrepo.Repository
	ProductRepo    *productrepo.Repository
	BonusRepo      *bonusrepo.Repository
	WithdrawalRepo *withdrawalrepo.Repository
	SessionRepo    *sessionrepo.Repository
	SettingsRepo   *settingsrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:       userrepo.New(conn),
		AccountRepo:    accountrepo.New(conn),
		ActivityRepo:   activityrepo.New(conn),
		OrderRepo:      orderrepo.New(conn),
		ProductRepo:    productrepo.New(conn),
		BonusRepo:      bonusrepo.New(conn),
		WithdrawalRepo: withdrawalrepo.New(conn),
		SessionRepo:    sessionrepo.New(conn),
		SettingsRepo:   settingsrepo.New(conn),
	}
}
