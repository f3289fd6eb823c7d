package rewardservice

//go:generate mockgen -source=rewardservice.go -destination=mock_rewardservice.go -package=rewardservice

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/config"
	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/metrics"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type AccountRepo interface {
	FindByUserID(ctx context.Context, userID int64) (*domain.Account, error)
	CompareAndSetLastDaily(ctx context.Context, userID int64, prev *time.Time, now time.Time) (bool, error)
	ConsumeSpinCredit(ctx context.Context, userID int64) (bool, error)
	AddSpinCredit(ctx context.Context, userID int64) error
}

type Ledger interface {
	Credit(ctx context.Context, e ledgerservice.Entry) (*domain.Activity, error)
}

// Picker chooses one spin reward. weights is either empty or as long as rewards.
type Picker interface {
	Pick(rewards []money.Cents, weights []int64) money.Cents
}

type Level struct {
	ThresholdCents money.Cents
	AmountCents    money.Cents
}

type Settings struct {
	Levels      []Level
	Interval    time.Duration
	SpinRewards []money.Cents
	SpinWeights []int64
}

func SettingsFromConfig(r config.Rewards) Settings {
	s := Settings{Interval: r.DailyInterval, SpinWeights: r.SpinWeights}
	for _, l := range r.DailyLevels {
		s.Levels = append(s.Levels, Level{ThresholdCents: money.Cents(l.ThresholdCents), AmountCents: money.Cents(l.AmountCents)})
	}
	for _, v := range r.SpinRewardsCents {
		s.SpinRewards = append(s.SpinRewards, money.Cents(v))
	}
	return s
}

type DailyStatus struct {
	Eligible             bool
	Level                int
	AmountCents          money.Cents
	ApprovedDepositCents money.Cents
	NextLevelCents       *money.Cents
	LastClaimedAt        *time.Time
	NextClaimAt          *time.Time
}

type SpinStatus struct {
	Eligible     bool
	PendingCount int64
}

type Service struct {
	accounts  AccountRepo
	ledger    Ledger
	txManager pg.TXManager
	picker    Picker
	settings  Settings
	metrics   *metrics.Metrics
	now       func() time.Time
}

func New(accounts AccountRepo, ledger Ledger, txManager pg.TXManager, picker Picker, settings Settings, m *metrics.Metrics) *Service {
	return &Service{
		accounts:  accounts,
		ledger:    ledger,
		txManager: txManager,
		picker:    picker,
		settings:  settings,
		metrics:   m,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// level returns the highest level unlocked by deposits, 1-based, or 0.
func (s *Service) level(deposits money.Cents) (int, Level) {
	for i := len(s.settings.Levels) - 1; i >= 0; i-- {
		if deposits >= s.settings.Levels[i].ThresholdCents {
			return i + 1, s.settings.Levels[i]
		}
	}
	return 0, Level{}
}

func (s *Service) account(ctx context.Context, userID int64) (*domain.Account, error) {
	account, err := s.accounts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrUserNotFound
	}
	return account, nil
}

func (s *Service) DailyStatus(ctx context.Context, userID int64) (*DailyStatus, error) {
	account, err := s.account(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("daily reward status: %w", err)
	}
	now := s.now()
	n, level := s.level(account.ApprovedDepositCents)
	status := &DailyStatus{
		Level:                n,
		AmountCents:          level.AmountCents,
		ApprovedDepositCents: account.ApprovedDepositCents,
		LastClaimedAt:        account.LastDailyRewardAt,
		Eligible:             n > 0 && account.DailyRewardDue(now, s.settings.Interval),
	}
	if n < len(s.settings.Levels) {
		next := s.settings.Levels[n].ThresholdCents
		status.NextLevelCents = &next
	}
	if account.LastDailyRewardAt != nil {
		next := account.LastDailyRewardAt.Add(s.settings.Interval)
		status.NextClaimAt = &next
	}
	return status, nil
}

// ClaimDaily credits the daily reward of the user's current level. Concurrent
// claims race on last_daily_reward_at; only one can move it.
func (s *Service) ClaimDaily(ctx context.Context, userID int64) (*domain.Activity, error) {
	var activity *domain.Activity
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.account(ctx, userID)
		if err != nil {
			return err
		}
		now := s.now()
		n, level := s.level(account.ApprovedDepositCents)
		if n == 0 || !account.DailyRewardDue(now, s.settings.Interval) {
			return domain.ErrNotEligible
		}
		ok, err := s.accounts.CompareAndSetLastDaily(ctx, userID, account.LastDailyRewardAt, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotEligible
		}
		activity, err = s.ledger.Credit(ctx, ledgerservice.Entry{
			UserID: userID,
			Kind:   domain.KindDailyReward,
			Amount: level.AmountCents,
			Meta:   domain.ActivityMeta{Tier: n},
		})
		return err
	})
	s.metrics.ObserveClaim("daily", err)
	if err != nil {
		return nil, fmt.Errorf("claim daily reward: %w", err)
	}
	zap.L().Info("daily reward claimed", zap.Int64("userID", userID), zap.Int64("amountCents", int64(activity.AmountCents)))
	return activity, nil
}

func (s *Service) SpinStatus(ctx context.Context, userID int64) (*SpinStatus, error) {
	account, err := s.account(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("spin status: %w", err)
	}
	return &SpinStatus{
		Eligible:     account.SpinCreditsPending > 0,
		PendingCount: account.SpinCreditsPending,
	}, nil
}

// ClaimSpin consumes one spin credit and credits the amount the server picks.
func (s *Service) ClaimSpin(ctx context.Context, userID int64) (*domain.Activity, error) {
	var activity *domain.Activity
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		ok, err := s.accounts.ConsumeSpinCredit(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNoSpinCredits
		}
		amount := s.picker.Pick(s.settings.SpinRewards, s.settings.SpinWeights)
		activity, err = s.ledger.Credit(ctx, ledgerservice.Entry{
			UserID: userID,
			Kind:   domain.KindSpinReward,
			Amount: amount,
		})
		return err
	})
	s.metrics.ObserveClaim("spin", err)
	if err != nil {
		return nil, fmt.Errorf("claim spin: %w", err)
	}
	zap.L().Info("spin reward claimed", zap.Int64("userID", userID), zap.Int64("amountCents", int64(activity.AmountCents)))
	return activity, nil
}

// GrantSpinCredit gives the user one more spin. Settlement calls it for the
// referrer when a referred buyer's first order is approved.
func (s *Service) GrantSpinCredit(ctx context.Context, userID int64) error {
	if err := s.accounts.AddSpinCredit(ctx, userID); err != nil {
		return fmt.Errorf("grant spin credit: %w", err)
	}
	return nil
}
