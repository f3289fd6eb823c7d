package referralservice

//go:generate mockgen -source=referralservice.go -destination=mock_referralservice.go -package=referralservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/config"
	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type BonusRepo interface {
	Insert(ctx context.Context, bonus *domain.ReferralBonus) (*domain.ReferralBonus, bool, error)
	ListByReferrer(ctx context.Context, referrerID int64) ([]domain.ReferralBonusView, error)
}

type Ledger interface {
	Credit(ctx context.Context, e ledgerservice.Entry) (*domain.Activity, error)
}

// Tiers maps a first approved deposit to a bonus rate in basis points.
type Tiers struct {
	Tier2MinCents money.Cents
	Tier3MinCents money.Cents
	Tier1BPS      int64
	Tier2BPS      int64
	Tier3BPS      int64
}

func TiersFromConfig(r config.Rewards) Tiers {
	return Tiers{
		Tier2MinCents: money.Cents(r.ReferralTier2MinCents),
		Tier3MinCents: money.Cents(r.ReferralTier3MinCents),
		Tier1BPS:      r.ReferralTier1BPS,
		Tier2BPS:      r.ReferralTier2BPS,
		Tier3BPS:      r.ReferralTier3BPS,
	}
}

// Compute returns the tier and bonus for a deposit amount.
func (t Tiers) Compute(amount money.Cents) (tier int, bonus money.Cents, err error) {
	tier, bps := 1, t.Tier1BPS
	switch {
	case amount >= t.Tier3MinCents:
		tier, bps = 3, t.Tier3BPS
	case amount >= t.Tier2MinCents:
		tier, bps = 2, t.Tier2BPS
	}
	bonus, err = amount.ApplyBPS(bps)
	if err != nil {
		return 0, 0, domain.AmountError(err)
	}
	return tier, bonus, nil
}

type Service struct {
	bonuses   BonusRepo
	ledger    Ledger
	txManager pg.TXManager
	tiers     Tiers
}

func New(bonuses BonusRepo, ledger Ledger, txManager pg.TXManager, tiers Tiers) *Service {
	return &Service{
		bonuses:   bonuses,
		ledger:    ledger,
		txManager: txManager,
		tiers:     tiers,
	}
}

// Award pays the referrer a one-time bonus for the buyer's first approved
// order. It returns nil when the buyer already produced a bonus.
func (s *Service) Award(ctx context.Context, referrerID int64, order *domain.Order) (*domain.ReferralBonus, error) {
	tier, amount, err := s.tiers.Compute(order.AmountCents)
	if err != nil {
		return nil, err
	}

	var awarded *domain.ReferralBonus
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		bonus, inserted, err := s.bonuses.Insert(ctx, &domain.ReferralBonus{
			ReferrerID:  referrerID,
			ReferredID:  order.UserID,
			OrderID:     order.ID,
			Tier:        tier,
			AmountCents: amount,
		})
		if err != nil {
			return err
		}
		if !inserted {
			zap.L().Info("referral bonus already awarded",
				zap.Int64("referrerID", referrerID), zap.Int64("referredID", order.UserID))
			return nil
		}
		// A zero bonus is still recorded so it can never be awarded again.
		if amount > 0 {
			referredID, orderID := order.UserID, order.ID
			_, err = s.ledger.Credit(ctx, ledgerservice.Entry{
				UserID: referrerID,
				Kind:   domain.KindReferralBonus,
				Amount: amount,
				Meta: domain.ActivityMeta{
					CounterpartyID: &referredID,
					OrderID:        &orderID,
					ProductName:    order.ProductName,
					Tier:           tier,
				},
			})
			if err != nil {
				return err
			}
		}
		awarded = bonus
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("award referral bonus: %w", err)
	}
	if awarded != nil {
		zap.L().Info("referral bonus awarded", zap.Int64("referrerID", referrerID),
			zap.Int64("orderID", order.ID), zap.Int("tier", tier), zap.Int64("amountCents", int64(amount)))
	}
	return awarded, nil
}

func (s *Service) ListByReferrer(ctx context.Context, referrerID int64) ([]domain.ReferralBonusView, error) {
	bonuses, err := s.bonuses.ListByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("list referral bonuses: %w", err)
	}
	return bonuses, nil
}
