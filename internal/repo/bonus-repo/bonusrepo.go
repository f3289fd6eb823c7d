package bonusrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Insert records a referral bonus. inserted is false when the referred user
// already produced a bonus; the existing row is left untouched.
func (r *Repository) Insert(ctx context.Context, bonus *domain.ReferralBonus) (created *domain.ReferralBonus, inserted bool, err error) {
	query := `
		INSERT INTO referral_bonuses (referrer_id, referred_id, order_id, tier, amount_cents)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (referred_id) DO NOTHING
		RETURNING id, referrer_id, referred_id, order_id, tier, amount_cents, created_at
	`
	var b domain.ReferralBonus
	err = r.db.QueryRow(ctx, query, bonus.ReferrerID, bonus.ReferredID, bonus.OrderID, bonus.Tier, bonus.AmountCents).
		Scan(&b.ID, &b.ReferrerID, &b.ReferredID, &b.OrderID, &b.Tier, &b.AmountCents, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		zap.L().Error("can't save referral bonus", zap.Int64("referrerID", bonus.ReferrerID),
			zap.Int64("referredID", bonus.ReferredID), zap.Error(err))
		return nil, false, err
	}
	return &b, true, nil
}

func (r *Repository) ListByReferrer(ctx context.Context, referrerID int64) ([]domain.ReferralBonusView, error) {
	query := `
		SELECT b.id, b.referrer_id, b.referred_id, b.order_id, b.tier, b.amount_cents, b.created_at,
			u.name, u.email, o.product_name
		FROM referral_bonuses b
		JOIN users u ON u.id = b.referred_id
		JOIN orders o ON o.id = b.order_id
		WHERE b.referrer_id = $1
		ORDER BY b.created_at DESC, b.id DESC
	`
	rows, err := r.db.Query(ctx, query, referrerID)
	if err != nil {
		zap.L().Error("can't list referral bonuses", zap.Int64("userID", referrerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	bonuses := make([]domain.ReferralBonusView, 0)
	for rows.Next() {
		var v domain.ReferralBonusView
		if err := rows.Scan(&v.ID, &v.ReferrerID, &v.ReferredID, &v.OrderID, &v.Tier, &v.AmountCents, &v.CreatedAt,
			&v.ReferredName, &v.ReferredEmail, &v.ProductName); err != nil {
			zap.L().Error("can't scan referral bonus", zap.Error(err))
			return nil, err
		}
		bonuses = append(bonuses, v)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't list referral bonuses", zap.Int64("userID", referrerID), zap.Error(err))
		return nil, err
	}
	return bonuses, nil
}

func (r *Repository) SumByReferrer(ctx context.Context, referrerID int64) (money.Cents, error) {
	var total money.Cents
	err := r.db.QueryRow(ctx, `SELECT COALESCE(sum(amount_cents), 0) FROM referral_bonuses WHERE referrer_id = $1`, referrerID).
		Scan(&total)
	if err != nil {
		zap.L().Error("can't sum referral bonuses", zap.Int64("userID", referrerID), zap.Error(err))
		return 0, err
	}
	return total, nil
}
