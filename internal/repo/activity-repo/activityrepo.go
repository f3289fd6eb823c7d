package activityrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
)

const activityColumns = `id, user_id, kind, direction, amount_cents, balance_after_cents, reserved_after_cents, meta, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		a    domain.Activity
		meta []byte
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Kind, &a.Direction, &a.AmountCents,
		&a.BalanceAfterCents, &a.ReservedAfterCents, &meta, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &a.Meta); err != nil {
			return nil, fmt.Errorf("decode activity %d meta: %w", a.ID, err)
		}
	}
	return &a, nil
}

// Append writes one ledger record. Activities are never updated or deleted.
func (r *Repository) Append(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	meta, err := json.Marshal(activity.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode activity meta: %w", err)
	}
	query := `
		INSERT INTO activities (user_id, kind, direction, amount_cents, balance_after_cents, reserved_after_cents, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + activityColumns
	created, err := scanActivity(r.db.QueryRow(ctx, query,
		activity.UserID, activity.Kind, activity.Direction, activity.AmountCents,
		activity.BalanceAfterCents, activity.ReservedAfterCents, meta))
	if err != nil {
		zap.L().Error("can't append activity", zap.Int64("userID", activity.UserID),
			zap.String("kind", string(activity.Kind)), zap.Error(err))
		return nil, err
	}
	return created, nil
}

// ListByUser returns the newest activities first. An empty kinds list means all kinds.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit int, kinds ...domain.ActivityKind) ([]domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE user_id = $1 AND (cardinality($2::text[]) = 0 OR kind = ANY($2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	rows, err := r.db.Query(ctx, query, userID, names, limit)
	if err != nil {
		zap.L().Error("can't list activities", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			zap.L().Error("can't scan activity", zap.Error(err))
			return nil, err
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't list activities", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	return activities, nil
}
