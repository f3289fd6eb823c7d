package withdrawalrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
)

const withdrawalColumns = `id, user_id, amount_cents, method, account_name, account_number, phone, status, created_at, decided_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(&w.ID, &w.UserID, &w.AmountCents, &w.Method, &w.AccountName, &w.AccountNumber,
		&w.Phone, &w.Status, &w.CreatedAt, &w.DecidedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) Create(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error) {
	query := `
		INSERT INTO withdrawals (user_id, amount_cents, method, account_name, account_number, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + withdrawalColumns
	created, err := scanWithdrawal(r.db.QueryRow(ctx, query, withdrawal.UserID, withdrawal.AmountCents, withdrawal.Method,
		withdrawal.AccountName, withdrawal.AccountNumber, withdrawal.Phone, withdrawal.Status))
	if err != nil {
		zap.L().Error("can't save withdrawal", zap.Int64("userID", withdrawal.UserID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) LockByID(ctx context.Context, withdrawalID int64) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1 FOR UPDATE`
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, withdrawalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawalNotFound
		}
		zap.L().Error("can't lock withdrawal", zap.Int64("withdrawalID", withdrawalID), zap.Error(err))
		return nil, err
	}
	return w, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, withdrawalID int64, status domain.WithdrawalStatus, decidedAt time.Time) (*domain.Withdrawal, error) {
	query := `
		UPDATE withdrawals
		SET status = $2, decided_at = $3
		WHERE id = $1
		RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, withdrawalID, status, decidedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawalNotFound
		}
		zap.L().Error("can't update withdrawal", zap.Int64("withdrawalID", withdrawalID), zap.Error(err))
		return nil, err
	}
	return w, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch withdrawals", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	return collect(rows)
}

func (r *Repository) List(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawals
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, string(status))
	if err != nil {
		zap.L().Error("failed to fetch withdrawals", zap.Error(err))
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]domain.Withdrawal, error) {
	defer rows.Close()
	withdrawals := make([]domain.Withdrawal, 0)
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			zap.L().Error("failed to scan withdrawal row", zap.Error(err))
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to read withdrawal rows", zap.Error(err))
		return nil, err
	}
	return withdrawals, nil
}
