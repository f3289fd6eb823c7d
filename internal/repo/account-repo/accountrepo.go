package accountrepo

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

const accountColumns = `user_id, balance_cents, reserved_balance_cents, points, referral_code, referred_by_code,
		referrer_id, withdraw_password_hash, has_first_approved_deposit, approved_deposit_cents,
		last_daily_reward_at, spin_credits_pending, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.UserID, &a.BalanceCents, &a.ReservedBalanceCents, &a.Points, &a.ReferralCode, &a.ReferredByCode,
		&a.ReferrerID, &a.WithdrawPasswordHash, &a.HasFirstApprovedDeposit, &a.ApprovedDepositCents,
		&a.LastDailyRewardAt, &a.SpinCreditsPending, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (user_id, referral_code, referred_by_code, referrer_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + accountColumns
	created, err := scanAccount(r.db.QueryRow(ctx, query,
		account.UserID, account.ReferralCode, account.ReferredByCode, account.ReferrerID))
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrReferralCodeTaken
		}
		zap.L().Error("can't create account", zap.Int64("userID", account.UserID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	account, err := scanAccount(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find account", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *Repository) FindByReferralCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE referral_code = $1`
	account, err := scanAccount(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find account by referral code", zap.Error(err))
		return nil, err
	}
	return account, nil
}

// LockAccounts takes FOR UPDATE locks on the given accounts in ascending
// user id order, so two callers locking the same pair can never deadlock.
// It must run inside a transaction.
func (r *Repository) LockAccounts(ctx context.Context, userIDs ...int64) (map[int64]*domain.Account, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ANY($1) ORDER BY user_id FOR UPDATE`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		zap.L().Error("can't lock accounts", zap.Int64s("userIDs", ids), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	accounts := make(map[int64]*domain.Account, len(ids))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			zap.L().Error("can't scan account", zap.Error(err))
			return nil, err
		}
		accounts[account.UserID] = account
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't lock accounts", zap.Int64s("userIDs", ids), zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

func (r *Repository) UpdateBalances(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET balance_cents = $2, reserved_balance_cents = $3, updated_at = now()
		WHERE user_id = $1
	`
	tag, err := r.db.Exec(ctx, query, account.UserID, account.BalanceCents, account.ReservedBalanceCents)
	if err != nil {
		zap.L().Error("can't update balances", zap.Int64("userID", account.UserID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RecordApprovedDeposit adds an approved order to the buyer's deposit total and
// points. first is true only for the call that flipped the first-deposit flag.
func (r *Repository) RecordApprovedDeposit(ctx context.Context, userID int64, amount money.Cents, points int64) (first bool, referrerID *int64, err error) {
	query := `
		WITH prev AS (
			SELECT user_id, has_first_approved_deposit
			FROM accounts
			WHERE user_id = $1
			FOR UPDATE
		)
		UPDATE accounts a
		SET approved_deposit_cents = a.approved_deposit_cents + $2,
			points = a.points + $3,
			has_first_approved_deposit = TRUE,
			updated_at = now()
		FROM prev
		WHERE a.user_id = prev.user_id
		RETURNING NOT prev.has_first_approved_deposit, a.referrer_id
	`
	err = r.db.QueryRow(ctx, query, userID, amount, points).Scan(&first, &referrerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil, domain.ErrUserNotFound
		}
		zap.L().Error("can't record approved deposit", zap.Int64("userID", userID), zap.Error(err))
		return false, nil, err
	}
	return first, referrerID, nil
}

// CompareAndSetLastDaily moves last_daily_reward_at from prev to now. It
// reports false when another claim changed the timestamp first.
func (r *Repository) CompareAndSetLastDaily(ctx context.Context, userID int64, prev *time.Time, now time.Time) (bool, error) {
	query := `
		UPDATE accounts
		SET last_daily_reward_at = $3, updated_at = now()
		WHERE user_id = $1 AND last_daily_reward_at IS NOT DISTINCT FROM $2
	`
	tag, err := r.db.Exec(ctx, query, userID, prev, now)
	if err != nil {
		zap.L().Error("can't set last daily reward", zap.Int64("userID", userID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) ConsumeSpinCredit(ctx context.Context, userID int64) (bool, error) {
	query := `
		UPDATE accounts
		SET spin_credits_pending = spin_credits_pending - 1, updated_at = now()
		WHERE user_id = $1 AND spin_credits_pending > 0
	`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't consume spin credit", zap.Int64("userID", userID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) AddSpinCredit(ctx context.Context, userID int64) error {
	query := `
		UPDATE accounts
		SET spin_credits_pending = spin_credits_pending + 1, updated_at = now()
		WHERE user_id = $1
	`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't add spin credit", zap.Int64("userID", userID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *Repository) SetWithdrawPassword(ctx context.Context, userID int64, hash string) error {
	query := `
		UPDATE accounts
		SET withdraw_password_hash = $2, updated_at = now()
		WHERE user_id = $1
	`
	tag, err := r.db.Exec(ctx, query, userID, hash)
	if err != nil {
		zap.L().Error("can't set withdraw password", zap.Int64("userID", userID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *Repository) CountReferred(ctx context.Context, referrerID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM accounts WHERE referrer_id = $1`, referrerID).Scan(&count)
	if err != nil {
		zap.L().Error("can't count team", zap.Int64("userID", referrerID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

// ListReferred returns the users directly referred by referrerID, newest first.
func (r *Repository) ListReferred(ctx context.Context, referrerID int64) ([]domain.TeamMember, error) {
	query := `
		SELECT u.id, u.name, u.email, u.phone, u.role, u.is_active, u.created_at, a.balance_cents, a.points
		FROM accounts a
		JOIN users u ON u.id = a.user_id
		WHERE a.referrer_id = $1
		ORDER BY u.created_at DESC, u.id DESC
	`
	rows, err := r.db.Query(ctx, query, referrerID)
	if err != nil {
		zap.L().Error("can't list team", zap.Int64("userID", referrerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var team []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Role, &m.IsActive, &m.CreatedAt,
			&m.BalanceCents, &m.Points); err != nil {
			zap.L().Error("can't scan team member", zap.Error(err))
			return nil, err
		}
		team = append(team, m)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't list team", zap.Int64("userID", referrerID), zap.Error(err))
		return nil, err
	}
	return team, nil
}
