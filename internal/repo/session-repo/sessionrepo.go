package sessionrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
)

// Repository stores refresh sessions and password reset tokens. Only token
// hashes are persisted.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateSession(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, s.ID, s.UserID, s.TokenHash, s.ExpiresAt); err != nil {
		zap.L().Error("can't save session", zap.Int64("userID", s.UserID), zap.Error(err))
		return err
	}
	return nil
}

// TakeSession deletes and returns the live session for tokenHash, so each
// refresh token can be exchanged once.
func (r *Repository) TakeSession(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error) {
	query := `
		DELETE FROM sessions
		WHERE token_hash = $1 AND expires_at > $2
		RETURNING id, user_id, token_hash, expires_at, created_at
	`
	var s domain.Session
	err := r.db.QueryRow(ctx, query, tokenHash, now).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidToken
		}
		zap.L().Error("can't take session", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *Repository) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		zap.L().Error("can't delete session", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) DeleteUserSessions(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		zap.L().Error("can't delete sessions", zap.Int64("userID", userID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		zap.L().Error("can't purge sessions", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) CreateReset(ctx context.Context, reset *domain.PasswordReset) error {
	query := `
		INSERT INTO password_resets (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.Exec(ctx, query, reset.TokenHash, reset.UserID, reset.ExpiresAt); err != nil {
		zap.L().Error("can't save password reset", zap.Int64("userID", reset.UserID), zap.Error(err))
		return err
	}
	return nil
}

// ConsumeReset marks an unexpired reset token used and returns its user.
func (r *Repository) ConsumeReset(ctx context.Context, tokenHash string, now time.Time) (int64, error) {
	query := `
		UPDATE password_resets
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING user_id
	`
	var userID int64
	if err := r.db.QueryRow(ctx, query, tokenHash, now).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrInvalidToken
		}
		zap.L().Error("can't consume password reset", zap.Error(err))
		return 0, err
	}
	return userID, nil
}

func (r *Repository) PurgeResets(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_resets WHERE expires_at <= $1 OR used_at IS NOT NULL`, now)
	if err != nil {
		zap.L().Error("can't purge password resets", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
