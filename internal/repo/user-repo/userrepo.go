package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
)

const userColumns = `id, name, email, phone, password_hash, role, is_active, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByID(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	created, err := scanUser(repo.db.QueryRow(ctx, query, user.Name, user.Email, user.Phone, user.PasswordHash, user.Role))
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (repo *Repository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	tag, err := repo.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hash)
	if err != nil {
		zap.L().Error("can't update password", zap.Int64("userID", userID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (repo *Repository) SetActive(ctx context.Context, userID int64, active bool) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx,
		`UPDATE users SET is_active = $2 WHERE id = $1 RETURNING `+userColumns, userID, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		zap.L().Error("can't update user", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// List pages through users, newest first.
func (repo *Repository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := repo.db.Query(ctx, query, limit, offset)
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	return collectUsers(rows)
}

// FindByIDs returns the users among ids that exist, in no particular order.
func (repo *Repository) FindByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	rows, err := repo.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		zap.L().Error("can't find users", zap.Error(err))
		return nil, err
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]domain.User, error) {
	defer rows.Close()
	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			zap.L().Error("can't scan user", zap.Error(err))
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (repo *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		zap.L().Error("can't count users", zap.Error(err))
		return 0, err
	}
	return n, nil
}
