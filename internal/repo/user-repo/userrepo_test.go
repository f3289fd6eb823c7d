package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
)

var cols = []string{"id", "name", "email", "phone", "password_hash", "role", "is_active", "created_at"}

var created = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_FindByEmail(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta("FROM users WHERE lower(email) = lower($1)")

	tests := []struct {
		name      string
		email     string
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:  "User found",
			email: "sara@example.com",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("sara@example.com").
					WillReturnRows(pgxmock.NewRows(cols).
						AddRow(int64(1), "Sara", "sara@example.com", "0911", "hash", domain.RoleUser, true, created))
			},
			result: &domain.User{
				ID: 1, Name: "Sara", Email: "sara@example.com", Phone: "0911", PasswordHash: "hash",
				Role: domain.RoleUser, IsActive: true, CreatedAt: created,
			},
		},
		{
			name:  "User not found",
			email: "nobody@example.com",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("nobody@example.com").WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:  "Database error",
			email: "sara@example.com",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("sara@example.com").WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByEmail(context.Background(), tt.email)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	user := &domain.User{Name: "Sara", Email: "sara@example.com", Phone: "0911", PasswordHash: "hash", Role: domain.RoleUser}
	query := regexp.QuoteMeta("INSERT INTO users (name, email, phone, password_hash, role)")

	mock.ExpectQuery(query).WithArgs("Sara", "sara@example.com", "0911", "hash", domain.RoleUser).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(3), "Sara", "sara@example.com", "0911", "hash", domain.RoleUser, true, created))
	result, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ID)

	mock.ExpectQuery(query).WithArgs("Sara", "sara@example.com", "0911", "hash", domain.RoleUser).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = repo.Create(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetActive(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET is_active = $2 WHERE id = $1")).WithArgs(int64(5), false).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.SetActive(context.Background(), 5, false)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Count(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM users`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM users`)).WillReturnError(errors.New("db error"))
	_, err = repo.Count(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByIDs(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ANY($1)`)).WithArgs([]int64{1, 2}).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(2), "Sara", "sara@example.com", "", "hash", domain.RoleUser, true, created))

	users, err := repo.FindByIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Sara", users[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
