package accountrepo

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
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

var accountCols = []string{
	"user_id", "balance_cents", "reserved_balance_cents", "points", "referral_code", "referred_by_code",
	"referrer_id", "withdraw_password_hash", "has_first_approved_deposit", "approved_deposit_cents",
	"last_daily_reward_at", "spin_credits_pending", "updated_at",
}

var updatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func accountRow(rows *pgxmock.Rows, userID int64, balance, reserved money.Cents) *pgxmock.Rows {
	return rows.AddRow(userID, balance, reserved, int64(0), "RW1234567", nil,
		nil, nil, false, money.Cents(0), nil, int64(0), updatedAt)
}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`INSERT INTO accounts (user_id, referral_code, referred_by_code, referrer_id)`)
	referrerID := int64(9)
	code := "12345674"

	tests := []struct {
		name        string
		mockSetup   func()
		expectedErr error
	}{
		{
			name: "Created",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1), "RW1234567", &code, &referrerID).
					WillReturnRows(accountRow(pgxmock.NewRows(accountCols), 1, 0, 0))
			},
		},
		{
			name: "Referral code collision",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1), "RW1234567", &code, &referrerID).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			expectedErr: domain.ErrReferralCodeTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			created, err := repo.Create(context.Background(), &domain.Account{
				UserID: 1, ReferralCode: "RW1234567", ReferredByCode: &code, ReferrerID: &referrerID,
			})
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), created.UserID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByUserID(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`FROM accounts WHERE user_id = $1`)

	tests := []struct {
		name      string
		userID    int64
		mockSetup func()
		expectErr bool
		result    *domain.Account
	}{
		{
			name:   "Existing account",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1)).
					WillReturnRows(accountRow(pgxmock.NewRows(accountCols), 1, 5000, 1000))
			},
			result: &domain.Account{
				UserID:               1,
				BalanceCents:         5000,
				ReservedBalanceCents: 1000,
				ReferralCode:         "RW1234567",
				UpdatedAt:            updatedAt,
			},
		},
		{
			name:   "Missing account returns nil",
			userID: 2,
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:   "Database error",
			userID: 3,
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(3)).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByUserID(context.Background(), tt.userID)
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

func TestRepository_LockAccountsSortsIDs(t *testing.T) {
	repo, mock := NewMock(t)

	rows := pgxmock.NewRows(accountCols)
	accountRow(rows, 3, 100, 0)
	accountRow(rows, 9, 200, 0)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = ANY($1) ORDER BY user_id FOR UPDATE`)).
		WithArgs([]int64{3, 9}).
		WillReturnRows(rows)

	accounts, err := repo.LockAccounts(context.Background(), 9, 3, 9)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, money.Cents(100), accounts[3].BalanceCents)
	assert.Equal(t, money.Cents(200), accounts[9].BalanceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateBalances(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE accounts SET balance_cents = $2, reserved_balance_cents = $3`)

	tests := []struct {
		name        string
		mockSetup   func()
		expectedErr error
	}{
		{
			name: "Updated",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(int64(1), money.Cents(900), money.Cents(100)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "No row",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(int64(1), money.Cents(900), money.Cents(100)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectedErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.UpdateBalances(context.Background(), &domain.Account{
				UserID: 1, BalanceCents: 900, ReservedBalanceCents: 100,
			})
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_RecordApprovedDeposit(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`RETURNING NOT prev.has_first_approved_deposit, a.referrer_id`)
	referrer := int64(7)

	tests := []struct {
		name         string
		mockSetup    func()
		wantFirst    bool
		wantReferrer *int64
		expectedErr  error
	}{
		{
			name: "First deposit with referrer",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1), money.Cents(8000), int64(80)).
					WillReturnRows(pgxmock.NewRows([]string{"first", "referrer_id"}).AddRow(true, &referrer))
			},
			wantFirst:    true,
			wantReferrer: &referrer,
		},
		{
			name: "Repeat deposit without referrer",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1), money.Cents(8000), int64(80)).
					WillReturnRows(pgxmock.NewRows([]string{"first", "referrer_id"}).AddRow(false, nil))
			},
		},
		{
			name: "Unknown user",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1), money.Cents(8000), int64(80)).
					WillReturnError(pgx.ErrNoRows)
			},
			expectedErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			first, referrerID, err := repo.RecordApprovedDeposit(context.Background(), 1, 8000, 80)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantReferrer, referrerID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_CompareAndSetLastDaily(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`WHERE user_id = $1 AND last_daily_reward_at IS NOT DISTINCT FROM $2`)

	mock.ExpectExec(query).WithArgs(int64(1), (*time.Time)(nil), now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := repo.CompareAndSetLastDaily(context.Background(), 1, nil, now)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(query).WithArgs(int64(1), (*time.Time)(nil), now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	ok, err = repo.CompareAndSetLastDaily(context.Background(), 1, nil, now)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ConsumeSpinCredit(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`SET spin_credits_pending = spin_credits_pending - 1`)

	mock.ExpectExec(query).WithArgs(int64(4)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(query).WithArgs(int64(4)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(query).WithArgs(int64(4)).WillReturnError(errors.New("database error"))

	ok, err := repo.ConsumeSpinCredit(context.Background(), 4)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeSpinCredit(context.Background(), 4)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.ConsumeSpinCredit(context.Background(), 4)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListReferred(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.referrer_id = $1`)).WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "phone", "role", "is_active", "created_at", "balance_cents", "points"}).
			AddRow(int64(2), "Abebe", "abebe@example.com", "0911000000", domain.RoleUser, true, created, money.Cents(300), int64(80)))

	team, err := repo.ListReferred(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, "Abebe", team[0].Name)
	assert.Equal(t, money.Cents(300), team[0].BalanceCents)
	assert.Equal(t, int64(80), team[0].Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}
