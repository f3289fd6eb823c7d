package settingsrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
)

const settingsColumns = `commercial_bank_name, commercial_account_number, telebirr_phone, cbe_birr_phone, updated_at`

// Repository keeps the single row of payment settings.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanSettings(row pgx.Row) (*domain.PaymentSettings, error) {
	var s domain.PaymentSettings
	err := row.Scan(&s.CommercialBankName, &s.CommercialAccountNumber, &s.TelebirrPhone, &s.CBEBirrPhone, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns nil, nil until an admin saves the settings for the first time.
func (r *Repository) Get(ctx context.Context) (*domain.PaymentSettings, error) {
	settings, err := scanSettings(r.db.QueryRow(ctx, `SELECT `+settingsColumns+` FROM payment_settings WHERE id = 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get payment settings", zap.Error(err))
		return nil, err
	}
	return settings, nil
}

func (r *Repository) Put(ctx context.Context, settings *domain.PaymentSettings) (*domain.PaymentSettings, error) {
	query := `
		INSERT INTO payment_settings (id, commercial_bank_name, commercial_account_number, telebirr_phone, cbe_birr_phone)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET commercial_bank_name = EXCLUDED.commercial_bank_name,
		    commercial_account_number = EXCLUDED.commercial_account_number,
		    telebirr_phone = EXCLUDED.telebirr_phone,
		    cbe_birr_phone = EXCLUDED.cbe_birr_phone,
		    updated_at = now()
		RETURNING ` + settingsColumns
	saved, err := scanSettings(r.db.QueryRow(ctx, query,
		settings.CommercialBankName, settings.CommercialAccountNumber, settings.TelebirrPhone, settings.CBEBirrPhone))
	if err != nil {
		zap.L().Error("can't save payment settings", zap.Error(err))
		return nil, err
	}
	return saved, nil
}
