package settingsservice

//go:generate mockgen -source=settingsservice.go -destination=mock_settingsservice.go -package=settingsservice

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
)

type SettingsRepo interface {
	Get(ctx context.Context) (*domain.PaymentSettings, error)
	Put(ctx context.Context, settings *domain.PaymentSettings) (*domain.PaymentSettings, error)
}

// PaymentDetails is what a buyer needs to pay for an order.
type PaymentDetails struct {
	Methods  []domain.PaymentMethod
	Settings *domain.PaymentSettings
}

type Service struct {
	settings SettingsRepo
	methods  []domain.PaymentMethod
}

func New(settings SettingsRepo, methods []domain.PaymentMethod) *Service {
	return &Service{
		settings: settings,
		methods:  methods,
	}
}

// Get returns nil when no admin has saved settings yet.
func (s *Service) Get(ctx context.Context) (*domain.PaymentSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get payment settings: %w", err)
	}
	return settings, nil
}

func (s *Service) Put(ctx context.Context, settings domain.PaymentSettings) (*domain.PaymentSettings, error) {
	settings.CommercialBankName = strings.TrimSpace(settings.CommercialBankName)
	settings.CommercialAccountNumber = strings.TrimSpace(settings.CommercialAccountNumber)
	settings.TelebirrPhone = strings.TrimSpace(settings.TelebirrPhone)
	settings.CBEBirrPhone = strings.TrimSpace(settings.CBEBirrPhone)

	saved, err := s.settings.Put(ctx, &settings)
	if err != nil {
		return nil, fmt.Errorf("put payment settings: %w", err)
	}
	zap.L().Info("payment settings updated")
	return saved, nil
}

func (s *Service) PaymentDetails(ctx context.Context) (*PaymentDetails, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	methods := make([]domain.PaymentMethod, len(s.methods))
	copy(methods, s.methods)
	return &PaymentDetails{Methods: methods, Settings: settings}, nil
}
