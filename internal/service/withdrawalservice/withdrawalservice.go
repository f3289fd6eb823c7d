package withdrawalservice

//go:generate mockgen -source=withdrawalservice.go -destination=mock_withdrawalservice.go -package=withdrawalservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type WithdrawalRepo interface {
	Create(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error)
	LockByID(ctx context.Context, withdrawalID int64) (*domain.Withdrawal, error)
	UpdateStatus(ctx context.Context, withdrawalID int64, status domain.WithdrawalStatus, decidedAt time.Time) (*domain.Withdrawal, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Withdrawal, error)
	List(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error)
}

type AccountRepo interface {
	FindByUserID(ctx context.Context, userID int64) (*domain.Account, error)
}

type Ledger interface {
	Reserve(ctx context.Context, e ledgerservice.Entry) (*domain.Activity, error)
	Release(ctx context.Context, e ledgerservice.Entry) (*domain.Activity, error)
	Settle(ctx context.Context, e ledgerservice.Entry) (*domain.Activity, error)
}

type Hasher interface {
	ComparePassword(hashedPassword string, password string) bool
}

type Service struct {
	withdrawals WithdrawalRepo
	accounts    AccountRepo
	ledger      Ledger
	hasher      Hasher
	txManager   pg.TXManager
	now         func() time.Time
}

func New(withdrawals WithdrawalRepo, accounts AccountRepo, ledger Ledger, hasher Hasher, txManager pg.TXManager) *Service {
	return &Service{
		withdrawals: withdrawals,
		accounts:    accounts,
		ledger:      ledger,
		hasher:      hasher,
		txManager:   txManager,
		now:         time.Now,
	}
}

// validDestination reports whether dest carries what method pays out to.
func validDestination(method domain.PaymentMethod, dest domain.Destination) bool {
	switch method {
	case domain.PaymentCommercialBank:
		return strings.TrimSpace(dest.AccountName) != "" && strings.TrimSpace(dest.AccountNumber) != ""
	case domain.PaymentTelebirr, domain.PaymentCBEBirr:
		return strings.TrimSpace(dest.Phone) != ""
	}
	return false
}

// Request holds amount on the user's account and files a PENDING withdrawal.
func (s *Service) Request(
	ctx context.Context,
	userID int64,
	amount money.Cents,
	method domain.PaymentMethod,
	dest domain.Destination,
	withdrawPassword string,
) (*domain.Withdrawal, error) {
	if err := amount.Positive(); err != nil {
		return nil, domain.AmountError(err)
	}
	if !validDestination(method, dest) {
		return nil, domain.ErrInvalidWithdrawMethod
	}

	account, err := s.accounts.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("can't find account", zap.Error(err))
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}
	if account == nil {
		return nil, domain.ErrUserNotFound
	}
	if !account.HasWithdrawPassword() {
		return nil, domain.ErrWithdrawPasswordNotSet
	}
	if !s.hasher.ComparePassword(*account.WithdrawPasswordHash, withdrawPassword) {
		zap.L().Info("invalid withdraw password on withdrawal", zap.Int64("userID", userID))
		return nil, domain.ErrInvalidWithdrawPassword
	}

	var created *domain.Withdrawal
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		created, err = s.withdrawals.Create(ctx, &domain.Withdrawal{
			UserID:        userID,
			AmountCents:   amount,
			Method:        method,
			AccountName:   dest.AccountName,
			AccountNumber: dest.AccountNumber,
			Phone:         dest.Phone,
			Status:        domain.WithdrawalPending,
		})
		if err != nil {
			return err
		}
		_, err = s.ledger.Reserve(ctx, entry(created, domain.WithdrawalPending))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}
	zap.L().Info("withdrawal requested", zap.Int64("withdrawalID", created.ID), zap.Int64("userID", userID),
		zap.Int64("amountCents", int64(amount)))
	return created, nil
}

// Decide approves or rejects a pending withdrawal. Approval pays out the
// reserved amount; rejection returns it to the available balance.
func (s *Service) Decide(ctx context.Context, withdrawalID int64, status domain.WithdrawalStatus) (*domain.Withdrawal, error) {
	if status != domain.WithdrawalApproved && status != domain.WithdrawalRejected {
		return nil, domain.ErrInvalidStatusTransition
	}

	var decided *domain.Withdrawal
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		withdrawal, err := s.withdrawals.LockByID(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if withdrawal.Status != domain.WithdrawalPending {
			return domain.ErrInvalidStatusTransition
		}
		if status == domain.WithdrawalApproved {
			_, err = s.ledger.Settle(ctx, entry(withdrawal, status))
		} else {
			_, err = s.ledger.Release(ctx, entry(withdrawal, status))
		}
		if err != nil {
			return err
		}
		decided, err = s.withdrawals.UpdateStatus(ctx, withdrawalID, status, s.now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("decide withdrawal: %w", err)
	}
	zap.L().Info("withdrawal decided", zap.Int64("withdrawalID", withdrawalID), zap.String("status", string(status)))
	return decided, nil
}

func (s *Service) Mine(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawals.ListByUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get withdrawals", zap.Error(err))
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	return withdrawals, nil
}

func (s *Service) List(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawals.List(ctx, status)
	if err != nil {
		zap.L().Error("failed to list withdrawals", zap.Error(err))
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	return withdrawals, nil
}

func entry(w *domain.Withdrawal, status domain.WithdrawalStatus) ledgerservice.Entry {
	id := w.ID
	return ledgerservice.Entry{
		UserID: w.UserID,
		Kind:   domain.KindWithdrawal,
		Amount: w.AmountCents,
		Meta:   domain.ActivityMeta{WithdrawalID: &id, Status: string(status)},
	}
}
