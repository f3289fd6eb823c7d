package transferservice

//go:generate mockgen -source=transferservice.go -destination=mock_transferservice.go -package=transferservice

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

const historyLimit = 100

type UserRepo interface {
	FindByID(ctx context.Context, userID int64) (*domain.User, error)
}

type AccountRepo interface {
	FindByUserID(ctx context.Context, userID int64) (*domain.Account, error)
}

type ActivityRepo interface {
	ListByUser(ctx context.Context, userID int64, limit int, kinds ...domain.ActivityKind) ([]domain.Activity, error)
}

type Ledger interface {
	Transfer(ctx context.Context, t ledgerservice.Transfer) (*ledgerservice.TransferResult, error)
}

type Hasher interface {
	ComparePassword(hashedPassword string, password string) bool
}

// Counterparty is the other side of a transfer as recorded at the time.
type Counterparty struct {
	ID    int64
	Name  string
	Email string
}

// Record is a sent or received transfer taken from the activity log.
type Record struct {
	ID           int64
	AmountCents  money.Cents
	Kind         domain.ActivityKind
	Counterparty Counterparty
	CreatedAt    time.Time
}

type Service struct {
	users      UserRepo
	accounts   AccountRepo
	activities ActivityRepo
	ledger     Ledger
	hasher     Hasher
}

func New(users UserRepo, accounts AccountRepo, activities ActivityRepo, ledger Ledger, hasher Hasher) *Service {
	return &Service{
		users:      users,
		accounts:   accounts,
		activities: activities,
		ledger:     ledger,
		hasher:     hasher,
	}
}

// Send moves amount from one user to another after checking the sender's
// withdraw password.
func (s *Service) Send(ctx context.Context, fromID, toID int64, amount money.Cents, withdrawPassword string) (*Record, error) {
	if fromID == toID {
		return nil, domain.ErrSelfTransferNotAllowed
	}
	if err := amount.Positive(); err != nil {
		return nil, domain.AmountError(err)
	}

	recipient, err := s.users.FindByID(ctx, toID)
	if err != nil {
		zap.L().Error("can't find recipient", zap.Error(err))
		return nil, fmt.Errorf("send: %w", err)
	}
	if recipient == nil || !recipient.IsActive {
		return nil, domain.ErrUserNotFound
	}
	sender, err := s.users.FindByID(ctx, fromID)
	if err != nil {
		zap.L().Error("can't find sender", zap.Error(err))
		return nil, fmt.Errorf("send: %w", err)
	}
	if sender == nil {
		return nil, domain.ErrUserNotFound
	}

	account, err := s.accounts.FindByUserID(ctx, fromID)
	if err != nil {
		zap.L().Error("can't find sender account", zap.Error(err))
		return nil, fmt.Errorf("send: %w", err)
	}
	if account == nil {
		return nil, domain.ErrUserNotFound
	}
	if !account.HasWithdrawPassword() {
		return nil, domain.ErrWithdrawPasswordNotSet
	}
	if !s.hasher.ComparePassword(*account.WithdrawPasswordHash, withdrawPassword) {
		zap.L().Info("invalid withdraw password on transfer", zap.Int64("userID", fromID))
		return nil, domain.ErrInvalidWithdrawPassword
	}

	result, err := s.ledger.Transfer(ctx, ledgerservice.Transfer{
		FromID:    sender.ID,
		FromName:  sender.Name,
		FromEmail: sender.Email,
		ToID:      recipient.ID,
		ToName:    recipient.Name,
		ToEmail:   recipient.Email,
		Amount:    amount,
	})
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	zap.L().Info("transfer sent", zap.Int64("from", fromID), zap.Int64("to", toID), zap.Int64("amountCents", int64(amount)))
	record := toRecord(*result.Sent)
	return &record, nil
}

func (s *Service) Sent(ctx context.Context, userID int64) ([]Record, error) {
	return s.history(ctx, userID, domain.KindSend)
}

func (s *Service) Received(ctx context.Context, userID int64) ([]Record, error) {
	return s.history(ctx, userID, domain.KindReceive)
}

func (s *Service) history(ctx context.Context, userID int64, kind domain.ActivityKind) ([]Record, error) {
	activities, err := s.activities.ListByUser(ctx, userID, historyLimit, kind)
	if err != nil {
		zap.L().Error("can't list transfers", zap.Error(err))
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	records := make([]Record, 0, len(activities))
	for _, a := range activities {
		records = append(records, toRecord(a))
	}
	return records, nil
}

func toRecord(a domain.Activity) Record {
	r := Record{
		ID:          a.ID,
		AmountCents: a.AmountCents,
		Kind:        a.Kind,
		CreatedAt:   a.CreatedAt,
		Counterparty: Counterparty{
			Name:  a.Meta.CounterpartyName,
			Email: a.Meta.CounterpartyEmail,
		},
	}
	if a.Meta.CounterpartyID != nil {
		r.Counterparty.ID = *a.Meta.CounterpartyID
	}
	return r
}
