// Package ledgerservice is the only writer of account balances. Every
// operation locks the affected accounts, applies the mutation and appends
// exactly one activity per account inside a single transaction.
package ledgerservice

//go:generate mockgen -source=ledgerservice.go -destination=mock_ledgerservice.go -package=ledgerservice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/metrics"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type AccountRepo interface {
	LockAccounts(ctx context.Context, userIDs ...int64) (map[int64]*domain.Account, error)
	UpdateBalances(ctx context.Context, account *domain.Account) error
}

type ActivityRepo interface {
	Append(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
}

// Entry is a single-account ledger movement.
type Entry struct {
	UserID int64
	Kind   domain.ActivityKind
	Amount money.Cents
	Meta   domain.ActivityMeta
}

type Transfer struct {
	FromID    int64
	FromName  string
	FromEmail string
	ToID      int64
	ToName    string
	ToEmail   string
	Amount    money.Cents
}

type TransferResult struct {
	Sent     *domain.Activity
	Received *domain.Activity
}

type Service struct {
	accounts   AccountRepo
	activities ActivityRepo
	txManager  pg.TXManager
	metrics    *metrics.Metrics
}

func New(accounts AccountRepo, activities ActivityRepo, txManager pg.TXManager, m *metrics.Metrics) *Service {
	return &Service{
		accounts:   accounts,
		activities: activities,
		txManager:  txManager,
		metrics:    m,
	}
}

type mutation func(a *domain.Account, amount money.Cents) error

func (s *Service) Credit(ctx context.Context, e Entry) (*domain.Activity, error) {
	return s.apply(ctx, "credit", e, domain.DirectionIn, (*domain.Account).Credit)
}

func (s *Service) Debit(ctx context.Context, e Entry) (*domain.Activity, error) {
	return s.apply(ctx, "debit", e, domain.DirectionOut, (*domain.Account).Debit)
}

// Reserve moves amount from available to reserved without changing the balance.
func (s *Service) Reserve(ctx context.Context, e Entry) (*domain.Activity, error) {
	return s.apply(ctx, "reserve", e, domain.DirectionHold, (*domain.Account).Reserve)
}

func (s *Service) Release(ctx context.Context, e Entry) (*domain.Activity, error) {
	return s.apply(ctx, "release", e, domain.DirectionRelease, (*domain.Account).Release)
}

// Settle pays out a reservation, lowering balance and reserved together.
func (s *Service) Settle(ctx context.Context, e Entry) (*domain.Activity, error) {
	return s.apply(ctx, "settle", e, domain.DirectionSettle, (*domain.Account).Settle)
}

// Record appends an informational activity that leaves balances unchanged.
func (s *Service) Record(ctx context.Context, e Entry) (*domain.Activity, error) {
	return s.apply(ctx, "record", e, domain.DirectionNone, func(_ *domain.Account, amount money.Cents) error {
		return domain.AmountError(amount.Positive())
	})
}

func (s *Service) apply(ctx context.Context, op string, e Entry, dir domain.Direction, mutate mutation) (*domain.Activity, error) {
	if err := e.Amount.Positive(); err != nil {
		err = domain.AmountError(err)
		s.metrics.ObserveLedger(op, e.Kind, e.Amount, err)
		return nil, err
	}

	var activity *domain.Activity
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.accounts.LockAccounts(ctx, e.UserID)
		if err != nil {
			return err
		}
		account, ok := locked[e.UserID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if err := mutate(account, e.Amount); err != nil {
			return err
		}
		if dir != domain.DirectionNone {
			if err := s.accounts.UpdateBalances(ctx, account); err != nil {
				return err
			}
		}
		activity, err = s.activities.Append(ctx, newActivity(account, e.Kind, dir, e.Amount, e.Meta))
		return err
	})
	s.metrics.ObserveLedger(op, e.Kind, e.Amount, err)
	if err != nil {
		logUnexpected("ledger "+op+" failed", err, zap.Int64("userID", e.UserID), zap.String("kind", string(e.Kind)))
		return nil, fmt.Errorf("ledger %s: %w", op, err)
	}
	return activity, nil
}

// Transfer debits the sender and credits the recipient atomically. Both
// accounts are locked in ascending id order regardless of direction.
func (s *Service) Transfer(ctx context.Context, t Transfer) (*TransferResult, error) {
	if t.FromID == t.ToID {
		return nil, domain.ErrSelfTransferNotAllowed
	}
	if err := t.Amount.Positive(); err != nil {
		err = domain.AmountError(err)
		s.metrics.ObserveLedger("transfer", domain.KindSend, t.Amount, err)
		return nil, err
	}

	result := &TransferResult{}
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.accounts.LockAccounts(ctx, t.FromID, t.ToID)
		if err != nil {
			return err
		}
		sender, ok := locked[t.FromID]
		if !ok {
			return domain.ErrUserNotFound
		}
		recipient, ok := locked[t.ToID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if err := sender.Debit(t.Amount); err != nil {
			return err
		}
		if err := recipient.Credit(t.Amount); err != nil {
			return err
		}

		for _, account := range orderedPair(sender, recipient) {
			if err := s.accounts.UpdateBalances(ctx, account); err != nil {
				return err
			}
		}

		toID, fromID := t.ToID, t.FromID
		result.Sent, err = s.activities.Append(ctx, newActivity(sender, domain.KindSend, domain.DirectionOut, t.Amount,
			domain.ActivityMeta{CounterpartyID: &toID, CounterpartyName: t.ToName, CounterpartyEmail: t.ToEmail}))
		if err != nil {
			return err
		}
		result.Received, err = s.activities.Append(ctx, newActivity(recipient, domain.KindReceive, domain.DirectionIn, t.Amount,
			domain.ActivityMeta{CounterpartyID: &fromID, CounterpartyName: t.FromName, CounterpartyEmail: t.FromEmail}))
		return err
	})
	s.metrics.ObserveLedger("transfer", domain.KindSend, t.Amount, err)
	if err != nil {
		logUnexpected("ledger transfer failed", err, zap.Int64("from", t.FromID), zap.Int64("to", t.ToID))
		return nil, fmt.Errorf("ledger transfer: %w", err)
	}
	return result, nil
}

func orderedPair(a, b *domain.Account) []*domain.Account {
	if a.UserID < b.UserID {
		return []*domain.Account{a, b}
	}
	return []*domain.Account{b, a}
}

func newActivity(a *domain.Account, kind domain.ActivityKind, dir domain.Direction, amount money.Cents, meta domain.ActivityMeta) *domain.Activity {
	return &domain.Activity{
		UserID:             a.UserID,
		Kind:               kind,
		Direction:          dir,
		AmountCents:        amount,
		BalanceAfterCents:  a.BalanceCents,
		ReservedAfterCents: a.ReservedBalanceCents,
		Meta:               meta,
	}
}

func logUnexpected(msg string, err error, fields ...zap.Field) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Kind != domain.KindInternal {
		return
	}
	zap.L().Error(msg, append(fields, zap.Error(err))...)
}
