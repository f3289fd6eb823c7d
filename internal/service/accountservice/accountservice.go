// Package accountservice builds the read views of a user's wallet and the
// admin views of users. Reads go to the primary, so a view requested after a
// mutation reflects it.
package accountservice

//go:generate mockgen -source=accountservice.go -destination=mock_accountservice.go -package=accountservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 100
	DefaultUsersLimit    = 100
)

type UserRepo interface {
	FindByID(ctx context.Context, userID int64) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
	List(ctx context.Context, limit int, offset int) ([]domain.User, error)
	SetActive(ctx context.Context, userID int64, active bool) (*domain.User, error)
	Count(ctx context.Context) (int, error)
}

type AccountRepo interface {
	FindByUserID(ctx context.Context, userID int64) (*domain.Account, error)
	CountReferred(ctx context.Context, referrerID int64) (int, error)
	ListReferred(ctx context.Context, referrerID int64) ([]domain.TeamMember, error)
}

type OrderRepo interface {
	Stats(ctx context.Context, userID int64) (int, int, money.Cents, error)
	ListByUsers(ctx context.Context, userIDs []int64) ([]domain.Order, error)
	Totals(ctx context.Context) (int, int, money.Cents, error)
}

type BonusRepo interface {
	SumByReferrer(ctx context.Context, referrerID int64) (money.Cents, error)
}

type ActivityRepo interface {
	ListByUser(ctx context.Context, userID int64, limit int, kinds ...domain.ActivityKind) ([]domain.Activity, error)
}

// Profile is a user together with their wallet.
type Profile struct {
	User      *domain.User
	Account   *domain.Account
	TeamCount int
}

type Service struct {
	users      UserRepo
	accounts   AccountRepo
	orders     OrderRepo
	bonuses    BonusRepo
	activities ActivityRepo
}

func New(users UserRepo, accounts AccountRepo, orders OrderRepo, bonuses BonusRepo, activities ActivityRepo) *Service {
	return &Service{
		users:      users,
		accounts:   accounts,
		orders:     orders,
		bonuses:    bonuses,
		activities: activities,
	}
}

func (s *Service) profile(ctx context.Context, userID int64) (*domain.User, *domain.Account, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	account, err := s.accounts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	return user, account, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*Profile, error) {
	user, account, err := s.profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	team, err := s.accounts.CountReferred(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return &Profile{User: user, Account: account, TeamCount: team}, nil
}

func (s *Service) Stats(ctx context.Context, userID int64) (*domain.AccountStats, error) {
	account, err := s.accounts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account stats: %w", err)
	}
	if account == nil {
		return nil, domain.ErrUserNotFound
	}
	total, approved, approvedCents, err := s.orders.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account stats: %w", err)
	}
	bonus, err := s.bonuses.SumByReferrer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account stats: %w", err)
	}
	team, err := s.accounts.CountReferred(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account stats: %w", err)
	}
	return &domain.AccountStats{
		OrdersTotal:          total,
		ApprovedOrders:       approved,
		ApprovedDepositCents: approvedCents,
		ReferralBonusCents:   bonus,
		TeamCount:            team,
		BalanceCents:         account.BalanceCents,
		ReservedCents:        account.ReservedBalanceCents,
		AvailableCents:       account.Available(),
		Points:               account.Points,
	}, nil
}

// Activity returns the newest entries of the user's ledger. limit is clamped
// to [1, MaxActivityLimit]; zero means the default.
func (s *Service) Activity(ctx context.Context, userID int64, limit int) ([]domain.Activity, error) {
	switch {
	case limit <= 0:
		limit = DefaultActivityLimit
	case limit > MaxActivityLimit:
		limit = MaxActivityLimit
	}
	activities, err := s.activities.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	return activities, nil
}

// Team lists the users referred by userID, each with their orders.
func (s *Service) Team(ctx context.Context, userID int64) ([]domain.TeamMember, error) {
	members, err := s.accounts.ListReferred(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("team: %w", err)
	}
	if len(members) == 0 {
		return members, nil
	}

	ids := make([]int64, 0, len(members))
	index := make(map[int64]int, len(members))
	for i := range members {
		members[i].Orders = make([]domain.Order, 0)
		ids = append(ids, members[i].ID)
		index[members[i].ID] = i
	}
	orders, err := s.orders.ListByUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("team: %w", err)
	}
	for _, o := range orders {
		if i, ok := index[o.UserID]; ok {
			members[i].Orders = append(members[i].Orders, o)
		}
	}
	return members, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = DefaultUsersLimit
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*Profile, error) {
	user, account, err := s.profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &Profile{User: user, Account: account}, nil
}

// LookupUsers resolves ids to users in one query. Unknown ids are absent
// from the result.
func (s *Service) LookupUsers(ctx context.Context, ids []int64) (map[int64]domain.User, error) {
	users := make(map[int64]domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	found, err := s.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("lookup users: %w", err)
	}
	for _, u := range found {
		users[u.ID] = u
	}
	return users, nil
}

// FindRecipient looks up an active user to send money to.
func (s *Service) FindRecipient(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find recipient: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) SetUserActive(ctx context.Context, userID int64, active bool) (*domain.User, error) {
	user, err := s.users.SetActive(ctx, userID, active)
	if err != nil {
		return nil, fmt.Errorf("set user active: %w", err)
	}
	zap.L().Info("user activity changed", zap.Int64("userID", userID), zap.Bool("active", active))
	return user, nil
}

func (s *Service) Analytics(ctx context.Context) (*domain.Analytics, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	total, pending, income, err := s.orders.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	return &domain.Analytics{Users: users, OrdersTotal: total, OrdersPending: pending, IncomeCents: income}, nil
}
