// Package servicetest provides an in-memory store with Postgres-like row
// locking for exercising service concurrency in tests. Writes are staged per
// transaction and become visible on commit; row locks are held until the
// transaction ends and time out like lock_timeout.
package servicetest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

var ErrNoTx = errors.New("servicetest: row lock outside transaction")

type txKey struct{}

type tx struct {
	held        []string
	accounts    map[int64]*domain.Account
	orders      map[int64]*domain.Order
	withdrawals map[int64]*domain.Withdrawal
	bonuses     map[int64]*domain.ReferralBonus
	activities  []domain.Activity
}

func (t *tx) holds(key string) bool {
	return slices.Contains(t.held, key)
}

type Store struct {
	LockTimeout time.Duration

	mu          sync.Mutex
	locks       map[string]chan struct{}
	accounts    map[int64]*domain.Account
	users       map[int64]*domain.User
	products    map[int64]*domain.Product
	orders      map[int64]*domain.Order
	withdrawals map[int64]*domain.Withdrawal
	bonuses     map[int64]*domain.ReferralBonus
	activities  []domain.Activity
	seq         atomic.Int64
}

func NewStore() *Store {
	return &Store{
		LockTimeout: 2 * time.Second,
		locks:       make(map[string]chan struct{}),
		accounts:    make(map[int64]*domain.Account),
		users:       make(map[int64]*domain.User),
		products:    make(map[int64]*domain.Product),
		orders:      make(map[int64]*domain.Order),
		withdrawals: make(map[int64]*domain.Withdrawal),
		bonuses:     make(map[int64]*domain.ReferralBonus),
	}
}

func (s *Store) nextID() int64 {
	return s.seq.Add(1)
}

// Begin runs fn in a transaction, joining one already present in ctx.
func (s *Store) Begin(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}
	t := &tx{
		accounts:    make(map[int64]*domain.Account),
		orders:      make(map[int64]*domain.Order),
		withdrawals: make(map[int64]*domain.Withdrawal),
		bonuses:     make(map[int64]*domain.ReferralBonus),
	}
	err := fn(context.WithValue(ctx, txKey{}, t))
	if err == nil {
		s.commit(t)
	}
	s.mu.Lock()
	for _, key := range t.held {
		<-s.locks[key]
	}
	s.mu.Unlock()
	return err
}

func (s *Store) commit(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range t.accounts {
		s.accounts[id] = a
	}
	for id, o := range t.orders {
		s.orders[id] = o
	}
	for id, w := range t.withdrawals {
		s.withdrawals[id] = w
	}
	for referred, b := range t.bonuses {
		s.bonuses[referred] = b
	}
	s.activities = append(s.activities, t.activities...)
}

func (s *Store) lock(ctx context.Context, key string) (*tx, error) {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok {
		return nil, ErrNoTx
	}
	if t.holds(key) {
		return t, nil
	}
	s.mu.Lock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	s.mu.Unlock()

	timer := time.NewTimer(s.LockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		t.held = append(t.held, key)
		return t, nil
	case <-timer.C:
		return nil, domain.ErrTransientConflict
	case <-ctx.Done():
		return nil, domain.ErrTimeout
	}
}

func accountKey(id int64) string { return fmt.Sprintf("account:%d", id) }

func (s *Store) readAccount(ctx context.Context, id int64) *domain.Account {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		if a, ok := t.accounts[id]; ok {
			c := *a
			return &c
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil
	}
	c := *a
	return &c
}

// lockAccount locks the row and returns the copy staged in the transaction.
func (s *Store) lockAccount(ctx context.Context, id int64) (*tx, *domain.Account, error) {
	t, err := s.lock(ctx, accountKey(id))
	if err != nil {
		return nil, nil, err
	}
	if a, ok := t.accounts[id]; ok {
		return t, a, nil
	}
	a := s.readAccount(ctx, id)
	if a == nil {
		return t, nil, domain.ErrUserNotFound
	}
	t.accounts[id] = a
	return t, a, nil
}

func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

func (s *Store) AddAccount(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.UserID] = &a
}

func (s *Store) AddProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

func (s *Store) AddOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = &o
}

// Account returns the committed state of an account.
func (s *Store) Account(id int64) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.accounts[id]
}

func (s *Store) Order(id int64) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.orders[id]
}

func (s *Store) Withdrawal(id int64) domain.Withdrawal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.withdrawals[id]
}

func (s *Store) CommittedBonuses() []domain.ReferralBonus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ReferralBonus, 0, len(s.bonuses))
	for _, b := range s.bonuses {
		out = append(out, *b)
	}
	return out
}

// Activities returns the committed activities of a user, oldest first.
func (s *Store) Activities(userID int64) []domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Activity
	for _, a := range s.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) LockAccounts(ctx context.Context, userIDs ...int64) (map[int64]*domain.Account, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	out := make(map[int64]*domain.Account, len(ids))
	for _, id := range slices.Compact(ids) {
		_, a, err := s.lockAccount(ctx, id)
		if errors.Is(err, domain.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		c := *a
		out[id] = &c
	}
	return out, nil
}

func (s *Store) UpdateBalances(ctx context.Context, account *domain.Account) error {
	_, a, err := s.lockAccount(ctx, account.UserID)
	if err != nil {
		return err
	}
	if account.ReservedBalanceCents < 0 || account.ReservedBalanceCents > account.BalanceCents || account.BalanceCents > money.MaxCents {
		return errors.New("servicetest: accounts_balance_range check violated")
	}
	a.BalanceCents = account.BalanceCents
	a.ReservedBalanceCents = account.ReservedBalanceCents
	return nil
}

func (s *Store) FindByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	return s.readAccount(ctx, userID), nil
}

func (s *Store) CompareAndSetLastDaily(ctx context.Context, userID int64, prev *time.Time, now time.Time) (bool, error) {
	_, a, err := s.lockAccount(ctx, userID)
	if err != nil {
		return false, err
	}
	switch {
	case prev == nil && a.LastDailyRewardAt != nil,
		prev != nil && (a.LastDailyRewardAt == nil || !a.LastDailyRewardAt.Equal(*prev)):
		return false, nil
	}
	a.LastDailyRewardAt = &now
	return true, nil
}

func (s *Store) ConsumeSpinCredit(ctx context.Context, userID int64) (bool, error) {
	_, a, err := s.lockAccount(ctx, userID)
	if err != nil {
		return false, err
	}
	if a.SpinCreditsPending <= 0 {
		return false, nil
	}
	a.SpinCreditsPending--
	return true, nil
}

func (s *Store) AddSpinCredit(ctx context.Context, userID int64) error {
	_, a, err := s.lockAccount(ctx, userID)
	if err != nil {
		return err
	}
	a.SpinCreditsPending++
	return nil
}

func (s *Store) RecordApprovedDeposit(ctx context.Context, userID int64, amount money.Cents, points int64) (bool, *int64, error) {
	_, a, err := s.lockAccount(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	first := !a.HasFirstApprovedDeposit
	a.ApprovedDepositCents += amount
	a.Points += points
	a.HasFirstApprovedDeposit = true
	return first, a.ReferrerID, nil
}

func (s *Store) Append(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok {
		return nil, ErrNoTx
	}
	a := *activity
	a.ID = s.nextID()
	a.CreatedAt = time.Now()
	t.activities = append(t.activities, a)
	return &a, nil
}

// Users, Products, Orders, Bonuses and Withdrawals expose the store under the method
// names of the matching repositories.
func (s *Store) Users() Users             { return Users{s} }
func (s *Store) Products() Products       { return Products{s} }
func (s *Store) Orders() Orders           { return Orders{s} }
func (s *Store) Bonuses() Bonuses         { return Bonuses{s} }
func (s *Store) Withdrawals() Withdrawals { return Withdrawals{s} }

type Users struct{ s *Store }

func (u Users) FindByID(ctx context.Context, userID int64) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[userID]
	if !ok {
		return nil, nil
	}
	c := *user
	return &c, nil
}

type Products struct{ s *Store }

func (p Products) FindByID(ctx context.Context, productID int64) (*domain.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	product, ok := p.s.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	c := *product
	return &c, nil
}

type Orders struct{ s *Store }

func (o Orders) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	c := *order
	c.ID = o.s.nextID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	o.s.AddOrder(c)
	return &c, nil
}

func (o Orders) LockByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	t, err := o.s.lock(ctx, fmt.Sprintf("order:%d", orderID))
	if err != nil {
		return nil, err
	}
	if staged, ok := t.orders[orderID]; ok {
		c := *staged
		return &c, nil
	}
	o.s.mu.Lock()
	order, ok := o.s.orders[orderID]
	o.s.mu.Unlock()
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	c := *order
	return &c, nil
}

func (o Orders) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	order, err := o.LockByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	t := ctx.Value(txKey{}).(*tx)
	order.Status = status
	order.UpdatedAt = time.Now()
	staged := *order
	t.orders[orderID] = &staged
	return order, nil
}

func (o Orders) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return o.filter(func(order *domain.Order) bool { return order.UserID == userID }), nil
}

func (o Orders) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return o.filter(func(order *domain.Order) bool { return status == "" || order.Status == status }), nil
}

func (o Orders) filter(keep func(*domain.Order) bool) []domain.Order {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	out := make([]domain.Order, 0)
	for _, order := range o.s.orders {
		if keep(order) {
			out = append(out, *order)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return int(b.ID - a.ID) })
	return out
}

type Bonuses struct{ s *Store }

// Insert behaves like INSERT ... ON CONFLICT (referred_id) DO NOTHING.
func (b Bonuses) Insert(ctx context.Context, bonus *domain.ReferralBonus) (*domain.ReferralBonus, bool, error) {
	t, err := b.s.lock(ctx, fmt.Sprintf("bonus:%d", bonus.ReferredID))
	if err != nil {
		return nil, false, err
	}
	if _, ok := t.bonuses[bonus.ReferredID]; ok {
		return nil, false, nil
	}
	b.s.mu.Lock()
	_, exists := b.s.bonuses[bonus.ReferredID]
	b.s.mu.Unlock()
	if exists {
		return nil, false, nil
	}
	created := *bonus
	created.ID = b.s.nextID()
	created.CreatedAt = time.Now()
	t.bonuses[created.ReferredID] = &created
	c := created
	return &c, true, nil
}

func (b Bonuses) ListByReferrer(ctx context.Context, referrerID int64) ([]domain.ReferralBonusView, error) {
	out := make([]domain.ReferralBonusView, 0)
	for _, bonus := range b.s.CommittedBonuses() {
		if bonus.ReferrerID == referrerID {
			out = append(out, domain.ReferralBonusView{ReferralBonus: bonus})
		}
	}
	return out, nil
}

type Withdrawals struct{ s *Store }

func (w Withdrawals) Create(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error) {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok {
		return nil, ErrNoTx
	}
	c := *withdrawal
	c.ID = w.s.nextID()
	c.CreatedAt = time.Now()
	t.withdrawals[c.ID] = &c
	out := c
	return &out, nil
}

func (w Withdrawals) LockByID(ctx context.Context, withdrawalID int64) (*domain.Withdrawal, error) {
	t, err := w.s.lock(ctx, fmt.Sprintf("withdrawal:%d", withdrawalID))
	if err != nil {
		return nil, err
	}
	if staged, ok := t.withdrawals[withdrawalID]; ok {
		c := *staged
		return &c, nil
	}
	w.s.mu.Lock()
	withdrawal, ok := w.s.withdrawals[withdrawalID]
	w.s.mu.Unlock()
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	c := *withdrawal
	return &c, nil
}

func (w Withdrawals) UpdateStatus(ctx context.Context, withdrawalID int64, status domain.WithdrawalStatus, decidedAt time.Time) (*domain.Withdrawal, error) {
	withdrawal, err := w.LockByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	t := ctx.Value(txKey{}).(*tx)
	withdrawal.Status = status
	withdrawal.DecidedAt = &decidedAt
	staged := *withdrawal
	t.withdrawals[withdrawalID] = &staged
	return withdrawal, nil
}

func (w Withdrawals) ListByUser(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	return w.filter(func(x *domain.Withdrawal) bool { return x.UserID == userID }), nil
}

func (w Withdrawals) List(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error) {
	return w.filter(func(x *domain.Withdrawal) bool { return status == "" || x.Status == status }), nil
}

func (w Withdrawals) filter(keep func(*domain.Withdrawal) bool) []domain.Withdrawal {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	out := make([]domain.Withdrawal, 0)
	for _, x := range w.s.withdrawals {
		if keep(x) {
			out = append(out, *x)
		}
	}
	slices.SortFunc(out, func(a, b domain.Withdrawal) int { return int(b.ID - a.ID) })
	return out
}
