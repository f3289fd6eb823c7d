package ledgerservice

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/service/servicetest"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

func newStoreService(accounts ...domain.Account) (*Service, *servicetest.Store) {
	store := servicetest.NewStore()
	for _, a := range accounts {
		store.AddAccount(a)
	}
	return New(store, store, store, nil), store
}

func TestTransfer_OpposingDirectionsDoNotDeadlock(t *testing.T) {
	service, store := newStoreService(
		domain.Account{UserID: 1, BalanceCents: 100_000},
		domain.Account{UserID: 2, BalanceCents: 100_000},
	)

	const rounds = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := service.Transfer(context.Background(), Transfer{FromID: 1, ToID: 2, Amount: 100})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := service.Transfer(context.Background(), Transfer{FromID: 2, ToID: 1, Amount: 100})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	a, b := store.Account(1), store.Account(2)
	assert.Equal(t, money.Cents(200_000), a.BalanceCents+b.BalanceCents)
	assert.Equal(t, money.Cents(100_000), a.BalanceCents)
	assert.Len(t, store.Activities(1), 2*rounds)
	assert.Len(t, store.Activities(2), 2*rounds)
}

func TestDebit_ConcurrentNeverOverdraws(t *testing.T) {
	service, store := newStoreService(domain.Account{UserID: 1, BalanceCents: 1000, ReservedBalanceCents: 100})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Debit(context.Background(), Entry{UserID: 1, Kind: domain.KindSend, Amount: 100})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientAvailableBalance)
		}()
	}
	wg.Wait()

	account := store.Account(1)
	assert.Equal(t, 9, succeeded)
	assert.Equal(t, money.Cents(100), account.BalanceCents)
	assert.Equal(t, money.Cents(0), account.Available())
	assert.Len(t, store.Activities(1), succeeded)
}

func TestBalanceMatchesActivityLog(t *testing.T) {
	service, store := newStoreService(domain.Account{UserID: 1}, domain.Account{UserID: 2})
	ctx := context.Background()

	_, err := service.Credit(ctx, Entry{UserID: 1, Kind: domain.KindDailyReward, Amount: 5000})
	require.NoError(t, err)
	_, err = service.Reserve(ctx, Entry{UserID: 1, Kind: domain.KindWithdrawal, Amount: 1200})
	require.NoError(t, err)
	_, err = service.Transfer(ctx, Transfer{FromID: 1, ToID: 2, Amount: 3000})
	require.NoError(t, err)
	_, err = service.Debit(ctx, Entry{UserID: 1, Kind: domain.KindSend, Amount: 900})
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailableBalance)
	_, err = service.Settle(ctx, Entry{UserID: 1, Kind: domain.KindWithdrawal, Amount: 1200})
	require.NoError(t, err)

	for _, id := range []int64{1, 2} {
		var balance, reserved money.Cents
		for _, a := range store.Activities(id) {
			switch a.Direction {
			case domain.DirectionIn:
				balance += a.AmountCents
			case domain.DirectionOut:
				balance -= a.AmountCents
			case domain.DirectionSettle:
				balance -= a.AmountCents
				reserved -= a.AmountCents
			case domain.DirectionHold:
				reserved += a.AmountCents
			case domain.DirectionRelease:
				reserved -= a.AmountCents
			}
			assert.Equal(t, balance, a.BalanceAfterCents)
			assert.Equal(t, reserved, a.ReservedAfterCents)
		}
		account := store.Account(id)
		assert.Equal(t, balance, account.BalanceCents)
		assert.Equal(t, reserved, account.ReservedBalanceCents)
	}
}
