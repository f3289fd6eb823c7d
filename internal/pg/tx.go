package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:generate mockgen -source=tx.go -destination=mock_tx.go -package=pg

type TXManager interface {
	// Begin runs fn in a transaction carried by the context passed to fn.
	// When ctx already carries one, fn joins it and the outermost Begin commits.
	Begin(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// InTx reports whether ctx carries an open transaction.
func InTx(ctx context.Context) bool {
	return txFromContext(ctx) != nil
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type Manager struct {
	pool        txBeginner
	lockTimeout time.Duration
}

func NewTXManager(pool *pgxpool.Pool, lockTimeout time.Duration) *Manager {
	return &Manager{pool: pool, lockTimeout: lockTimeout}
}

func (m *Manager) Begin(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return MapError(ctx, fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if err == nil {
			return
		}
		// rollback on a fresh context so a cancelled request still releases its locks
		rbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zap.L().Error("rollback failed", zap.Error(rbErr))
		}
	}()

	if m.lockTimeout > 0 {
		q := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err = tx.Exec(ctx, q); err != nil {
			return MapError(ctx, err)
		}
	}

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return MapError(ctx, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return MapError(ctx, fmt.Errorf("commit tx: %w", err))
	}
	return nil
}
