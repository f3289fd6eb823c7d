package orderrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

const orderColumns = `id, user_id, product_id, product_name, amount_cents, status, payment_method,
		payment_proof_image_url, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.ProductName, &o.AmountCents, &o.Status,
		&o.PaymentMethod, &o.PaymentProofImageURL, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't read order rows", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
		INSERT INTO orders (user_id, product_id, product_name, amount_cents, status, payment_method, payment_proof_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + orderColumns
	created, err := scanOrder(r.db.QueryRow(ctx, query, order.UserID, order.ProductID, order.ProductName,
		order.AmountCents, order.Status, order.PaymentMethod, order.PaymentProofImageURL))
	if err != nil {
		zap.L().Error("can't save order", zap.Int64("userID", order.UserID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

// LockByID loads the order and holds its row lock until the surrounding
// transaction ends.
func (r *Repository) LockByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		zap.L().Error("can't lock order", zap.Int64("orderID", orderID), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		zap.L().Error("can't update order status", zap.Int64("orderID", orderID), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get orders", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	return collectOrders(rows)
}

// ListByUsers returns the orders of every given user, newest first.
func (r *Repository) ListByUsers(ctx context.Context, userIDs []int64) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ANY($1) ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		zap.L().Error("can't get team orders", zap.Error(err))
		return nil, err
	}
	return collectOrders(rows)
}

// List returns all orders, optionally only those in status.
func (r *Repository) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, string(status))
	if err != nil {
		zap.L().Error("can't list orders", zap.Error(err))
		return nil, err
	}
	return collectOrders(rows)
}

// Stats counts a user's orders and sums the approved and completed ones.
func (r *Repository) Stats(ctx context.Context, userID int64) (total, approved int, approvedCents money.Cents, err error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE status IN ('APPROVED', 'COMPLETED')),
			COALESCE(sum(amount_cents) FILTER (WHERE status IN ('APPROVED', 'COMPLETED')), 0)
		FROM orders
		WHERE user_id = $1
	`
	err = r.db.QueryRow(ctx, query, userID).Scan(&total, &approved, &approvedCents)
	if err != nil {
		zap.L().Error("can't count orders", zap.Int64("userID", userID), zap.Error(err))
		return 0, 0, 0, err
	}
	return total, approved, approvedCents, nil
}

// Totals counts all orders and pending ones and sums the income of approved
// and completed orders.
func (r *Repository) Totals(ctx context.Context) (total, pending int, incomeCents money.Cents, err error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE status = 'PENDING'),
			COALESCE(sum(amount_cents) FILTER (WHERE status IN ('APPROVED', 'COMPLETED')), 0)
		FROM orders
	`
	err = r.db.QueryRow(ctx, query).Scan(&total, &pending, &incomeCents)
	if err != nil {
		zap.L().Error("can't total orders", zap.Error(err))
		return 0, 0, 0, err
	}
	return total, pending, incomeCents, nil
}
