package productrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
)

const productColumns = `id, name, description, price_cents, image_url, is_active, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImageURL, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindByID(ctx context.Context, productID int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.db.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		zap.L().Error("can't find product", zap.Int64("productID", productID), zap.Error(err))
		return nil, err
	}
	return product, nil
}

// ListActive returns active products, oldest first. A limit of zero means no limit.
func (r *Repository) ListActive(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.list(ctx, `WHERE is_active`, limit)
}

// ListAll returns every product including inactive ones.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, ``, 0)
}

func (r *Repository) list(ctx context.Context, where string, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ` + where + ` ORDER BY id LIMIT NULLIF($1, 0)`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("can't list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			zap.L().Error("can't scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't list products", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (r *Repository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price_cents, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns
	created, err := scanProduct(r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.PriceCents, product.ImageURL, product.IsActive))
	if err != nil {
		zap.L().Error("can't create product", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price_cents = $4, image_url = $5, is_active = $6
		WHERE id = $1
		RETURNING ` + productColumns
	updated, err := scanProduct(r.db.QueryRow(ctx, query, product.ID,
		product.Name, product.Description, product.PriceCents, product.ImageURL, product.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		zap.L().Error("can't update product", zap.Int64("productID", product.ID), zap.Error(err))
		return nil, err
	}
	return updated, nil
}
