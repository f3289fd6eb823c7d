package productservice

//go:generate mockgen -source=productservice.go -destination=mock_productservice.go -package=productservice

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

const DefaultFeaturedCount = 4

type ProductRepo interface {
	FindByID(ctx context.Context, productID int64) (*domain.Product, error)
	ListActive(ctx context.Context, limit int) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
}

// Patch holds the fields an admin changes on a product. Nil fields are kept.
type Patch struct {
	Name        *string
	Description *string
	PriceCents  *money.Cents
	ImageURL    *string
	IsActive    *bool
}

type Service struct {
	products ProductRepo
	featured int
}

func New(products ProductRepo, featured int) *Service {
	if featured <= 0 {
		featured = DefaultFeaturedCount
	}
	return &Service{
		products: products,
		featured: featured,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListActive(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Featured returns the first active products shown on the landing page.
func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListActive(ctx, s.featured)
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return products, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	return products, nil
}

func (s *Service) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return nil, domain.ErrInvalidRequest
	}
	if err := product.PriceCents.Positive(); err != nil {
		return nil, domain.AmountError(err)
	}
	created, err := s.products.Create(ctx, &product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	zap.L().Info("product created", zap.Int64("productID", created.ID), zap.Int64("priceCents", int64(created.PriceCents)))
	return created, nil
}

// Update applies patch to the product. Orders keep the price they were
// placed at, so repricing never changes existing orders.
func (s *Service) Update(ctx context.Context, productID int64, patch Patch) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.ErrInvalidRequest
		}
		product.Name = name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.PriceCents != nil {
		if err := patch.PriceCents.Positive(); err != nil {
			return nil, domain.AmountError(err)
		}
		product.PriceCents = *patch.PriceCents
	}
	if patch.ImageURL != nil {
		product.ImageURL = *patch.ImageURL
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	updated, err := s.products.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// Deactivate hides the product from buyers. Products are never deleted since
// orders reference them.
func (s *Service) Deactivate(ctx context.Context, productID int64) (*domain.Product, error) {
	inactive := false
	return s.Update(ctx, productID, Patch{IsActive: &inactive})
}
