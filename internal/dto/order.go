package dto

import (
	"time"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type CreateOrderRequestDTO struct {
	ProductID            int64  `json:"productId" validate:"required,gt=0" example:"3"`
	PaymentMethod        string `json:"paymentMethod" validate:"required,oneof=COMMERCIAL_BANK TELEBIRR CBE_BIRR" example:"TELEBIRR"`
	PaymentProofImageURL string `json:"paymentProofImageUrl" validate:"required,max=2048"`
}

type OrderProductDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type OrderDTO struct {
	ID                   int64           `json:"id" example:"10"`
	UserID               int64           `json:"userId" example:"1"`
	Product              OrderProductDTO `json:"product"`
	AmountCents          money.Cents     `json:"amountCents" example:"8000"`
	Status               string          `json:"status" example:"PENDING"`
	PaymentMethod        string          `json:"paymentMethod" example:"TELEBIRR"`
	PaymentProofImageURL string          `json:"paymentProofImageUrl,omitempty"`
	User                 *UserRefDTO     `json:"user,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func NewOrderDTO(o *domain.Order) OrderDTO {
	return OrderDTO{
		ID:                   o.ID,
		UserID:               o.UserID,
		Product:              OrderProductDTO{ID: o.ProductID, Name: o.ProductName},
		AmountCents:          o.AmountCents,
		Status:               string(o.Status),
		PaymentMethod:        string(o.PaymentMethod),
		PaymentProofImageURL: o.PaymentProofImageURL,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

type OrderResponseDTO struct {
	Order OrderDTO `json:"order"`
}

type OrdersResponseDTO struct {
	Orders []OrderDTO `json:"orders"`
}

// NewOrdersDTO renders orders, naming their buyers when users has them.
func NewOrdersDTO(orders []domain.Order, users map[int64]domain.User) OrdersResponseDTO {
	resp := OrdersResponseDTO{Orders: make([]OrderDTO, 0, len(orders))}
	for i := range orders {
		o := NewOrderDTO(&orders[i])
		if u, ok := users[orders[i].UserID]; ok {
			o.User = &UserRefDTO{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		resp.Orders = append(resp.Orders, o)
	}
	return resp
}

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED COMPLETED" example:"APPROVED"`
}

type ProductDTO struct {
	ID          int64       `json:"id" example:"3"`
	Name        string      `json:"name" example:"Gold pack"`
	Description string      `json:"description"`
	PriceCents  money.Cents `json:"priceCents" example:"8000"`
	ImageURL    string      `json:"imageUrl"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func NewProductDTO(p *domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

type ProductResponseDTO struct {
	Product ProductDTO `json:"product"`
}

type ProductsResponseDTO struct {
	Products []ProductDTO `json:"products"`
}

func NewProductsDTO(products []domain.Product) ProductsResponseDTO {
	resp := ProductsResponseDTO{Products: make([]ProductDTO, 0, len(products))}
	for i := range products {
		resp.Products = append(resp.Products, NewProductDTO(&products[i]))
	}
	return resp
}

type CreateProductRequestDTO struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=5000"`
	PriceCents  money.Cents `json:"priceCents" validate:"required,gt=0"`
	ImageURL    string      `json:"imageUrl" validate:"max=2048"`
	IsActive    *bool       `json:"isActive,omitempty"`
}

type UpdateProductRequestDTO struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	PriceCents  *money.Cents `json:"priceCents,omitempty" validate:"omitempty,gt=0"`
	ImageURL    *string      `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	IsActive    *bool        `json:"isActive,omitempty"`
}

type PaymentSettingsDTO struct {
	CommercialBankName      string `json:"commercialBankName" validate:"max=200"`
	CommercialAccountNumber string `json:"commercialAccountNumber" validate:"max=64"`
	TelebirrPhone           string `json:"telebirrPhone" validate:"max=32"`
	CBEBirrPhone            string `json:"cbeBirrPhone" validate:"max=32"`
}

func NewPaymentSettingsDTO(s *domain.PaymentSettings) *PaymentSettingsDTO {
	if s == nil {
		return nil
	}
	return &PaymentSettingsDTO{
		CommercialBankName:      s.CommercialBankName,
		CommercialAccountNumber: s.CommercialAccountNumber,
		TelebirrPhone:           s.TelebirrPhone,
		CBEBirrPhone:            s.CBEBirrPhone,
	}
}

// PaymentSettingsResponseDTO has a null settings until an admin saves them.
type PaymentSettingsResponseDTO struct {
	Settings *PaymentSettingsDTO `json:"settings"`
}

type PaymentDetailsResponseDTO struct {
	Methods  []string            `json:"methods"`
	Settings *PaymentSettingsDTO `json:"settings"`
}
