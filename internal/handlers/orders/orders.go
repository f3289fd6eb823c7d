package orders

//go:generate mockgen -source=orders.go -destination=mock_orders.go -package=orders

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/settingsservice"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/utils"
)

type Service interface {
	CreateOrder(ctx context.Context, userID int64, productID int64, method domain.PaymentMethod, proofURL string) (*domain.Order, error)
	GetOrders(ctx context.Context, userID int64) ([]domain.Order, error)
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
}

type SettingsService interface {
	Get(ctx context.Context) (*domain.PaymentSettings, error)
	PaymentDetails(ctx context.Context) (*settingsservice.PaymentDetails, error)
}

type OrderHandler struct {
	orderService    Service
	productService  ProductService
	settingsService SettingsService
}

func New(orderService Service, productService ProductService, settingsService SettingsService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		productService:  productService,
		settingsService: settingsService,
	}
}

// CreateOrder godoc
//
//	@Summary		Buy a product
//	@Description	Files a PENDING deposit order for a product at its current price. An admin approves it after checking the payment proof.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateOrderRequestDTO	true	"Order payload"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.OrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Product not found"
//	@Failure		422	{object}	utils.Response	"Product is not available"
//	@Router			/api/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req dto.CreateOrderRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	order, err := h.orderService.CreateOrder(r.Context(), userID, req.ProductID, domain.PaymentMethod(req.PaymentMethod), req.PaymentProofImageURL)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.OrderResponseDTO{Order: dto.NewOrderDTO(order)})
}

// GetOrders godoc
//
//	@Summary		List my orders
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrdersResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/orders/mine [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	orders, err := h.orderService.GetOrders(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrdersDTO(orders, nil))
}

// PaymentDetails godoc
//
//	@Summary		Payment methods and receiving accounts
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.PaymentDetailsResponseDTO
//	@Router			/api/orders/payment-details [get]
func (h *OrderHandler) PaymentDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.settingsService.PaymentDetails(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	methods := make([]string, 0, len(details.Methods))
	for _, m := range details.Methods {
		methods = append(methods, string(m))
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PaymentDetailsResponseDTO{
		Methods:  methods,
		Settings: dto.NewPaymentSettingsDTO(details.Settings),
	})
}

// PaymentSettings godoc
//
//	@Summary		Receiving accounts
//	@Tags			Orders
//	@Produce		json
//	@Success		200	{object}	dto.PaymentSettingsResponseDTO
//	@Router			/api/payment-settings [get]
func (h *OrderHandler) PaymentSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PaymentSettingsResponseDTO{Settings: dto.NewPaymentSettingsDTO(settings)})
}

// Products godoc
//
//	@Summary		Catalog of active products
//	@Tags			Products
//	@Produce		json
//	@Success		200	{object}	dto.ProductsResponseDTO
//	@Router			/api/products [get]
func (h *OrderHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewProductsDTO(products))
}

// Featured godoc
//
//	@Summary		Featured products
//	@Tags			Products
//	@Produce		json
//	@Success		200	{object}	dto.ProductsResponseDTO
//	@Router			/api/products/featured [get]
func (h *OrderHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.Featured(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewProductsDTO(products))
}
