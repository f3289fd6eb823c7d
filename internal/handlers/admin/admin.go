// Package admin serves the back-office endpoints. Every route is mounted
// behind the admin role check.
package admin

//go:generate mockgen -source=admin.go -destination=mock_admin.go -package=admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/accountservice"
	"github.com/GlebRadaev/rewardwallet/internal/service/productservice"
	"github.com/GlebRadaev/rewardwallet/pkg/utils"
)

type OrderService interface {
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error)
}

type WithdrawalService interface {
	List(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error)
	Decide(ctx context.Context, withdrawalID int64, status domain.WithdrawalStatus) (*domain.Withdrawal, error)
}

type AccountService interface {
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
	GetUser(ctx context.Context, userID int64) (*accountservice.Profile, error)
	SetUserActive(ctx context.Context, userID int64, active bool) (*domain.User, error)
	LookupUsers(ctx context.Context, ids []int64) (map[int64]domain.User, error)
	Analytics(ctx context.Context) (*domain.Analytics, error)
}

type ProductService interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	Update(ctx context.Context, productID int64, patch productservice.Patch) (*domain.Product, error)
	Deactivate(ctx context.Context, productID int64) (*domain.Product, error)
}

type SettingsService interface {
	Get(ctx context.Context) (*domain.PaymentSettings, error)
	Put(ctx context.Context, settings domain.PaymentSettings) (*domain.PaymentSettings, error)
}

type AdminHandler struct {
	orderService      OrderService
	withdrawalService WithdrawalService
	accountService    AccountService
	productService    ProductService
	settingsService   SettingsService
}

func New(
	orderService OrderService,
	withdrawalService WithdrawalService,
	accountService AccountService,
	productService ProductService,
	settingsService SettingsService,
) *AdminHandler {
	return &AdminHandler{
		orderService:      orderService,
		withdrawalService: withdrawalService,
		accountService:    accountService,
		productService:    productService,
		settingsService:   settingsService,
	}
}

func orderStatusFilter(r *http.Request) (domain.OrderStatus, error) {
	status := domain.OrderStatus(strings.ToUpper(r.URL.Query().Get("status")))
	switch status {
	case "", domain.OrderPending, domain.OrderApproved, domain.OrderRejected, domain.OrderCompleted:
		return status, nil
	}
	return "", domain.InvalidRequest("invalid status")
}

func withdrawalStatusFilter(r *http.Request) (domain.WithdrawalStatus, error) {
	status := domain.WithdrawalStatus(strings.ToUpper(r.URL.Query().Get("status")))
	switch status {
	case "", domain.WithdrawalPending, domain.WithdrawalApproved, domain.WithdrawalRejected:
		return status, nil
	}
	return "", domain.InvalidRequest("invalid status")
}

// ListOrders godoc
//
//	@Summary		All orders
//	@Tags			Admin
//	@Produce		json
//	@Param			status	query	string	false	"PENDING, APPROVED, REJECTED or COMPLETED"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrdersResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid status"
//	@Failure		403	{object}	utils.Response	"Admin only"
//	@Router			/api/admin/orders [get]
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status, err := orderStatusFilter(r)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	orders, err := h.orderService.ListOrders(r.Context(), status)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	users, err := h.accountService.LookupUsers(r.Context(), ids)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrdersDTO(orders, users))
}

// UpdateOrderStatus godoc
//
//	@Summary		Move an order through its lifecycle
//	@Description	PENDING to APPROVED settles the deposit and pays referral bonuses. Other allowed moves are PENDING to REJECTED and APPROVED to COMPLETED.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int								true	"Order ID"
//	@Param			request	body	dto.UpdateOrderStatusRequestDTO	true	"New status"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		409	{object}	utils.Response	"Invalid status transition"
//	@Router			/api/admin/orders/{id}/status [patch]
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.PathID(r, "id")
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	var req dto.UpdateOrderStatusRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	order, err := h.orderService.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.OrderResponseDTO{Order: dto.NewOrderDTO(order)})
}

// ListWithdrawals godoc
//
//	@Summary		All withdrawals
//	@Tags			Admin
//	@Produce		json
//	@Param			status	query	string	false	"PENDING, APPROVED or REJECTED"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.WithdrawalsResponseDTO
//	@Router			/api/admin/withdrawals [get]
func (h *AdminHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	status, err := withdrawalStatusFilter(r)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	withdrawals, err := h.withdrawalService.List(r.Context(), status)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	ids := make([]int64, 0, len(withdrawals))
	for _, wd := range withdrawals {
		ids = append(ids, wd.UserID)
	}
	users, err := h.accountService.LookupUsers(r.Context(), ids)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalsDTO(withdrawals, users))
}

// DecideWithdrawal godoc
//
//	@Summary		Approve or reject a pending withdrawal
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int								true	"Withdrawal ID"
//	@Param			request	body	dto.DecideWithdrawalRequestDTO	true	"Decision"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.WithdrawalResponseDTO
//	@Failure		404	{object}	utils.Response	"Withdrawal not found"
//	@Failure		409	{object}	utils.Response	"Already decided"
//	@Router			/api/admin/withdrawals/{id} [patch]
func (h *AdminHandler) DecideWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := utils.PathID(r, "id")
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	var req dto.DecideWithdrawalRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	withdrawal, err := h.withdrawalService.Decide(r.Context(), withdrawalID, domain.WithdrawalStatus(req.Status))
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.WithdrawalResponseDTO{Withdrawal: dto.NewWithdrawalDTO(withdrawal)})
}

// ListUsers godoc
//
//	@Summary		Users
//	@Tags			Admin
//	@Produce		json
//	@Param			limit	query	int	false	"Page size"
//	@Param			offset	query	int	false	"Offset"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.UsersResponseDTO
//	@Router			/api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.QueryInt(r, "limit", accountservice.DefaultUsersLimit)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	offset, err := utils.QueryInt(r, "offset", 0)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	users, err := h.accountService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUsersDTO(users))
}

// GetUser godoc
//
//	@Summary		A user with their wallet
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path	int	true	"User ID"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.AdminUserResponseDTO
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.PathID(r, "id")
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	profile, err := h.accountService.GetUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.AdminUserResponseDTO{User: dto.NewWalletUserDTO(profile.User, profile.Account)})
}

// UpdateUser godoc
//
//	@Summary		Enable or disable a user
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"User ID"
//	@Param			request	body	dto.UpdateUserRequestDTO	true	"Active flag"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.UserResponseDTO
//	@Router			/api/admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.PathID(r, "id")
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	var req dto.UpdateUserRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	user, err := h.accountService.SetUserActive(r.Context(), userID, *req.IsActive)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UserResponseDTO{User: dto.NewUserDTO(user)})
}

// Analytics godoc
//
//	@Summary		Dashboard counters
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.AnalyticsResponseDTO
//	@Router			/api/admin/analytics [get]
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.accountService.Analytics(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewAnalyticsDTO(analytics))
}

// ListProducts godoc
//
//	@Summary		All products, inactive included
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ProductsResponseDTO
//	@Router			/api/admin/products [get]
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListAll(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewProductsDTO(products))
}

// CreateProduct godoc
//
//	@Summary		Add a product
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateProductRequestDTO	true	"Product"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.ProductResponseDTO
//	@Router			/api/products [post]
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	product := domain.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	created, err := h.productService.Create(r.Context(), product)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.ProductResponseDTO{Product: dto.NewProductDTO(created)})
}

// UpdateProduct godoc
//
//	@Summary		Edit a product
//	@Description	Only the fields present in the body change. Existing orders keep the price they were placed at.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"Product ID"
//	@Param			request	body	dto.UpdateProductRequestDTO	true	"Changed fields"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ProductResponseDTO
//	@Failure		404	{object}	utils.Response	"Product not found"
//	@Router			/api/products/{id} [patch]
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := utils.PathID(r, "id")
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	var req dto.UpdateProductRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	product, err := h.productService.Update(r.Context(), productID, productservice.Patch{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ProductResponseDTO{Product: dto.NewProductDTO(product)})
}

// DeleteProduct godoc
//
//	@Summary		Withdraw a product from sale
//	@Description	Products are deactivated, never removed, so past orders keep their product.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path	int	true	"Product ID"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ProductResponseDTO
//	@Failure		404	{object}	utils.Response	"Product not found"
//	@Router			/api/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := utils.PathID(r, "id")
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	product, err := h.productService.Deactivate(r.Context(), productID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ProductResponseDTO{Product: dto.NewProductDTO(product)})
}

// GetPaymentSettings godoc
//
//	@Summary		Receiving accounts
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.PaymentSettingsResponseDTO
//	@Router			/api/admin/payment-settings [get]
func (h *AdminHandler) GetPaymentSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PaymentSettingsResponseDTO{Settings: dto.NewPaymentSettingsDTO(settings)})
}

// PutPaymentSettings godoc
//
//	@Summary		Replace the receiving accounts
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.PaymentSettingsDTO	true	"Settings"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.PaymentSettingsResponseDTO
//	@Router			/api/admin/payment-settings [put]
func (h *AdminHandler) PutPaymentSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentSettingsDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	settings, err := h.settingsService.Put(r.Context(), domain.PaymentSettings{
		CommercialBankName:      req.CommercialBankName,
		CommercialAccountNumber: req.CommercialAccountNumber,
		TelebirrPhone:           req.TelebirrPhone,
		CBEBirrPhone:            req.CBEBirrPhone,
	})
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PaymentSettingsResponseDTO{Settings: dto.NewPaymentSettingsDTO(settings)})
}
