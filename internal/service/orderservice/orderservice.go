package orderservice

//go:generate mockgen -source=orderservice.go -destination=mock_orderservice.go -package=orderservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/config"
	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type OrderRepo interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	LockByID(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
}

type ProductRepo interface {
	FindByID(ctx context.Context, productID int64) (*domain.Product, error)
}

type AccountRepo interface {
	RecordApprovedDeposit(ctx context.Context, userID int64, amount money.Cents, points int64) (bool, *int64, error)
}

type Ledger interface {
	Credit(ctx context.Context, e ledgerservice.Entry) (*domain.Activity, error)
	Record(ctx context.Context, e ledgerservice.Entry) (*domain.Activity, error)
}

type Referrals interface {
	Award(ctx context.Context, referrerID int64, order *domain.Order) (*domain.ReferralBonus, error)
}

type Rewards interface {
	GrantSpinCredit(ctx context.Context, userID int64) error
}

type Settings struct {
	PurchaseRewardBPS  int64
	PointsPerMajorUnit int64
}

func SettingsFromConfig(r config.Rewards) Settings {
	return Settings{PurchaseRewardBPS: r.PurchaseRewardBPS, PointsPerMajorUnit: r.PointsPerMajorUnit}
}

type Service struct {
	orders    OrderRepo
	products  ProductRepo
	accounts  AccountRepo
	ledger    Ledger
	referrals Referrals
	rewards   Rewards
	txManager pg.TXManager
	settings  Settings
}

func New(
	orders OrderRepo,
	products ProductRepo,
	accounts AccountRepo,
	ledger Ledger,
	referrals Referrals,
	rewards Rewards,
	txManager pg.TXManager,
	settings Settings,
) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		accounts:  accounts,
		ledger:    ledger,
		referrals: referrals,
		rewards:   rewards,
		txManager: txManager,
		settings:  settings,
	}
}

var paymentMethods = []domain.PaymentMethod{
	domain.PaymentCommercialBank,
	domain.PaymentTelebirr,
	domain.PaymentCBEBirr,
}

func (s *Service) PaymentMethods() []domain.PaymentMethod {
	return append([]domain.PaymentMethod(nil), paymentMethods...)
}

// CreateOrder places a PENDING order at the product's current price.
func (s *Service) CreateOrder(ctx context.Context, userID, productID int64, method domain.PaymentMethod, proofURL string) (*domain.Order, error) {
	if !method.Valid() {
		return nil, domain.ErrInvalidRequest
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if !product.IsActive {
		return nil, domain.ErrProductInactive
	}

	order, err := s.orders.Create(ctx, &domain.Order{
		UserID:               userID,
		ProductID:            product.ID,
		ProductName:          product.Name,
		AmountCents:          product.PriceCents,
		Status:               domain.OrderPending,
		PaymentMethod:        method,
		PaymentProofImageURL: proofURL,
	})
	if err != nil {
		zap.L().Error("can't create order", zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}
	zap.L().Info("order created", zap.Int64("orderID", order.ID), zap.Int64("userID", userID))
	return order, nil
}

func (s *Service) GetOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, fmt.Errorf("get orders: %w", err)
	}
	return orders, nil
}

// ListOrders returns every order, or only those in status when it is set.
func (s *Service) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx, status)
	if err != nil {
		zap.L().Error("failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// transition reports whether from -> to is allowed and whether it settles the order.
func transition(from, to domain.OrderStatus) (ok, settles bool) {
	switch {
	case from == domain.OrderPending && to == domain.OrderApproved:
		return true, true
	case from == domain.OrderPending && to == domain.OrderRejected,
		from == domain.OrderApproved && to == domain.OrderCompleted:
		return true, false
	}
	return false, false
}

// UpdateStatus moves an order through its lifecycle. Approval of a pending
// order settles it: the deposit is recorded on the buyer's account and, for
// the buyer's first approved deposit, the referrer is rewarded. Everything
// happens under the order row lock, so repeated approvals settle once.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	var updated *domain.Order
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderApproved && status == domain.OrderApproved {
			updated = order
			return nil
		}
		ok, settles := transition(order.Status, status)
		if !ok {
			return domain.ErrInvalidStatusTransition
		}
		if updated, err = s.orders.UpdateStatus(ctx, orderID, status); err != nil {
			return err
		}
		if settles {
			return s.settle(ctx, updated)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	zap.L().Info("order status updated", zap.Int64("orderID", orderID), zap.String("status", string(updated.Status)))
	return updated, nil
}

func (s *Service) settle(ctx context.Context, order *domain.Order) error {
	if err := s.recordPurchase(ctx, order); err != nil {
		return err
	}

	points := order.AmountCents.MajorUnits() * s.settings.PointsPerMajorUnit
	first, referrerID, err := s.accounts.RecordApprovedDeposit(ctx, order.UserID, order.AmountCents, points)
	if err != nil {
		return err
	}
	if !first || referrerID == nil {
		return nil
	}

	if _, err := s.referrals.Award(ctx, *referrerID, order); err != nil {
		return err
	}
	return s.rewards.GrantSpinCredit(ctx, *referrerID)
}

// recordPurchase credits the purchase reward, or writes an informational
// ORDER activity when no reward is configured.
func (s *Service) recordPurchase(ctx context.Context, order *domain.Order) error {
	orderID := order.ID
	entry := ledgerservice.Entry{
		UserID: order.UserID,
		Kind:   domain.KindOrder,
		Amount: order.AmountCents,
		Meta: domain.ActivityMeta{
			OrderID:     &orderID,
			ProductName: order.ProductName,
			Status:      string(domain.OrderApproved),
		},
	}

	reward, err := order.AmountCents.ApplyBPS(s.settings.PurchaseRewardBPS)
	if err != nil {
		return domain.AmountError(err)
	}
	if reward > 0 {
		entry.Amount = reward
		_, err = s.ledger.Credit(ctx, entry)
		return err
	}
	_, err = s.ledger.Record(ctx, entry)
	return err
}
