package domain

import (
	"time"

	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

type Product struct {
	ID          int64       `db:"id"`
	Name        string      `db:"name"`
	Description string      `db:"description"`
	PriceCents  money.Cents `db:"price_cents"`
	ImageURL    string      `db:"image_url"`
	IsActive    bool        `db:"is_active"`
	CreatedAt   time.Time   `db:"created_at"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderApproved  OrderStatus = "APPROVED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderCompleted OrderStatus = "COMPLETED"
)

type PaymentMethod string

const (
	PaymentCommercialBank PaymentMethod = "COMMERCIAL_BANK"
	PaymentTelebirr       PaymentMethod = "TELEBIRR"
	PaymentCBEBirr        PaymentMethod = "CBE_BIRR"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCommercialBank, PaymentTelebirr, PaymentCBEBirr:
		return true
	}
	return false
}

type Order struct {
	ID                   int64         `db:"id"`
	UserID               int64         `db:"user_id"`
	ProductID            int64         `db:"product_id"`
	ProductName          string        `db:"product_name"`
	AmountCents          money.Cents   `db:"amount_cents"`
	Status               OrderStatus   `db:"status"`
	PaymentMethod        PaymentMethod `db:"payment_method"`
	PaymentProofImageURL string        `db:"payment_proof_image_url"`
	CreatedAt            time.Time     `db:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at"`
}

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "PENDING"
	WithdrawalApproved WithdrawalStatus = "APPROVED"
	WithdrawalRejected WithdrawalStatus = "REJECTED"
)

type Withdrawal struct {
	ID            int64            `db:"id"`
	UserID        int64            `db:"user_id"`
	AmountCents   money.Cents      `db:"amount_cents"`
	Method        PaymentMethod    `db:"method"`
	AccountName   string           `db:"account_name"`
	AccountNumber string           `db:"account_number"`
	Phone         string           `db:"phone"`
	Status        WithdrawalStatus `db:"status"`
	CreatedAt     time.Time        `db:"created_at"`
	DecidedAt     *time.Time       `db:"decided_at"`
}

// Destination is where an approved withdrawal is paid out.
type Destination struct {
	AccountName   string
	AccountNumber string
	Phone         string
}

type ReferralBonus struct {
	ID          int64       `db:"id"`
	ReferrerID  int64       `db:"referrer_id"`
	ReferredID  int64       `db:"referred_id"`
	OrderID     int64       `db:"order_id"`
	Tier        int         `db:"tier"`
	AmountCents money.Cents `db:"amount_cents"`
	CreatedAt   time.Time   `db:"created_at"`
}

// ReferralBonusView is a bonus joined with the referred user and the product
// of the order that produced it.
type ReferralBonusView struct {
	ReferralBonus
	ReferredName  string
	ReferredEmail string
	ProductName   string
}

type Session struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type PasswordReset struct {
	TokenHash string     `db:"token_hash"`
	UserID    int64      `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
}

// TeamMember is a directly referred user with their orders.
type TeamMember struct {
	User
	BalanceCents money.Cents
	Points       int64
	Orders       []Order
}

type AccountStats struct {
	OrdersTotal          int
	ApprovedOrders       int
	ApprovedDepositCents money.Cents
	ReferralBonusCents   money.Cents
	TeamCount            int
	BalanceCents         money.Cents
	ReservedCents        money.Cents
	AvailableCents       money.Cents
	Points               int64
}

// PaymentSettings are the destinations buyers pay into before uploading proof.
type PaymentSettings struct {
	CommercialBankName      string    `db:"commercial_bank_name"`
	CommercialAccountNumber string    `db:"commercial_account_number"`
	TelebirrPhone           string    `db:"telebirr_phone"`
	CBEBirrPhone            string    `db:"cbe_birr_phone"`
	UpdatedAt               time.Time `db:"updated_at"`
}

type Analytics struct {
	Users         int
	OrdersTotal   int
	OrdersPending int
	IncomeCents   money.Cents
}
