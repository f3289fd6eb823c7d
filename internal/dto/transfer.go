package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

// SendRequestDTO takes the amount either in cents or, as the web client
// sends it, in decimal birr. AmountCents wins when both are set.
type SendRequestDTO struct {
	ToUserID         int64            `json:"toUserId" validate:"required,gt=0" example:"2"`
	AmountCents      money.Cents      `json:"amountCents,omitempty" example:"1500"`
	AmountEtb        *decimal.Decimal `json:"amountEtb,omitempty" swaggertype:"number" example:"15.00"`
	WithdrawPassword string           `json:"withdrawPassword" validate:"required"`
}

type TransactionDTO struct {
	ID          int64       `json:"id"`
	AmountCents money.Cents `json:"amountCents"`
	Type        string      `json:"type" example:"SEND"`
	CreatedAt   time.Time   `json:"createdAt"`
	ToUser      *UserRefDTO `json:"toUser,omitempty"`
	FromUser    *UserRefDTO `json:"fromUser,omitempty"`
}

type TransactionResponseDTO struct {
	Transaction TransactionDTO `json:"transaction"`
}

type TransactionsResponseDTO struct {
	Transactions []TransactionDTO `json:"transactions"`
}

type RecipientResponseDTO struct {
	User UserRefDTO `json:"user"`
}
