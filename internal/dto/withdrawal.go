package dto

import (
	"time"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type WithdrawRequestDTO struct {
	AmountCents      money.Cents `json:"amountCents" validate:"required,gt=0" example:"5000"`
	Method           string      `json:"method" validate:"required,oneof=COMMERCIAL_BANK TELEBIRR CBE_BIRR" example:"TELEBIRR"`
	AccountName      string      `json:"accountName,omitempty" validate:"max=200"`
	AccountNumber    string      `json:"accountNumber,omitempty" validate:"max=64"`
	Phone            string      `json:"phone,omitempty" validate:"max=32"`
	WithdrawPassword string      `json:"withdrawPassword" validate:"required"`
}

type WithdrawalDTO struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"userId"`
	AmountCents   money.Cents `json:"amountCents"`
	Method        string      `json:"method"`
	AccountName   string      `json:"accountName,omitempty"`
	AccountNumber string      `json:"accountNumber,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Status        string      `json:"status" example:"PENDING"`
	User          *UserRefDTO `json:"user,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	DecidedAt     *time.Time  `json:"decidedAt,omitempty"`
}

func NewWithdrawalDTO(w *domain.Withdrawal) WithdrawalDTO {
	return WithdrawalDTO{
		ID:            w.ID,
		UserID:        w.UserID,
		AmountCents:   w.AmountCents,
		Method:        string(w.Method),
		AccountName:   w.AccountName,
		AccountNumber: w.AccountNumber,
		Phone:         w.Phone,
		Status:        string(w.Status),
		CreatedAt:     w.CreatedAt,
		DecidedAt:     w.DecidedAt,
	}
}

type WithdrawalResponseDTO struct {
	Withdrawal WithdrawalDTO `json:"withdrawal"`
}

type WithdrawalsResponseDTO struct {
	Withdrawals []WithdrawalDTO `json:"withdrawals"`
}

func NewWithdrawalsDTO(withdrawals []domain.Withdrawal, users map[int64]domain.User) WithdrawalsResponseDTO {
	resp := WithdrawalsResponseDTO{Withdrawals: make([]WithdrawalDTO, 0, len(withdrawals))}
	for i := range withdrawals {
		w := NewWithdrawalDTO(&withdrawals[i])
		if u, ok := users[withdrawals[i].UserID]; ok {
			w.User = &UserRefDTO{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		resp.Withdrawals = append(resp.Withdrawals, w)
	}
	return resp
}

type DecideWithdrawalRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED" example:"APPROVED"`
}
