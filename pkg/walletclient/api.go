package walletclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

func (s *Session) Register(ctx context.Context, req dto.RegisterRequestDTO) (*dto.UserDTO, error) {
	var resp dto.RegisterResponseDTO
	if err := s.send(ctx, http.MethodPost, "/api/auth/register", req, &resp, ""); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (s *Session) Me(ctx context.Context) (*dto.MeResponseDTO, error) {
	var resp dto.MeResponseDTO
	if err := s.Do(ctx, http.MethodGet, mePath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Session) Activity(ctx context.Context, limit int) ([]dto.ActivityItemDTO, error) {
	path := "/api/me/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp dto.ActivityResponseDTO
	if err := s.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *Session) ClaimDailyReward(ctx context.Context) (*dto.ClaimDailyResponseDTO, error) {
	var resp dto.ClaimDailyResponseDTO
	if err := s.Do(ctx, http.MethodPost, "/api/me/claim-daily-reward", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClaimSpin returns the amount chosen by the server.
func (s *Session) ClaimSpin(ctx context.Context) (*dto.ClaimSpinResponseDTO, error) {
	var resp dto.ClaimSpinResponseDTO
	if err := s.Do(ctx, http.MethodPost, "/api/me/claim-spin", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Session) Send(ctx context.Context, toUserID int64, amount money.Cents, withdrawPassword string) (*dto.TransactionDTO, error) {
	req := dto.SendRequestDTO{ToUserID: toUserID, AmountCents: amount, WithdrawPassword: withdrawPassword}
	var resp dto.TransactionResponseDTO
	if err := s.Do(ctx, http.MethodPost, "/api/transactions/send", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Transaction, nil
}

func (s *Session) Withdraw(ctx context.Context, req dto.WithdrawRequestDTO) (*dto.WithdrawalDTO, error) {
	var resp dto.WithdrawalResponseDTO
	if err := s.Do(ctx, http.MethodPost, "/api/withdrawals", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Withdrawal, nil
}

func (s *Session) CreateOrder(ctx context.Context, req dto.CreateOrderRequestDTO) (*dto.OrderDTO, error) {
	var resp dto.OrderResponseDTO
	if err := s.Do(ctx, http.MethodPost, "/api/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}
