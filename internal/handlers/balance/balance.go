package balance

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=balance

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/transferservice"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
	"github.com/GlebRadaev/rewardwallet/pkg/utils"
)

type TransferService interface {
	Send(ctx context.Context, fromID int64, toID int64, amount money.Cents, withdrawPassword string) (*transferservice.Record, error)
	Sent(ctx context.Context, userID int64) ([]transferservice.Record, error)
	Received(ctx context.Context, userID int64) ([]transferservice.Record, error)
}

type WithdrawalService interface {
	Request(ctx context.Context, userID int64, amount money.Cents, method domain.PaymentMethod, dest domain.Destination, withdrawPassword string) (*domain.Withdrawal, error)
	Mine(ctx context.Context, userID int64) ([]domain.Withdrawal, error)
}

type BalanceHandler struct {
	transferService   TransferService
	withdrawalService WithdrawalService
}

func New(transferService TransferService, withdrawalService WithdrawalService) *BalanceHandler {
	return &BalanceHandler{
		transferService:   transferService,
		withdrawalService: withdrawalService,
	}
}

func newTransactionDTO(rec *transferservice.Record) dto.TransactionDTO {
	t := dto.TransactionDTO{
		ID:          rec.ID,
		AmountCents: rec.AmountCents,
		Type:        string(rec.Kind),
		CreatedAt:   rec.CreatedAt,
	}
	ref := &dto.UserRefDTO{ID: rec.Counterparty.ID, Name: rec.Counterparty.Name, Email: rec.Counterparty.Email}
	if rec.Kind == domain.KindReceive {
		t.FromUser = ref
	} else {
		t.ToUser = ref
	}
	return t
}

func newTransactionsDTO(records []transferservice.Record) dto.TransactionsResponseDTO {
	resp := dto.TransactionsResponseDTO{Transactions: make([]dto.TransactionDTO, 0, len(records))}
	for i := range records {
		resp.Transactions = append(resp.Transactions, newTransactionDTO(&records[i]))
	}
	return resp
}

// sendAmount prefers amountCents and falls back to the decimal birr amount.
func sendAmount(req *dto.SendRequestDTO) (money.Cents, error) {
	if req.AmountCents != 0 {
		return req.AmountCents, nil
	}
	if req.AmountEtb == nil {
		return 0, domain.ErrInvalidAmount
	}
	amount, err := money.FromMajor(*req.AmountEtb)
	if err != nil {
		return 0, domain.AmountError(err)
	}
	return amount, nil
}

// Send godoc
//
//	@Summary		Send money to another user
//	@Description	Moves funds from the caller's available balance to another active user. Requires the withdraw password.
//	@Tags			Transfers
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.SendRequestDTO	true	"Transfer payload"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.TransactionResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid amount"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	utils.Response	"Insufficient available balance"
//	@Failure		404	{object}	utils.Response	"Recipient not found"
//	@Failure		422	{object}	utils.Response	"Wrong withdraw password"
//	@Router			/api/transactions/send [post]
func (h *BalanceHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req dto.SendRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	amount, err := sendAmount(&req)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	record, err := h.transferService.Send(r.Context(), userID, req.ToUserID, amount, req.WithdrawPassword)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.TransactionResponseDTO{Transaction: newTransactionDTO(record)})
}

// Sent godoc
//
//	@Summary		Transfers I sent
//	@Tags			Transfers
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.TransactionsResponseDTO
//	@Router			/api/transactions/sent [get]
func (h *BalanceHandler) Sent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	records, err := h.transferService.Sent(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, newTransactionsDTO(records))
}

// Received godoc
//
//	@Summary		Transfers I received
//	@Tags			Transfers
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.TransactionsResponseDTO
//	@Router			/api/transactions/received [get]
func (h *BalanceHandler) Received(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	records, err := h.transferService.Received(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, newTransactionsDTO(records))
}

// Withdraw godoc
//
//	@Summary		Request a withdrawal
//	@Description	Reserves the amount and files a PENDING withdrawal. Bank withdrawals need accountName and accountNumber, mobile ones need phone.
//	@Tags			Withdrawals
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.WithdrawRequestDTO	true	"Withdrawal payload"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.WithdrawalResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	utils.Response	"Insufficient available balance"
//	@Failure		422	{object}	utils.Response	"Wrong withdraw password"
//	@Router			/api/withdrawals [post]
func (h *BalanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req dto.WithdrawRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	withdrawal, err := h.withdrawalService.Request(
		r.Context(),
		userID,
		req.AmountCents,
		domain.PaymentMethod(req.Method),
		domain.Destination{AccountName: req.AccountName, AccountNumber: req.AccountNumber, Phone: req.Phone},
		req.WithdrawPassword,
	)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.WithdrawalResponseDTO{Withdrawal: dto.NewWithdrawalDTO(withdrawal)})
}

// GetWithdrawals godoc
//
//	@Summary		My withdrawals
//	@Tags			Withdrawals
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.WithdrawalsResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/withdrawals/mine [get]
func (h *BalanceHandler) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	withdrawals, err := h.withdrawalService.Mine(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalsDTO(withdrawals, nil))
}
