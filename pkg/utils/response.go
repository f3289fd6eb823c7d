package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
)

// Response is the body of every error reply.
type Response struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

const retryAfterSeconds = "1"

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("can't encode response", zap.Error(err))
	}
}

// RespondWithDomainError writes err as {code, message} with the status of its
// kind. Errors outside the domain are logged and hidden behind a 500.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			derr = domain.ErrTimeout
		default:
			zap.L().Error("unhandled error", zap.Error(err))
			RespondWithJSON(w, http.StatusInternalServerError, Response{Code: "INTERNAL", Message: "internal server error"})
			return
		}
	}
	status := StatusOf(derr)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	RespondWithJSON(w, status, Response{Code: derr.Code, Message: derr.Message})
}

// StatusOf maps a domain error to its HTTP status.
func StatusOf(err *domain.Error) int {
	switch err {
	case domain.ErrInsufficientAvailableBalance:
		return http.StatusPaymentRequired
	case domain.ErrNotEligible, domain.ErrNoSpinCredits, domain.ErrInvalidStatusTransition:
		return http.StatusConflict
	}
	switch err.Kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindBusiness:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
