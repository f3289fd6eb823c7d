package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
)

func TestRespondWithDomainError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody Response
		retryAfter   bool
	}{
		{
			name:         "Insufficient balance",
			err:          fmt.Errorf("ledger debit: %w", domain.ErrInsufficientAvailableBalance),
			expectedCode: http.StatusPaymentRequired,
			expectedBody: Response{Code: "INSUFFICIENT_AVAILABLE_BALANCE", Message: "insufficient available balance"},
		},
		{
			name:         "Validation",
			err:          domain.ErrInvalidAmount,
			expectedCode: http.StatusBadRequest,
			expectedBody: Response{Code: "INVALID_AMOUNT", Message: domain.ErrInvalidAmount.Message},
		},
		{
			name:         "Business rule",
			err:          domain.ErrSelfTransferNotAllowed,
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: Response{Code: "SELF_TRANSFER_NOT_ALLOWED", Message: domain.ErrSelfTransferNotAllowed.Message},
		},
		{
			name:         "Reward not eligible",
			err:          fmt.Errorf("claim daily reward: %w", domain.ErrNotEligible),
			expectedCode: http.StatusConflict,
			expectedBody: Response{Code: "NOT_ELIGIBLE", Message: domain.ErrNotEligible.Message},
		},
		{
			name:         "Not found",
			err:          domain.ErrOrderNotFound,
			expectedCode: http.StatusNotFound,
			expectedBody: Response{Code: "ORDER_NOT_FOUND", Message: domain.ErrOrderNotFound.Message},
		},
		{
			name:         "Transient",
			err:          domain.ErrTransientConflict,
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: Response{Code: "TRANSIENT_CONFLICT", Message: domain.ErrTransientConflict.Message},
			retryAfter:   true,
		},
		{
			name:         "Deadline",
			err:          fmt.Errorf("query: %w", context.DeadlineExceeded),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: Response{Code: "TIMEOUT", Message: domain.ErrTimeout.Message},
			retryAfter:   true,
		},
		{
			name:         "Unknown",
			err:          errors.New("boom"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: Response{Code: "INTERNAL", Message: "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithDomainError(w, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var body Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.expectedBody, body)
			if tt.retryAfter {
				assert.NotEmpty(t, w.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusCreated, map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
}
