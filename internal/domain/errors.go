package domain

import (
	"errors"

	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindBusiness
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindTransient
)

// Error is a failure with a stable machine-readable code. Wrap values with %w
// to add context.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors with the same code, so a sentinel also matches a copy
// carrying a more specific message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidAmount    = newError(KindValidation, "INVALID_AMOUNT", "amount must be a positive number of cents")
	ErrAmountOutOfRange = newError(KindValidation, "AMOUNT_OUT_OF_RANGE", "amount is out of range")
	ErrInvalidRequest   = newError(KindValidation, "INVALID_REQUEST", "invalid request")

	ErrInsufficientAvailableBalance = newError(KindBusiness, "INSUFFICIENT_AVAILABLE_BALANCE", "insufficient available balance")
	ErrReservationUnderflow         = newError(KindBusiness, "RESERVATION_UNDERFLOW", "release exceeds reserved balance")
	ErrInvalidWithdrawPassword      = newError(KindBusiness, "INVALID_WITHDRAW_PASSWORD", "invalid withdraw password")
	ErrWithdrawPasswordNotSet       = newError(KindBusiness, "WITHDRAW_PASSWORD_NOT_SET", "withdraw password is not set")
	ErrNotEligible                  = newError(KindBusiness, "NOT_ELIGIBLE", "not eligible for this reward")
	ErrNoSpinCredits                = newError(KindBusiness, "NO_SPIN_CREDITS", "no spin credits available")
	ErrInvalidStatusTransition      = newError(KindBusiness, "INVALID_STATUS_TRANSITION", "invalid status transition")
	ErrSelfTransferNotAllowed       = newError(KindBusiness, "SELF_TRANSFER_NOT_ALLOWED", "cannot send money to yourself")
	ErrProductInactive              = newError(KindBusiness, "PRODUCT_INACTIVE", "product is not available")
	ErrPasswordMismatch             = newError(KindValidation, "PASSWORD_MISMATCH", "passwords do not match")
	ErrInvalidWithdrawMethod        = newError(KindValidation, "INVALID_WITHDRAW_METHOD", "invalid withdrawal method or destination")

	ErrUserNotFound       = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrOrderNotFound      = newError(KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrProductNotFound    = newError(KindNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrWithdrawalNotFound = newError(KindNotFound, "WITHDRAWAL_NOT_FOUND", "withdrawal not found")

	ErrEmailTaken         = newError(KindConflict, "EMAIL_TAKEN", "email already registered")
	ErrReferralCodeTaken  = newError(KindConflict, "REFERRAL_CODE_TAKEN", "referral code already in use")
	ErrInvalidInviteCode  = newError(KindValidation, "INVALID_INVITE_CODE", "invalid invite code")
	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	ErrInvalidToken       = newError(KindUnauthorized, "INVALID_TOKEN", "invalid or expired token")
	ErrAccountDisabled    = newError(KindForbidden, "ACCOUNT_DISABLED", "account is disabled")
	ErrUnauthorized       = newError(KindUnauthorized, "UNAUTHORIZED", "authentication required")
	ErrForbidden          = newError(KindForbidden, "FORBIDDEN", "insufficient permissions")

	ErrTransientConflict = newError(KindTransient, "TRANSIENT_CONFLICT", "concurrent update, please retry")
	ErrTimeout           = newError(KindTransient, "TIMEOUT", "operation timed out, no changes were applied")
)

// AmountError translates money package failures into their domain errors.
func AmountError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, money.ErrAmountOutOfRange):
		return ErrAmountOutOfRange
	case errors.Is(err, money.ErrInvalidAmount):
		return ErrInvalidAmount
	default:
		return err
	}
}

// InvalidRequest is ErrInvalidRequest with a message naming what is wrong.
func InvalidRequest(message string) error {
	return newError(KindValidation, ErrInvalidRequest.Code, message)
}
