package domain

import "fmt"

// Error carries a stable machine-readable code alongside the message, so
// handlers can map failures to HTTP responses without string matching.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Errorf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Stable error codes surfaced to API clients.
const (
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeSelfTransfer         = "SELF_TRANSFER"
	CodeWithdrawalBlocked    = "WITHDRAWAL_BLOCKED"
	CodeBelowMinPayout       = "BELOW_MIN_PAYOUT"
	CodeBonusNotWithdrawable = "BONUS_NOT_WITHDRAWABLE"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeForbidden            = "FORBIDDEN"
)

var (
	ErrInvalidAmount       = NewError(CodeInvalidAmount, "amount must be a positive integer")
	ErrInsufficientBalance = NewError(CodeInsufficientBalance, "insufficient FanCoin balance")
	ErrSelfTransfer        = NewError(CodeSelfTransfer, "sender and recipient must differ")
)
