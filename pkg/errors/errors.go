package errors

import "fmt"

// UserError is an error safe to return to API callers: a stable code plus a
// human-readable message.
type UserError struct {
	Code    string
	Message string
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code, message string) *UserError {
	return &UserError{Code: code, Message: message}
}

// Payment related errors
var (
	ErrChannelNotFound    = New("payment.channel_not_found", "Payment channel not found")
	ErrReferenceRequired  = New("payment.reference_required", "Enrollment reference is required")
	ErrAmountInvalid      = New("payment.amount_invalid", "Amount must be a positive number of cents")
	ErrCustomerIncomplete = New("payment.customer_incomplete", "Customer name, email and tax id are required")
	ErrOrderNotFound      = New("payment.order_not_found", "Payment order not found")
	ErrPaymentURLMissing  = New("payment.url_missing", "Vendor did not return a payment URL")
)

// OAuth related errors
var (
	ErrOAuthCodeMissing = New("oauth.code_missing", "Authorization code is missing")
	ErrOAuthExchange    = New("oauth.exchange_failed", "Failed to exchange authorization code")
	ErrTokenSaveFailed  = New("oauth.token_save_failed", "Failed to persist token")
)
