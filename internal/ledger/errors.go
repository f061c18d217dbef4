package ledger

import "errors"

// Domain validation errors. All of them are caller input/state errors and are
// surfaced to the API layer as user-facing messages, never retried.
var (
	ErrInvalidScheduleInput  = errors.New("invalid schedule input")
	ErrCreditLimitExceeded   = errors.New("credit limit exceeded")
	ErrInvalidPaymentAmount  = errors.New("payment amount must be greater than zero")
	ErrPaymentExceedsBalance = errors.New("payment exceeds the installment's open balance")
)
