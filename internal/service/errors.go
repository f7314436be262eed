package service

import (
	"errors"
	"strings"
)

// Sentinel errors of the domain layer. Handlers dispatch on these with
// errors.Is; wrapped messages carry the specifics.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrStockLocked         = errors.New("stock record locked, use movements")
	ErrAmountMismatch      = errors.New("tender total does not match sale total")
	ErrVoucherInvalid      = errors.New("voucher not usable")
	ErrSequenceExhausted   = errors.New("sequence issuance exhausted")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
	ErrInvalidState        = errors.New("operation not allowed in current state")
)

// Retryable SQLSTATEs: serialization_failure, deadlock_detected,
// unique_violation (counter first-insert race), lock_not_available.
var retryableSQLStates = []string{"40001", "40P01", "23505", "55P03"}

// isRetryable reports whether err is a transient conflict worth retrying in a
// fresh transaction. GORM surfaces the driver error text, so we match on the
// SQLSTATE embedded in the message.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConcurrencyConflict) {
		return true
	}
	msg := err.Error()
	for _, state := range retryableSQLStates {
		if strings.Contains(msg, state) {
			return true
		}
	}
	return false
}
