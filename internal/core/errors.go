package core

import (
	"errors"
	"fmt"
)

// Reason identifies why a mutation was refused. Validation failures are
// always recoverable locally: the caller fixes the input and retries.
type Reason string

const (
	ReasonInvalidInput        Reason = "invalid_input"
	ReasonInvalidAmount       Reason = "invalid_amount"
	ReasonInsufficientFunds   Reason = "insufficient_funds"
	ReasonLoanDenied          Reason = "loan_denied"
	ReasonPaymentOverBalance  Reason = "payment_exceeds_balance"
	ReasonReversedDateRange   Reason = "reversed_date_range"
	ReasonUnderAge            Reason = "under_age"
	ReasonMissingMember       Reason = "missing_member"
	ReasonCodeRetriesExceeded Reason = "member_code_retries_exceeded"
)

// ValidationError reports bad input. Where a computed limit explains the
// refusal (current savings, loan ceiling, outstanding balance) it is carried
// in LimitCents so the caller can display it.
type ValidationError struct {
	Reason     Reason
	Msg        string
	LimitCents int64
}

func (e *ValidationError) Error() string {
	if e.LimitCents != 0 {
		return fmt.Sprintf("%s (limit %s)", e.Msg, FormatPesos(e.LimitCents))
	}
	return e.Msg
}

// NotFoundError reports a member or loan absent from the snapshot or store.
// Recoverable: the caller should re-fetch.
type NotFoundError struct {
	Kind string // "member" or "loan"
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found: " + e.ID
}

// StoreCategory distinguishes store failures for messaging only; the
// underlying error is surfaced verbatim.
type StoreCategory string

const (
	StorePermission  StoreCategory = "permission"
	StoreUnavailable StoreCategory = "unavailable"
	StoreInternal    StoreCategory = "internal"
)

// StoreError wraps a failure from the durable store. Never swallowed; the
// service layer passes it up with the category attached.
type StoreError struct {
	Category StoreCategory
	Op       string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %s: %v", e.Op, e.Category, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may reasonably retry the operation.
func (e *StoreError) Retryable() bool { return e.Category == StoreUnavailable }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
