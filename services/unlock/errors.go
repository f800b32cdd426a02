package unlock

import "fmt"

// Code classifies unlock failures for the HTTP layer.
type Code string

const (
	CodeInsufficientPoints Code = "insufficient_points"
	CodeAlreadyUnlocked    Code = "already_unlocked"
	CodePaymentPending     Code = "payment_pending"
	CodePaymentMismatch    Code = "payment_mismatch"
	CodePaymentUnavailable Code = "payment_unavailable"
	CodeInProgress         Code = "in_progress"
)

// Error is an unlock failure with a code. Two Errors match under errors.Is
// when their codes are equal.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInsufficientPoints = &Error{Code: CodeInsufficientPoints, Message: "insufficient points"}
	ErrAlreadyUnlocked    = &Error{Code: CodeAlreadyUnlocked, Message: "schedule already unlocked"}
	ErrPaymentPending     = &Error{Code: CodePaymentPending, Message: "payment has not succeeded"}
	ErrPaymentMismatch    = &Error{Code: CodePaymentMismatch, Message: "payment does not belong to this unlock"}
	ErrPaymentUnavailable = &Error{Code: CodePaymentUnavailable, Message: "card payments are not configured"}
	ErrInProgress         = &Error{Code: CodeInProgress, Message: "another unlock for this tour is in progress"}
)
