package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownPeriod     = errors.New("unknown premium period")
	ErrUnauthorized      = errors.New("unauthorized")
)

// TransitionError reports a rejected status change together with the status
// the order actually had at the time.
type TransitionError struct {
	OrderID int64
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %d: cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// InputError is a recoverable user-input problem; the conversation re-prompts.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// NewInputError creates an InputError
func NewInputError(reason string) error {
	return &InputError{Reason: reason}
}
