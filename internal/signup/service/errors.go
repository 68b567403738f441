package service

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every entry point. Handlers match these with
// errors.Is and never expose the wrapped detail.
var (
	ErrInvalidInvite   = errors.New("invalid or expired invite code")
	ErrConflict        = errors.New("invite code already used or expired")
	ErrUnauthorized    = errors.New("not permitted")
	ErrAuthCreate      = errors.New("identity provider rejected account creation")
	ErrRollbackFailure = errors.New("compensating rollback failed")
	ErrValidation      = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
)

// RollbackError is returned when a saga step failed and at least one
// compensation failed too. It still matches the original cause.
type RollbackError struct {
	Cause        error
	Compensation error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%v (rollback failed: %v)", e.Cause, e.Compensation)
}

func (e *RollbackError) Unwrap() []error {
	return []error{e.Cause, ErrRollbackFailure, e.Compensation}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
