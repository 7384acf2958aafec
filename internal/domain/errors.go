package domain

import "errors"

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrUtilityNotFound   = errors.New("utility not found")
	ErrNotBillable       = errors.New("utility is not billable")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidCode       = errors.New("verification code too short")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrInFlight          = errors.New("request already in flight")
	ErrCancelled         = errors.New("request cancelled")
	ErrInvariant         = errors.New("invariant violated")
)
