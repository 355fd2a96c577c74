package agency

import "errors"

// Failure taxonomy. Everything here is recoverable: the day cycle keeps
// advancing regardless of any individual operation failing.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrBadRequest        = errors.New("bad request")
	ErrPersistence       = errors.New("persistence unavailable")
)
