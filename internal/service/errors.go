package service

import "errors"

// Validation and state-conflict errors reported back to the caller.
// Persistence failures are never surfaced here; the cache commit already
// succeeded and the durable write is retried by the autosave.
var (
	ErrInvalidAmount       = errors.New("amount must be non-negative")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyPrivileged   = errors.New("privilege already active")
)
