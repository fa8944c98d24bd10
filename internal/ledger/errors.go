package ledger

import "errors"

// Sentinel errors returned by ledger operations. Callers match with
// errors.Is; the HTTP layer maps them to response codes.
var (
	// ErrValidation covers malformed or below-minimum requests. The
	// attempted mutation is discarded whole.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientFunds is returned when a buy or withdrawal exceeds the
	// wallet balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound is returned for operations referencing an unknown trade,
	// transaction or instrument.
	ErrNotFound = errors.New("not found")
)
