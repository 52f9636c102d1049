package ledger

import "errors"

var (
	// ErrInvalidAmount rejects non-positive amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSameAccount rejects transfers where sender and receiver match.
	ErrSameAccount = errors.New("cannot transfer to the same account")
)
