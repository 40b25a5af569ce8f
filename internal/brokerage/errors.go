package brokerage

import "errors"

// Sentinel errors returned by the services. Callers classify outcomes with
// errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrNotFound means a referenced account or trade id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation means a state precondition is violated: the
	// account already has an address, there is no address to update or
	// delete, a required id is missing, or a trade does not belong to the
	// account it was addressed through.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidTradeStatus means a cancellation was attempted on a trade
	// that is not in SUBMITTED status.
	ErrInvalidTradeStatus = errors.New("invalid trade status")
)
