package domain

import "errors"

// Sentinel errors forming the service error taxonomy. Handlers map these to
// HTTP status codes; everything else is treated as a storage failure.
var (
	// ErrNotFound signals an unknown user, company, posting, match or swipe id
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSwipe signals that this party already recorded a decision
	// about this counterpart. Decisions are immutable, so the caller should
	// treat this as "already decided" rather than a failure.
	ErrDuplicateSwipe = errors.New("swipe already recorded for this pair")

	// ErrInvalidParty signals a swipe targeting an invalid counterpart,
	// e.g. swiping on oneself or on a user of the same role
	ErrInvalidParty = errors.New("invalid counterpart for swipe")

	// ErrValidation signals malformed input rejected before any write
	ErrValidation = errors.New("validation failed")
)
