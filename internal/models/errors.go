package models

import "errors"

// Common errors
var (
	ErrMalformedRecord    = errors.New("malformed roster record")
	ErrPoolExhausted      = errors.New("no participants left to draw for this tier")
	ErrDuplicateWinner    = errors.New("participant has already won")
	ErrPersistenceFailure = errors.New("failed to persist winners")
	ErrUnknownTier        = errors.New("tier not found")
	ErrUnknownRoster      = errors.New("roster not found")
	ErrDrawInProgress     = errors.New("another draw is in progress")
	ErrNotFound           = errors.New("key not found")
)
