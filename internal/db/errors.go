package db

import "errors"

// Domain-level database error sentinels.
var (
	// ErrUnknownPlatform is returned for a platform with no profile column.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrInvalidState is returned when a stored awaiting state cannot be parsed.
	ErrInvalidState = errors.New("invalid conversation state")
)
