package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrStoreUnavailable marks lost store connectivity; it aborts the date.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrMatchNotFound marks a detail write for a match id without a Match row.
	ErrMatchNotFound = errors.New("match not found")
)
