package models

import "errors"

var (
	// ErrInvalidArgument marks caller errors such as an unknown window token
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable marks a store that is unreachable or failing.
	// It is distinct from a query that returns zero rows.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTickFailure marks a simulator tick whose write did not land
	ErrTickFailure = errors.New("simulation tick failed")
)
