package solver

import "errors"

var (
	// ErrUnknownStrategy is returned when a strategy name is not recognised.
	ErrUnknownStrategy = errors.New("unknown solver strategy")
	// ErrTooManyItems is returned when a catalog is too large for exhaustive search.
	ErrTooManyItems = errors.New("catalog too large for exhaustive search")
)
