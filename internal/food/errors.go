package food

import "errors"

var (
	// ErrEmptyDescription is returned when an item is constructed without a description.
	ErrEmptyDescription = errors.New("food description must be non-empty")
	// ErrInvalidCalories is returned when an item's calorie cost is not strictly positive.
	ErrInvalidCalories = errors.New("food calories must be a positive number")
)
