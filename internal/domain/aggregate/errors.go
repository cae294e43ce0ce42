package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	// ErrInvalidCriterion marks a criterion with a non-positive max score or
	// weight. Such criteria are rejected at registration; seeing one here
	// means the registry was bypassed.
	ErrInvalidCriterion = errors.New("invalid criterion")

	// ErrCriterionMismatch marks a score referencing a criterion that is not
	// part of the competition's criteria set.
	ErrCriterionMismatch = errors.New("score references unknown criterion")
)
