package ledger

import "errors"

// Sentinel kinds for ledger errors.
var (
	// ErrUnauthorizedJudge means the judge holds no grant for the
	// submission's competition. Surfaced synchronously, never retried.
	ErrUnauthorizedJudge = errors.New("judge not authorized for competition")

	// ErrValidation covers out-of-range values and malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownCriterion means the criterion does not exist or belongs to a
	// different competition than the submission.
	ErrUnknownCriterion = errors.New("unknown criterion for competition")

	// ErrNotScoreable means the submission is not in the finalized state.
	ErrNotScoreable = errors.New("submission not scoreable")

	// ErrNotFound is returned for unknown submissions.
	ErrNotFound = errors.New("not found")
)
