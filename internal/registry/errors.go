package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrCriteriaFrozen    = errors.New("criteria are frozen once scoring has begun")
	ErrInvalidTransition = errors.New("invalid submission state transition")
)
