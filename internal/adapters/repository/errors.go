package repository

import "errors"

// Sentinel kinds for result store errors.
var (
	ErrNotFound     = errors.New("no committed result")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
