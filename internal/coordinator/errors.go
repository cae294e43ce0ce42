package coordinator

import "errors"

// Sentinel kinds for coordinator errors.
var (
	// ErrBackpressure means the recompute queue is full; the trigger was not
	// accepted and may be retried.
	ErrBackpressure = errors.New("recompute queue full")

	// ErrStopped means the coordinator is shut down.
	ErrStopped = errors.New("coordinator stopped")

	// ErrPassAborted wraps the cause of a halted ranking pass. The previous
	// committed ranking stays in place.
	ErrPassAborted = errors.New("ranking pass aborted")
)
