// Package config defines service configuration and its layered loading.
//
// Conventions:
// - Defaults come from New; file and env only override.
// - All loading functions accept context.Context first.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// RecomputeQueueSize bounds the queue of pending ranking triggers.
	RecomputeQueueSize int `koanf:"recompute_queue_size" validate:"gt=0"`

	// RecomputeWorkers sets how many ranking passes may run in parallel
	// (always at most one per competition).
	RecomputeWorkers int `koanf:"recompute_workers" validate:"gt=0"`

	// AggregateParallelism bounds concurrent per-submission aggregation
	// inside one pass.
	AggregateParallelism int `koanf:"aggregate_parallelism" validate:"gt=0"`

	// MaxLeaderboardLimit caps GET leaderboard ?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"gt=0"`

	// ScoreRateRPS and ScoreRateBurst shape the per-judge token bucket on
	// score submission.
	ScoreRateRPS   float64 `koanf:"score_rate_rps" validate:"gt=0"`
	ScoreRateBurst int     `koanf:"score_rate_burst" validate:"gt=0"`

	// StorageDriver selects the score ledger backend: memory, sqlite3 or
	// postgres. StorageDSN applies to the SQL drivers.
	StorageDriver string `koanf:"storage_driver" validate:"oneof=memory sqlite3 postgres"`
	StorageDSN    string `koanf:"storage_dsn"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		RecomputeQueueSize:   1024,
		RecomputeWorkers:     4,
		AggregateParallelism: runtime.NumCPU(),
		MaxLeaderboardLimit:  100,
		ScoreRateRPS:         10,
		ScoreRateBurst:       20,
		StorageDriver:        "memory",
		StorageDSN:           "",
	}
}
