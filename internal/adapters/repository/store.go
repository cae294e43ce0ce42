// Package repository holds the committed results of recalculation passes:
// one leaderboard snapshot per competition. External readers only ever see a
// fully committed snapshot, never a partially updated ranking.
package repository

import (
	"context"

	"github.com/podiumd/podium/internal/domain/model"
)

// Store provides commit and read access to ranking results.
type Store interface {
	// Commit atomically replaces the competition's snapshot with the given
	// entries (display order as produced by the ranking engine).
	Commit(ctx context.Context, competitionID string, entries []model.RankedEntry) error

	// TopN returns up to n ranked entries for a competition, optionally
	// filtered to one track. Unranked entries never appear on the board.
	TopN(ctx context.Context, competitionID string, n int, track string) ([]model.RankedEntry, error)

	// Result returns the committed entry for one submission.
	// Returns ErrNotFound if no snapshot covers it.
	Result(ctx context.Context, competitionID, submissionID string) (model.RankedEntry, error)

	// Competitions returns the number of competitions with a committed
	// snapshot.
	Competitions(ctx context.Context) int

	// Count returns the number of submissions across all snapshots.
	Count(ctx context.Context) int
}
