// Package ledger is the append/update store of individual judge scores. It
// enforces the one-score-per-(judge, submission, criterion) invariant: a
// repeat write for the same triple updates the existing row in place.
package ledger

import (
	"context"

	"github.com/podiumd/podium/internal/domain/model"
)

// Store persists score rows. Implementations must make Upsert atomic for a
// given triple: two concurrent writes for the same (judge, submission,
// criterion) collapse to one row holding one of the two values, never two
// rows and never a torn mix.
type Store interface {
	// Upsert inserts the score or, when the triple already exists, replaces
	// its value and feedback and bumps the update timestamp. Returns the
	// stored row and whether it was newly created.
	Upsert(ctx context.Context, score model.Score) (model.Score, bool, error)

	// BySubmission returns all score rows for a submission.
	BySubmission(ctx context.Context, submissionID string) ([]model.Score, error)

	// Count returns the total number of score rows.
	Count(ctx context.Context) int

	// Close releases store resources.
	Close() error
}
