package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/podiumd/podium/internal/domain/model"
	"github.com/podiumd/podium/internal/registry"
	"github.com/podiumd/podium/pkg/logger"
	"github.com/podiumd/podium/pkg/metrics"
)

// Directory is what the ledger needs from the entity registry: flat typed
// lookups, no query builder.
type Directory interface {
	Submission(ctx context.Context, id string) (model.Submission, error)
	Criterion(ctx context.Context, id string) (model.Criterion, error)
	IsJudge(ctx context.Context, judgeID, competitionID string) bool
	FreezeCriteria(ctx context.Context, competitionID string)
	Criteria(ctx context.Context, competitionID string) ([]model.Criterion, error)
}

// DirtyMarker receives the "this submission needs reaggregation" signal on
// every successful write. The call happens before RecordScore returns, so a
// write is never acknowledged without its recompute mark.
type DirtyMarker interface {
	MarkDirty(ctx context.Context, competitionID, submissionID string)
}

// Ledger validates and records judge scores.
type Ledger struct {
	store Store
	dir   Directory
	dirty DirtyMarker
	log   logger.Logger
}

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Ledger) {
		if l != nil {
			g.log = l
		}
	}
}

// New wires a ledger over a score store, the entity directory and the
// recompute dirty marker.
func New(store Store, dir Directory, dirty DirtyMarker, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		dir:   dir,
		dirty: dirty,
		log:   logger.Named("ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordScore validates and upserts one judge's rating of one submission
// against one criterion. Returns the stored score and whether it was newly
// created (false means an in-place update of the judge's earlier score).
func (l *Ledger) RecordScore(ctx context.Context, judgeID, submissionID, criterionID string, value float64, feedback string) (model.Score, bool, error) {
	sub, err := l.dir.Submission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			metrics.RecordScoreRejected("unknown_submission")
			return model.Score{}, false, fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
		}
		return model.Score{}, false, err
	}
	if !sub.Scoreable() {
		metrics.RecordScoreRejected("not_scoreable")
		return model.Score{}, false, fmt.Errorf("submission %s is %s: %w", submissionID, sub.State, ErrNotScoreable)
	}

	crit, err := l.dir.Criterion(ctx, criterionID)
	if err != nil || crit.CompetitionID != sub.CompetitionID {
		metrics.RecordScoreRejected("unknown_criterion")
		return model.Score{}, false, fmt.Errorf("criterion %s: %w", criterionID, ErrUnknownCriterion)
	}

	if !l.dir.IsJudge(ctx, judgeID, sub.CompetitionID) {
		metrics.RecordScoreRejected("unauthorized")
		return model.Score{}, false, fmt.Errorf("judge %s, competition %s: %w", judgeID, sub.CompetitionID, ErrUnauthorizedJudge)
	}

	if value < 0 || value > crit.MaxScore {
		metrics.RecordScoreRejected("out_of_range")
		return model.Score{}, false, fmt.Errorf("%w: value %v outside [0, %v]", ErrValidation, value, crit.MaxScore)
	}

	score, created, err := l.store.Upsert(ctx, model.Score{
		JudgeID:      judgeID,
		SubmissionID: submissionID,
		CriterionID:  criterionID,
		Value:        value,
		Feedback:     feedback,
	})
	if err != nil {
		return model.Score{}, false, fmt.Errorf("upsert score: %w", err)
	}

	// First accepted score locks the competition's criteria set.
	l.dir.FreezeCriteria(ctx, sub.CompetitionID)

	// Mark before returning: a write acknowledged to the judge must be
	// visible to the next recompute pass.
	l.dirty.MarkDirty(ctx, sub.CompetitionID, submissionID)

	if created {
		metrics.RecordScoreRecorded()
	} else {
		metrics.RecordScoreUpdated()
	}
	metrics.UpdateLedgerSize(l.store.Count(ctx))

	l.log.Debug(ctx, "score recorded",
		logger.String("judge", judgeID),
		logger.String("submission", submissionID),
		logger.String("criterion", criterionID),
		logger.Float64("value", value),
		logger.Bool("created", created),
	)
	return score, created, nil
}

// ListScores returns all scores for a submission ordered by criterion
// display order, then judge ID, for stable review views.
func (l *Ledger) ListScores(ctx context.Context, submissionID string) ([]model.Score, error) {
	sub, err := l.dir.Submission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
		}
		return nil, err
	}

	scores, err := l.store.BySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	criteria, err := l.dir.Criteria(ctx, sub.CompetitionID)
	if err != nil {
		return nil, err
	}
	orderOf := make(map[string]int, len(criteria))
	for i, c := range criteria {
		orderOf[c.ID] = i
	}
	sort.Slice(scores, func(i, j int) bool {
		oi, oj := orderOf[scores[i].CriterionID], orderOf[scores[j].CriterionID]
		if oi != oj {
			return oi < oj
		}
		return scores[i].JudgeID < scores[j].JudgeID
	})
	return scores, nil
}

// ScoresFor exposes the raw rows for the aggregation engine.
func (l *Ledger) ScoresFor(ctx context.Context, submissionID string) ([]model.Score, error) {
	scores, err := l.store.BySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return scores, nil
}

// Size returns the number of score rows in the backing store.
func (l *Ledger) Size(ctx context.Context) int {
	return l.store.Count(ctx)
}
