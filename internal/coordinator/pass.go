package coordinator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/podiumd/podium/internal/domain/aggregate"
	"github.com/podiumd/podium/internal/domain/model"
	"github.com/podiumd/podium/internal/domain/rank"
	"github.com/podiumd/podium/pkg/logger"
	"github.com/podiumd/podium/pkg/metrics"
)

// runPass executes one full recalculation: drain the dirty set, recompute
// stale aggregates, dense-rank the eligible set and commit the snapshot.
// Nothing is published until the commit; an error leaves the previous
// committed ranking untouched and restores the drained dirty marks so the
// next trigger redoes the work.
func (c *Coordinator) runPass(ctx context.Context, competitionID string) error {
	start := time.Now()

	drained := c.dirty.Drain(competitionID)

	criteria, err := c.dir.Criteria(ctx, competitionID)
	if err != nil {
		c.dirty.Restore(competitionID, drained)
		return fmt.Errorf("%w: load criteria: %w", ErrPassAborted, err)
	}
	submissions, err := c.dir.Submissions(ctx, competitionID)
	if err != nil {
		c.dirty.Restore(competitionID, drained)
		return fmt.Errorf("%w: load submissions: %w", ErrPassAborted, err)
	}

	// Recompute dirty submissions, plus any the cache has never seen (a
	// restarted process over a durable ledger starts with a cold cache).
	stale := make(map[string]struct{}, len(drained))
	for _, id := range drained {
		stale[id] = struct{}{}
	}
	for _, sub := range submissions {
		if sub.State == model.SubmissionDraft {
			continue
		}
		if _, ok := c.aggregates.Load(sub.ID); !ok {
			stale[sub.ID] = struct{}{}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxFanout)
	for id := range stale {
		g.Go(func() error {
			scores, err := c.scores.ScoresFor(gctx, id)
			if err != nil {
				return fmt.Errorf("submission %s: %w", id, err)
			}
			agg, err := aggregate.Compute(scores, criteria)
			if err != nil {
				return fmt.Errorf("submission %s: %w", id, err)
			}
			c.aggregates.Store(id, agg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.dirty.Restore(competitionID, drained)
		return fmt.Errorf("%w: %w", ErrPassAborted, err)
	}

	// Rank the eligible set; disqualified submissions keep their last
	// aggregate but have rank forced clear and stay off the board.
	candidates := make([]rank.Candidate, 0, len(submissions))
	var disqualified []model.RankedEntry
	for _, sub := range submissions {
		agg := c.cachedAggregate(sub.ID)
		switch sub.State {
		case model.SubmissionFinalized:
			candidates = append(candidates, rank.Candidate{
				SubmissionID: sub.ID,
				Track:        sub.Track,
				Aggregate:    agg,
				SubmittedAt:  sub.CreatedAt,
			})
		case model.SubmissionDisqualified:
			disqualified = append(disqualified, model.RankedEntry{
				SubmissionID: sub.ID,
				Track:        sub.Track,
				Aggregate:    agg,
				SubmittedAt:  sub.CreatedAt,
			})
		case model.SubmissionDraft:
			// not yet part of the competition
		}
	}

	entries := rank.Dense(candidates)
	ranked := 0
	for _, e := range entries {
		if e.Rank != nil {
			ranked++
		}
	}
	entries = append(entries, disqualified...)

	if err := c.results.Commit(ctx, competitionID, entries); err != nil {
		c.dirty.Restore(competitionID, drained)
		return fmt.Errorf("%w: commit: %w", ErrPassAborted, err)
	}

	for _, p := range c.publishers {
		p.PublishRanking(ctx, competitionID, entries)
	}

	metrics.RecordRecomputePass()
	metrics.RecordPassDuration(float64(time.Since(start).Milliseconds()))
	metrics.RecordSubmissionsRanked(ranked)

	c.log.Info(ctx, "ranking pass committed",
		logger.String("competition", competitionID),
		logger.Int("recomputed", len(stale)),
		logger.Int("ranked", ranked),
		logger.Int("entries", len(entries)),
	)
	return nil
}

func (c *Coordinator) cachedAggregate(submissionID string) *float64 {
	v, ok := c.aggregates.Load(submissionID)
	if !ok {
		return nil
	}
	agg, _ := v.(*float64)
	return agg
}
