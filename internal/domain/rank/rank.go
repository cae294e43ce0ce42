// Package rank totally orders a competition's eligible submissions by
// aggregate score using dense competition ranking: tied aggregates share a
// rank and the next distinct aggregate gets the previous rank plus one, so
// ranks are gapless.
package rank

import (
	"sort"
	"time"

	"github.com/podiumd/podium/internal/domain/model"
)

// Candidate is one eligible submission entering a ranking pass. A nil
// Aggregate means the submission has no scores yet; it is carried through
// with a nil rank rather than dropped, so reads still find it.
type Candidate struct {
	SubmissionID string
	Track        string
	Aggregate    *float64
	SubmittedAt  time.Time
}

// Dense orders candidates and assigns dense ranks. The returned slice is the
// display order: judged submissions by aggregate descending with ties broken
// by submission time ascending (then ID, so the order is total), followed by
// unjudged submissions in submission order.
//
// Tie-breaking affects display order only; tied aggregates keep the same
// rank number. Aggregates must already be rounded by the aggregation engine;
// ranking compares them exactly.
func Dense(candidates []Candidate) []model.RankedEntry {
	judged := make([]Candidate, 0, len(candidates))
	unjudged := make([]Candidate, 0)
	for _, c := range candidates {
		if c.Aggregate != nil {
			judged = append(judged, c)
		} else {
			unjudged = append(unjudged, c)
		}
	}

	sort.Slice(judged, func(i, j int) bool {
		a, b := judged[i], judged[j]
		if *a.Aggregate != *b.Aggregate {
			return *a.Aggregate > *b.Aggregate
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.SubmissionID < b.SubmissionID
	})
	sort.Slice(unjudged, func(i, j int) bool {
		a, b := unjudged[i], unjudged[j]
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.SubmissionID < b.SubmissionID
	})

	entries := make([]model.RankedEntry, 0, len(candidates))
	current := 0
	var prev float64
	for i, c := range judged {
		if i == 0 || *c.Aggregate != prev {
			current++
			prev = *c.Aggregate
		}
		r := current
		entries = append(entries, model.RankedEntry{
			SubmissionID: c.SubmissionID,
			Track:        c.Track,
			Aggregate:    c.Aggregate,
			Rank:         &r,
			SubmittedAt:  c.SubmittedAt,
		})
	}
	for _, c := range unjudged {
		entries = append(entries, model.RankedEntry{
			SubmissionID: c.SubmissionID,
			Track:        c.Track,
			SubmittedAt:  c.SubmittedAt,
		})
	}
	return entries
}
