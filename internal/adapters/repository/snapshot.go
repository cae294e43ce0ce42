package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/podiumd/podium/internal/domain/model"
	"github.com/podiumd/podium/pkg/metrics"
)

// snapshot is an immutable view of one competition's committed ranking.
// Commit builds a new one and swaps the pointer; readers holding the old one
// keep a consistent board.
type snapshot struct {
	ordered      []model.RankedEntry
	bySubmission map[string]model.RankedEntry
}

func buildSnapshot(entries []model.RankedEntry) *snapshot {
	s := &snapshot{
		ordered:      make([]model.RankedEntry, len(entries)),
		bySubmission: make(map[string]model.RankedEntry, len(entries)),
	}
	copy(s.ordered, entries)
	for _, e := range entries {
		s.bySubmission[e.SubmissionID] = e
	}
	return s
}

// SnapshotStore implements Store with per-competition immutable snapshots.
type SnapshotStore struct {
	mu     sync.RWMutex
	boards map[string]*snapshot
}

// NewSnapshotStore creates an empty results store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{boards: make(map[string]*snapshot)}
}

// Commit implements Store. The swap is the all-or-nothing point of a
// recalculation pass.
func (s *SnapshotStore) Commit(ctx context.Context, competitionID string, entries []model.RankedEntry) error {
	snap := buildSnapshot(entries)

	s.mu.Lock()
	s.boards[competitionID] = snap
	competitions := len(s.boards)
	total := 0
	for _, b := range s.boards {
		total += len(b.ordered)
	}
	s.mu.Unlock()

	metrics.RecordSnapshotCommit()
	metrics.UpdateCompetitions(competitions)
	metrics.UpdateTrackedSubmissions(total)
	return nil
}

func (s *SnapshotStore) board(competitionID string) *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boards[competitionID]
}

// TopN implements Store.
func (s *SnapshotStore) TopN(ctx context.Context, competitionID string, n int, track string) ([]model.RankedEntry, error) {
	if n < 1 {
		return nil, fmt.Errorf("limit %d: %w", n, ErrInvalidLimit)
	}
	snap := s.board(competitionID)
	if snap == nil {
		return []model.RankedEntry{}, nil
	}

	out := make([]model.RankedEntry, 0, n)
	for _, e := range snap.ordered {
		if e.Rank == nil {
			continue
		}
		if track != "" && e.Track != track {
			continue
		}
		out = append(out, e)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// Result implements Store.
func (s *SnapshotStore) Result(ctx context.Context, competitionID, submissionID string) (model.RankedEntry, error) {
	snap := s.board(competitionID)
	if snap == nil {
		return model.RankedEntry{}, fmt.Errorf("competition %s: %w", competitionID, ErrNotFound)
	}
	e, ok := snap.bySubmission[submissionID]
	if !ok {
		return model.RankedEntry{}, fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
	}
	return e, nil
}

// Competitions implements Store.
func (s *SnapshotStore) Competitions(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boards)
}

// Count implements Store.
func (s *SnapshotStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, b := range s.boards {
		total += len(b.ordered)
	}
	return total
}
