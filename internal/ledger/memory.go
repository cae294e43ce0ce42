package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/podiumd/podium/internal/domain/model"
)

// MemoryStore implements Store with maps guarded by one mutex. The whole
// upsert is a single critical section, which is the per-row atomicity the
// aggregation engine relies on.
type MemoryStore struct {
	mu           sync.RWMutex
	byTriple     map[string]model.Score
	bySubmission map[string]map[string]struct{} // submissionID -> triple keys

	now func() time.Time
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the time source, for deterministic tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory score store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		byTriple:     make(map[string]model.Score),
		bySubmission: make(map[string]map[string]struct{}),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func tripleKey(judgeID, submissionID, criterionID string) string {
	return judgeID + "\x00" + submissionID + "\x00" + criterionID
}

// Upsert implements Store.
func (s *MemoryStore) Upsert(ctx context.Context, score model.Score) (model.Score, bool, error) {
	key := tripleKey(score.JudgeID, score.SubmissionID, score.CriterionID)
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byTriple[key]; ok {
		existing.Value = score.Value
		existing.Feedback = score.Feedback
		existing.UpdatedAt = now
		s.byTriple[key] = existing
		return existing, false, nil
	}

	score.ID = uuid.NewString()
	score.CreatedAt = now
	score.UpdatedAt = now
	s.byTriple[key] = score

	idx := s.bySubmission[score.SubmissionID]
	if idx == nil {
		idx = make(map[string]struct{})
		s.bySubmission[score.SubmissionID] = idx
	}
	idx[key] = struct{}{}
	return score, true, nil
}

// BySubmission implements Store.
func (s *MemoryStore) BySubmission(ctx context.Context, submissionID string) ([]model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.bySubmission[submissionID]
	out := make([]model.Score, 0, len(keys))
	for key := range keys {
		out = append(out, s.byTriple[key])
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byTriple)
}

// Close implements Store. Nothing to release.
func (s *MemoryStore) Close() error { return nil }
