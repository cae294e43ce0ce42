// Package registry holds the entities the scoring engine consumes from its
// collaborators: competitions, their criteria, judge grants and submissions
// with eligibility state. It is the validation gate for criteria (positive
// max score, weight in (0,1]) and enforces their immutability once scoring
// has begun.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/podiumd/podium/internal/domain/model"
)

var validate = validator.New()

// Registry is an in-memory record of competition entities. All methods are
// safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	competitions map[string]model.Competition
	criteria     map[string]model.Criterion // by criterion ID
	judges       map[string]model.Judge     // by judgeID + "\x00" + competitionID
	submissions  map[string]model.Submission
	frozen       map[string]bool // competitionID -> criteria locked

	now func() time.Time
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		competitions: make(map[string]model.Competition),
		criteria:     make(map[string]model.Criterion),
		judges:       make(map[string]model.Judge),
		submissions:  make(map[string]model.Submission),
		frozen:       make(map[string]bool),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func judgeKey(judgeID, competitionID string) string {
	return judgeID + "\x00" + competitionID
}

// CreateCompetition registers a competition and returns it with its ID set.
func (r *Registry) CreateCompetition(ctx context.Context, name string) (model.Competition, error) {
	c := model.Competition{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: r.now().UTC(),
	}
	if err := validate.StructCtx(ctx, &c); err != nil {
		return model.Competition{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.competitions[c.ID] = c
	return c, nil
}

// Competition returns a competition by ID.
func (r *Registry) Competition(ctx context.Context, id string) (model.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.competitions[id]
	if !ok {
		return model.Competition{}, fmt.Errorf("competition %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// AddCriterion validates and registers a criterion. Fails once scoring has
// begun for the competition: criteria are immutable from the first score on.
func (r *Registry) AddCriterion(ctx context.Context, c model.Criterion) (model.Criterion, error) {
	c.ID = uuid.NewString()
	if err := validate.StructCtx(ctx, &c); err != nil {
		return model.Criterion{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.competitions[c.CompetitionID]; !ok {
		return model.Criterion{}, fmt.Errorf("competition %s: %w", c.CompetitionID, ErrNotFound)
	}
	if r.frozen[c.CompetitionID] {
		return model.Criterion{}, fmt.Errorf("competition %s: %w", c.CompetitionID, ErrCriteriaFrozen)
	}
	r.criteria[c.ID] = c
	return c, nil
}

// Criterion returns a criterion by ID.
func (r *Registry) Criterion(ctx context.Context, id string) (model.Criterion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.criteria[id]
	if !ok {
		return model.Criterion{}, fmt.Errorf("criterion %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// Criteria returns a competition's criteria ordered by display order, then
// name, so iteration is deterministic.
func (r *Registry) Criteria(ctx context.Context, competitionID string) ([]model.Criterion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.competitions[competitionID]; !ok {
		return nil, fmt.Errorf("competition %s: %w", competitionID, ErrNotFound)
	}
	out := make([]model.Criterion, 0)
	for _, c := range r.criteria {
		if c.CompetitionID == competitionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// FreezeCriteria locks the competition's criteria set. Called when the first
// score referencing the competition lands; idempotent.
func (r *Registry) FreezeCriteria(ctx context.Context, competitionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen[competitionID] = true
}

// GrantJudge records that judgeID may score submissions in competitionID.
func (r *Registry) GrantJudge(ctx context.Context, judgeID, competitionID string) (model.Judge, error) {
	j := model.Judge{
		ID:            judgeID,
		CompetitionID: competitionID,
		GrantedAt:     r.now().UTC(),
	}
	if err := validate.StructCtx(ctx, &j); err != nil {
		return model.Judge{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.competitions[competitionID]; !ok {
		return model.Judge{}, fmt.Errorf("competition %s: %w", competitionID, ErrNotFound)
	}
	r.judges[judgeKey(judgeID, competitionID)] = j
	return j, nil
}

// IsJudge reports whether judgeID holds a grant for competitionID.
func (r *Registry) IsJudge(ctx context.Context, judgeID, competitionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.judges[judgeKey(judgeID, competitionID)]
	return ok
}

// CreateSubmission registers a draft submission.
func (r *Registry) CreateSubmission(ctx context.Context, competitionID, track string) (model.Submission, error) {
	s := model.Submission{
		ID:            uuid.NewString(),
		CompetitionID: competitionID,
		Track:         track,
		State:         model.SubmissionDraft,
		CreatedAt:     r.now().UTC(),
	}
	if err := validate.StructCtx(ctx, &s); err != nil {
		return model.Submission{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.competitions[competitionID]; !ok {
		return model.Submission{}, fmt.Errorf("competition %s: %w", competitionID, ErrNotFound)
	}
	r.submissions[s.ID] = s
	return s, nil
}

// Submission returns a submission by ID.
func (r *Registry) Submission(ctx context.Context, id string) (model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.submissions[id]
	if !ok {
		return model.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// Submissions returns all submissions in a competition, submission time
// ascending.
func (r *Registry) Submissions(ctx context.Context, competitionID string) ([]model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.competitions[competitionID]; !ok {
		return nil, fmt.Errorf("competition %s: %w", competitionID, ErrNotFound)
	}
	out := make([]model.Submission, 0)
	for _, s := range r.submissions {
		if s.CompetitionID == competitionID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FinalizeSubmission moves a draft submission into the scoreable state.
func (r *Registry) FinalizeSubmission(ctx context.Context, id string) (model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok {
		return model.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	if s.State != model.SubmissionDraft {
		return model.Submission{}, fmt.Errorf("submission %s is %s: %w", id, s.State, ErrInvalidTransition)
	}
	s.State = model.SubmissionFinalized
	r.submissions[id] = s
	return s, nil
}

// DisqualifySubmission excludes a finalized submission from ranking. The
// next recalculation pass clears its rank.
func (r *Registry) DisqualifySubmission(ctx context.Context, id string) (model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok {
		return model.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	if s.State != model.SubmissionFinalized {
		return model.Submission{}, fmt.Errorf("submission %s is %s: %w", id, s.State, ErrInvalidTransition)
	}
	s.State = model.SubmissionDisqualified
	r.submissions[id] = s
	return s, nil
}
