// Package app assembles the scoring engine: registry, score ledger,
// recalculation coordinator, results repository and live feed, wired
// together with plain constructors.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/podiumd/podium/internal/adapters/http/live"
	"github.com/podiumd/podium/internal/adapters/repository"
	"github.com/podiumd/podium/internal/coordinator"
	"github.com/podiumd/podium/internal/domain/model"
	"github.com/podiumd/podium/internal/ledger"
	"github.com/podiumd/podium/internal/registry"
	"github.com/podiumd/podium/pkg/logger"
)

// Service exposes the engine's operations to the HTTP layer.
type Service struct {
	mu sync.Mutex

	registry *registry.Registry
	store    ledger.Store
	ledger   *ledger.Ledger
	coord    *coordinator.Coordinator
	results  repository.Store
	hub      *live.Hub

	// Configuration
	workerCount          int
	queueSize            int
	aggregateParallelism int
	storageDriver        string
	storageDSN           string

	started bool
	log     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ranking pass workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithQueueSize bounds the recompute trigger queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithAggregateParallelism bounds concurrent aggregation inside a pass.
func WithAggregateParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.aggregateParallelism = n
		}
	}
}

// WithStorage selects the ledger backend: memory, sqlite3 or postgres.
func WithStorage(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storageDriver = driver
			s.storageDSN = dsn
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:          4,
		queueSize:            1024,
		aggregateParallelism: runtime.NumCPU(),
		storageDriver:        "memory",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and starts the engine components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Named("app")
	}

	s.registry = registry.New()
	s.results = repository.NewSnapshotStore()
	s.hub = live.NewHub()

	switch s.storageDriver {
	case "memory", "":
		s.store = ledger.NewMemoryStore()
	default:
		store, err := ledger.OpenSQLStore(ctx, s.storageDriver, s.storageDSN)
		if err != nil {
			return fmt.Errorf("open ledger store: %w", err)
		}
		s.store = store
	}

	s.coord = coordinator.New(
		&scoreSource{store: s.store},
		s.registry,
		s.results,
		coordinator.WithWorkerCount(s.workerCount),
		coordinator.WithQueueSize(s.queueSize),
		coordinator.WithAggregateParallelism(s.aggregateParallelism),
		coordinator.WithPublisher(s.hub),
	)
	s.ledger = ledger.New(s.store, s.registry, s.coord)

	go s.hub.Run(ctx)
	s.coord.Start(ctx)

	s.started = true
	s.log.Info(ctx, "scoring engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("storage", s.storageDriver),
	)
	return nil
}

// Stop shuts the engine down, finishing in-flight ranking passes.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.coord.Stop()
	if err := s.store.Close(); err != nil {
		s.log.Error(context.Background(), "close ledger store", logger.Error(err))
	}
	s.started = false
	s.log.Info(context.Background(), "scoring engine stopped")
}

// scoreSource adapts the ledger store to the coordinator's read contract.
type scoreSource struct {
	store ledger.Store
}

func (s *scoreSource) ScoresFor(ctx context.Context, submissionID string) ([]model.Score, error) {
	return s.store.BySubmission(ctx, submissionID)
}

// SubmitScore records or updates one judge's score.
func (s *Service) SubmitScore(ctx context.Context, judgeID, submissionID, criterionID string, value float64, feedback string) (model.Score, bool, error) {
	return s.ledger.RecordScore(ctx, judgeID, submissionID, criterionID, value, feedback)
}

// GetScores lists a submission's scores for review views.
func (s *Service) GetScores(ctx context.Context, submissionID string) ([]model.Score, error) {
	return s.ledger.ListScores(ctx, submissionID)
}

// TriggerRanking schedules a recalculation pass.
func (s *Service) TriggerRanking(ctx context.Context, competitionID string) (coordinator.TriggerStatus, error) {
	if _, err := s.registry.Competition(ctx, competitionID); err != nil {
		return "", err
	}
	return s.coord.TriggerRanking(ctx, competitionID)
}

// Leaderboard returns the committed top-N for a competition.
func (s *Service) Leaderboard(ctx context.Context, competitionID string, n int, track string) ([]model.RankedEntry, error) {
	if _, err := s.registry.Competition(ctx, competitionID); err != nil {
		return nil, err
	}
	return s.results.TopN(ctx, competitionID, n, track)
}

// Aggregate returns the committed (aggregate, rank) pair for a submission.
// A submission no pass has covered yet comes back with both fields nil.
func (s *Service) Aggregate(ctx context.Context, submissionID string) (model.RankedEntry, error) {
	sub, err := s.registry.Submission(ctx, submissionID)
	if err != nil {
		return model.RankedEntry{}, err
	}
	entry, err := s.results.Result(ctx, sub.CompetitionID, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.RankedEntry{
				SubmissionID: sub.ID,
				Track:        sub.Track,
				SubmittedAt:  sub.CreatedAt,
			}, nil
		}
		return model.RankedEntry{}, err
	}
	return entry, nil
}

// Registration surface, fed by the competition-management collaborator.

func (s *Service) CreateCompetition(ctx context.Context, name string) (model.Competition, error) {
	return s.registry.CreateCompetition(ctx, name)
}

func (s *Service) AddCriterion(ctx context.Context, c model.Criterion) (model.Criterion, error) {
	return s.registry.AddCriterion(ctx, c)
}

func (s *Service) Criteria(ctx context.Context, competitionID string) ([]model.Criterion, error) {
	return s.registry.Criteria(ctx, competitionID)
}

func (s *Service) GrantJudge(ctx context.Context, judgeID, competitionID string) (model.Judge, error) {
	return s.registry.GrantJudge(ctx, judgeID, competitionID)
}

func (s *Service) CreateSubmission(ctx context.Context, competitionID, track string) (model.Submission, error) {
	return s.registry.CreateSubmission(ctx, competitionID, track)
}

func (s *Service) FinalizeSubmission(ctx context.Context, id string) (model.Submission, error) {
	return s.registry.FinalizeSubmission(ctx, id)
}

func (s *Service) DisqualifySubmission(ctx context.Context, id string) (model.Submission, error) {
	return s.registry.DisqualifySubmission(ctx, id)
}

// Hub exposes the live feed for route registration.
func (s *Service) Hub() *live.Hub {
	return s.hub
}

// GetStats returns service statistics for the /stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	stats := map[string]interface{}{
		"started":     started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"storage":     s.storageDriver,
	}
	if started {
		ctx := context.Background()
		stats["ledgerScores"] = s.ledger.Size(ctx)
		stats["dirtySubmissions"] = s.coord.DirtyCount()
		stats["recomputeBacklog"] = s.coord.QueueLen()
		stats["competitions"] = s.results.Competitions(ctx)
		stats["trackedSubmissions"] = s.results.Count(ctx)
	}
	return stats
}
