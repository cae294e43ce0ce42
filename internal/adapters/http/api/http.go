// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/podiumd/podium/internal/adapters/http/live"
	"github.com/podiumd/podium/internal/coordinator"
	"github.com/podiumd/podium/internal/domain/model"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the app service.
type Dependencies interface {
	ScoreDependencies
	SubmissionDependencies
	CompetitionDependencies
}

// ScoreDependencies cover the judge-facing score submission.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, judgeID, submissionID, criterionID string, value float64, feedback string) (model.Score, bool, error)
}

// SubmissionDependencies cover per-submission reads and state transitions.
type SubmissionDependencies interface {
	GetScores(ctx context.Context, submissionID string) ([]model.Score, error)
	Aggregate(ctx context.Context, submissionID string) (model.RankedEntry, error)
	CreateSubmission(ctx context.Context, competitionID, track string) (model.Submission, error)
	FinalizeSubmission(ctx context.Context, id string) (model.Submission, error)
	DisqualifySubmission(ctx context.Context, id string) (model.Submission, error)
}

// CompetitionDependencies cover competition setup, the organizer ranking
// trigger and leaderboard reads.
type CompetitionDependencies interface {
	CreateCompetition(ctx context.Context, name string) (model.Competition, error)
	AddCriterion(ctx context.Context, c model.Criterion) (model.Criterion, error)
	Criteria(ctx context.Context, competitionID string) ([]model.Criterion, error)
	GrantJudge(ctx context.Context, judgeID, competitionID string) (model.Judge, error)
	TriggerRanking(ctx context.Context, competitionID string) (coordinator.TriggerStatus, error)
	Leaderboard(ctx context.Context, competitionID string, n int, track string) ([]model.RankedEntry, error)
}

// StatsProvider feeds the /stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the scoring API.
type Server struct {
	scoresHandler       *ScoresHandler
	submissionsHandler  *SubmissionsHandler
	competitionsHandler *CompetitionsHandler
	statsHandler        *StatsHandler
	healthHandler       *HealthHandler
	hub                 *live.Hub
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLeaderboardLimit caps the leaderboard ?limit parameter.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.competitionsHandler.maxLimit = n
		}
	}
}

// WithScoreRateLimit shapes the per-judge token bucket on score submission.
func WithScoreRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.scoresHandler.limiter = newJudgeLimiter(rps, burst)
		}
	}
}

// NewServer creates the API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, hub *live.Hub, opts ...Option) *Server {
	s := &Server{
		scoresHandler:       NewScoresHandler(deps),
		submissionsHandler:  NewSubmissionsHandler(deps),
		competitionsHandler: NewCompetitionsHandler(deps),
		statsHandler:        NewStatsHandler(statsProvider),
		healthHandler:       NewHealthHandler(),
		hub:                 hub,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandleCreate, "submissions"))
	mux.HandleFunc("/submissions/", MetricsMiddleware(s.submissionsHandler.HandleSubpath, "submissions"))
	mux.HandleFunc("/competitions", MetricsMiddleware(s.competitionsHandler.HandleCreate, "competitions"))
	mux.HandleFunc("/competitions/", MetricsMiddleware(s.competitionsHandler.HandleSubpath, "competitions"))
	if s.hub != nil {
		mux.HandleFunc("/live", s.hub.HandleWS)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
