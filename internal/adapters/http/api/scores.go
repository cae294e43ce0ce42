package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/podiumd/podium/pkg/metrics"
)

var validate = validator.New()

// scoreRequest mirrors the POST /scores payload.
type scoreRequest struct {
	JudgeID      string  `json:"judge_id" validate:"required"`
	SubmissionID string  `json:"submission_id" validate:"required"`
	CriterionID  string  `json:"criterion_id" validate:"required"`
	Value        float64 `json:"value" validate:"min=0"`
	Feedback     string  `json:"feedback" validate:"max=4000"`
}

// scoreResponse acknowledges a recorded score. Updated is true when the
// judge had already scored this criterion and the earlier value was
// replaced.
type scoreResponse struct {
	ScoreID   string `json:"score_id"`
	Updated   bool   `json:"updated"`
	UpdatedAt string `json:"updated_at"`
}

// ScoresHandler handles judge score submission.
type ScoresHandler struct {
	deps    ScoreDependencies
	limiter *judgeLimiter
}

// NewScoresHandler creates a scores handler without rate limiting; the
// server option installs the limiter.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandlePostScore handles POST /scores.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := validate.StructCtx(r.Context(), &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	if h.limiter != nil && !h.limiter.Allow(req.JudgeID) {
		metrics.RecordRateLimited()
		writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
		return
	}

	score, created, err := h.deps.SubmitScore(r.Context(),
		req.JudgeID, req.SubmissionID, req.CriterionID, req.Value, req.Feedback)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, scoreResponse{
		ScoreID:   score.ID,
		Updated:   !created,
		UpdatedAt: score.UpdatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
