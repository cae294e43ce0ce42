package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/podiumd/podium/internal/coordinator"
	"github.com/podiumd/podium/internal/domain/model"
)

const defaultMaxLeaderboardLimit = 100

// CompetitionsHandler handles competition setup, the organizer ranking
// trigger and leaderboard reads.
type CompetitionsHandler struct {
	deps     CompetitionDependencies
	maxLimit int
}

// NewCompetitionsHandler creates a competitions handler.
func NewCompetitionsHandler(deps CompetitionDependencies) *CompetitionsHandler {
	return &CompetitionsHandler{deps: deps, maxLimit: defaultMaxLeaderboardLimit}
}

type createCompetitionRequest struct {
	Name string `json:"name" validate:"required"`
}

// HandleCreate handles POST /competitions.
func (h *CompetitionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := validate.StructCtx(r.Context(), &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	comp, err := h.deps.CreateCompetition(r.Context(), req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comp)
}

type addCriterionRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	MaxScore    float64 `json:"max_score" validate:"required,gt=0"`
	Weight      float64 `json:"weight" validate:"required,gt=0,lte=1"`
	Order       int     `json:"order" validate:"min=0"`
}

type grantJudgeRequest struct {
	JudgeID string `json:"judge_id" validate:"required"`
}

type triggerResponse struct {
	Status coordinator.TriggerStatus `json:"status"`
}

// HandleSubpath dispatches /competitions/{id}/{action}:
//
//	POST /competitions/{id}/criteria
//	GET  /competitions/{id}/criteria
//	POST /competitions/{id}/judges
//	POST /competitions/{id}/rankings
//	GET  /competitions/{id}/leaderboard?limit=N&track=T
func (h *CompetitionsHandler) HandleSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/competitions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id, action := parts[0], parts[1]

	switch {
	case action == "criteria" && r.Method == http.MethodPost:
		h.handleAddCriterion(w, r, id)
	case action == "criteria" && r.Method == http.MethodGet:
		criteria, err := h.deps.Criteria(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, criteria)
	case action == "judges" && r.Method == http.MethodPost:
		h.handleGrantJudge(w, r, id)
	case action == "rankings" && r.Method == http.MethodPost:
		status, err := h.deps.TriggerRanking(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, triggerResponse{Status: status})
	case action == "leaderboard" && r.Method == http.MethodGet:
		h.handleLeaderboard(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *CompetitionsHandler) handleAddCriterion(w http.ResponseWriter, r *http.Request, competitionID string) {
	var req addCriterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := validate.StructCtx(r.Context(), &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	crit, err := h.deps.AddCriterion(r.Context(), model.Criterion{
		CompetitionID: competitionID,
		Name:          req.Name,
		Description:   req.Description,
		MaxScore:      req.MaxScore,
		Weight:        req.Weight,
		Order:         req.Order,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, crit)
}

func (h *CompetitionsHandler) handleGrantJudge(w http.ResponseWriter, r *http.Request, competitionID string) {
	var req grantJudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := validate.StructCtx(r.Context(), &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	judge, err := h.deps.GrantJudge(r.Context(), req.JudgeID, competitionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, judge)
}

func (h *CompetitionsHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request, competitionID string) {
	limitStr := r.URL.Query().Get("limit")
	n := h.maxLimit
	if limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_limit", ErrBadRequest)
			return
		}
		n = parsed
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), competitionID, n, r.URL.Query().Get("track"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
