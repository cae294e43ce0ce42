package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// SubmissionsHandler handles submission registration, state transitions and
// per-submission reads.
type SubmissionsHandler struct {
	deps SubmissionDependencies
}

// NewSubmissionsHandler creates a submissions handler.
func NewSubmissionsHandler(deps SubmissionDependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

type createSubmissionRequest struct {
	CompetitionID string `json:"competition_id" validate:"required"`
	Track         string `json:"track"`
}

// HandleCreate handles POST /submissions.
func (h *SubmissionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := validate.StructCtx(r.Context(), &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	sub, err := h.deps.CreateSubmission(r.Context(), req.CompetitionID, req.Track)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// HandleSubpath dispatches /submissions/{id}/{action}:
//
//	GET  /submissions/{id}/scores
//	GET  /submissions/{id}/aggregate
//	POST /submissions/{id}/finalize
//	POST /submissions/{id}/disqualify
func (h *SubmissionsHandler) HandleSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/submissions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id, action := parts[0], parts[1]

	switch {
	case action == "scores" && r.Method == http.MethodGet:
		scores, err := h.deps.GetScores(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scores)

	case action == "aggregate" && r.Method == http.MethodGet:
		entry, err := h.deps.Aggregate(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)

	case action == "finalize" && r.Method == http.MethodPost:
		sub, err := h.deps.FinalizeSubmission(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)

	case action == "disqualify" && r.Method == http.MethodPost:
		sub, err := h.deps.DisqualifySubmission(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)

	default:
		http.NotFound(w, r)
	}
}
