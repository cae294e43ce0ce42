// Package model contains the entities exchanged between the scoring engine's
// layers: competitions, criteria, judges, submissions, scores and ranked
// results.
package model

import "time"

// SubmissionState tracks a submission's eligibility for scoring and ranking.
type SubmissionState string

const (
	// SubmissionDraft is not yet scoreable.
	SubmissionDraft SubmissionState = "draft"
	// SubmissionFinalized is scoreable and rankable.
	SubmissionFinalized SubmissionState = "finalized"
	// SubmissionDisqualified is excluded from ranking; any prior rank is cleared.
	SubmissionDisqualified SubmissionState = "disqualified"
)

// Competition is the unit of ranking. Criteria, judges and submissions all
// belong to exactly one competition.
type Competition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Criterion is a weighted judging dimension with a maximum point value.
// Immutable once any score in its competition exists.
type Criterion struct {
	ID            string  `json:"id"`
	CompetitionID string  `json:"competition_id" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	MaxScore      float64 `json:"max_score" validate:"required,gt=0"`
	Weight        float64 `json:"weight" validate:"required,gt=0,lte=1"`
	Order         int     `json:"order" validate:"min=0"`
}

// Judge is an authorization grant binding an identity to a competition.
// The engine trusts the grant; issuing it is the auth collaborator's job.
type Judge struct {
	ID            string    `json:"id" validate:"required"`
	CompetitionID string    `json:"competition_id" validate:"required"`
	GrantedAt     time.Time `json:"granted_at"`
}

// Submission is the entity being judged. Track is an optional sub-track
// label used to filter leaderboards for winner selection.
type Submission struct {
	ID            string          `json:"id"`
	CompetitionID string          `json:"competition_id" validate:"required"`
	Track         string          `json:"track"`
	State         SubmissionState `json:"state"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Scoreable reports whether judges may currently write scores against the
// submission.
func (s *Submission) Scoreable() bool {
	return s.State == SubmissionFinalized
}

// Eligible reports whether the submission participates in ranking.
func (s *Submission) Eligible() bool {
	return s.State == SubmissionFinalized
}

// Score is one judge's rating of one submission against one criterion.
// The (JudgeID, SubmissionID, CriterionID) triple is unique; a repeat write
// updates Value and Feedback in place and bumps UpdatedAt.
type Score struct {
	ID           string    `json:"id"`
	JudgeID      string    `json:"judge_id" validate:"required"`
	SubmissionID string    `json:"submission_id" validate:"required"`
	CriterionID  string    `json:"criterion_id" validate:"required"`
	Value        float64   `json:"value" validate:"min=0"`
	Feedback     string    `json:"feedback"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RankedEntry is one committed row of a competition leaderboard. Aggregate
// and Rank are nil for unjudged submissions; Rank is additionally nil for
// disqualified ones. Derived data: only the recalculation pass writes it.
type RankedEntry struct {
	SubmissionID string    `json:"submission_id"`
	Track        string    `json:"track,omitempty"`
	Aggregate    *float64  `json:"aggregate"`
	Rank         *int      `json:"rank"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
