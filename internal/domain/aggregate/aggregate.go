// Package aggregate reduces a submission's judge scores into a single
// weighted 0-100 aggregate.
//
// For each criterion with at least one score: take the arithmetic mean of
// its score values, normalize by the criterion's max score, multiply by the
// criterion's weight. Sum those weighted fractions and divide by the summed
// weights of the covered criteria only, then scale to 0-100. Criteria nobody
// has scored yet do not dilute the result, so partially judged submissions
// stay comparable.
package aggregate

import (
	"fmt"
	"math"

	"github.com/podiumd/podium/internal/domain/model"
)

const (
	scale = 100.0
	// precision keeps ranking ties reproducible: aggregates are rounded to
	// one decimal before they are compared.
	precision = 10.0
)

// Compute returns the 0-100 aggregate for one submission's scores, or nil
// when no scores exist. The criteria slice must contain every criterion
// referenced by the scores; a dangling reference is a consistency failure
// and aborts the computation.
func Compute(scores []model.Score, criteria []model.Criterion) (*float64, error) {
	if len(scores) == 0 {
		return nil, nil
	}

	byID := make(map[string]model.Criterion, len(criteria))
	for _, c := range criteria {
		if c.MaxScore <= 0 || c.Weight <= 0 {
			return nil, fmt.Errorf("%w: criterion %s has max_score=%v weight=%v",
				ErrInvalidCriterion, c.ID, c.MaxScore, c.Weight)
		}
		byID[c.ID] = c
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	for _, s := range scores {
		if _, ok := byID[s.CriterionID]; !ok {
			return nil, fmt.Errorf("%w: score %s references criterion %s",
				ErrCriterionMismatch, s.ID, s.CriterionID)
		}
		b := buckets[s.CriterionID]
		if b == nil {
			b = &bucket{}
			buckets[s.CriterionID] = b
		}
		b.sum += s.Value
		b.count++
	}

	var weighted, coveredWeight float64
	for id, b := range buckets {
		c := byID[id]
		mean := b.sum / float64(b.count)
		weighted += mean / c.MaxScore * c.Weight
		coveredWeight += c.Weight
	}

	result := Round(weighted / coveredWeight * scale)
	return &result, nil
}

// Round applies the fixed one-decimal precision used everywhere an
// aggregate is stored or compared.
func Round(x float64) float64 {
	return math.Round(x*precision) / precision
}
