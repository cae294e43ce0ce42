package aggregate_test

import (
	"testing"

	"github.com/podiumd/podium/internal/domain/aggregate"
	"github.com/podiumd/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute_WeightedMean(t *testing.T) {
	Convey("Given three weighted criteria", t, func() {
		criteria := []model.Criterion{
			{ID: "crit-a", CompetitionID: "comp-1", Name: "Impact", MaxScore: 10, Weight: 0.5},
			{ID: "crit-b", CompetitionID: "comp-1", Name: "Execution", MaxScore: 10, Weight: 0.3},
			{ID: "crit-c", CompetitionID: "comp-1", Name: "Presentation", MaxScore: 5, Weight: 0.2},
		}

		Convey("When every criterion has scores", func() {
			scores := []model.Score{
				{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 8},
				{ID: "s2", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-b", Value: 6},
				{ID: "s3", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-c", Value: 2.5},
			}

			Convey("Then the aggregate is the weighted normalized mean on 0-100", func() {
				// 0.8*0.5 + 0.6*0.3 + 0.5*0.2 = 0.68
				got, err := aggregate.Compute(scores, criteria)
				So(err, ShouldBeNil)
				So(got, ShouldNotBeNil)
				So(*got, ShouldEqual, 68.0)
			})
		})

		Convey("When two judges score the same criterion", func() {
			scores := []model.Score{
				{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 7},
				{ID: "s2", JudgeID: "judge-2", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 8},
			}

			Convey("Then their values are averaged before weighting", func() {
				// mean 7.5 of 10 on the only covered criterion
				got, err := aggregate.Compute(scores, criteria)
				So(err, ShouldBeNil)
				So(*got, ShouldEqual, 75.0)
			})
		})

		Convey("When only one criterion is covered", func() {
			scores := []model.Score{
				{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 8},
			}

			Convey("Then uncovered criteria do not dilute the aggregate", func() {
				got, err := aggregate.Compute(scores, criteria)
				So(err, ShouldBeNil)
				So(*got, ShouldEqual, 80.0)
			})
		})

		Convey("When all scores are zero", func() {
			scores := []model.Score{
				{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 0},
				{ID: "s2", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-b", Value: 0},
			}

			Convey("Then the aggregate is zero, not nil", func() {
				got, err := aggregate.Compute(scores, criteria)
				So(err, ShouldBeNil)
				So(got, ShouldNotBeNil)
				So(*got, ShouldEqual, 0.0)
			})
		})

		Convey("When every score hits the criterion maximum", func() {
			scores := []model.Score{
				{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 10},
				{ID: "s2", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-b", Value: 10},
				{ID: "s3", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-c", Value: 5},
			}

			Convey("Then the aggregate is exactly 100", func() {
				got, err := aggregate.Compute(scores, criteria)
				So(err, ShouldBeNil)
				So(*got, ShouldEqual, 100.0)
			})
		})
	})
}

func TestCompute_Rounding(t *testing.T) {
	Convey("Given a criterion producing a repeating fraction", t, func() {
		criteria := []model.Criterion{
			{ID: "crit-a", CompetitionID: "comp-1", Name: "Impact", MaxScore: 3, Weight: 1},
		}
		scores := []model.Score{
			{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 2},
		}

		Convey("Then the aggregate is rounded to one decimal", func() {
			// 2/3 * 100 = 66.666...
			got, err := aggregate.Compute(scores, criteria)
			So(err, ShouldBeNil)
			So(*got, ShouldEqual, 66.7)
		})
	})

	Convey("Given the Round helper", t, func() {
		Convey("Then halves round away from zero", func() {
			So(aggregate.Round(66.65), ShouldEqual, 66.7)
			So(aggregate.Round(66.64), ShouldEqual, 66.6)
			So(aggregate.Round(0.05), ShouldEqual, 0.1)
		})
	})
}

func TestCompute_EmptyAndErrors(t *testing.T) {
	Convey("Given an aggregation request", t, func() {
		criteria := []model.Criterion{
			{ID: "crit-a", CompetitionID: "comp-1", Name: "Impact", MaxScore: 10, Weight: 0.5},
		}

		Convey("When there are no scores", func() {
			got, err := aggregate.Compute(nil, criteria)

			Convey("Then the aggregate is nil, distinguishing unjudged from zero", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeNil)
			})
		})

		Convey("When a score references a criterion outside the set", func() {
			scores := []model.Score{
				{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-ghost", Value: 5},
			}
			got, err := aggregate.Compute(scores, criteria)

			Convey("Then the computation aborts with a consistency error", func() {
				So(got, ShouldBeNil)
				So(err, ShouldWrap, aggregate.ErrCriterionMismatch)
			})
		})

		Convey("When a criterion carries a non-positive max score", func() {
			bad := []model.Criterion{
				{ID: "crit-a", CompetitionID: "comp-1", Name: "Impact", MaxScore: 0, Weight: 0.5},
			}
			scores := []model.Score{
				{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 5},
			}
			got, err := aggregate.Compute(scores, bad)

			Convey("Then the computation is rejected", func() {
				So(got, ShouldBeNil)
				So(err, ShouldWrap, aggregate.ErrInvalidCriterion)
			})
		})

		Convey("When a criterion carries a non-positive weight", func() {
			bad := []model.Criterion{
				{ID: "crit-a", CompetitionID: "comp-1", Name: "Impact", MaxScore: 10, Weight: 0},
			}
			scores := []model.Score{
				{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 5},
			}
			_, err := aggregate.Compute(scores, bad)

			Convey("Then the computation is rejected", func() {
				So(err, ShouldWrap, aggregate.ErrInvalidCriterion)
			})
		})
	})
}

func TestCompute_Deterministic(t *testing.T) {
	Convey("Given the same scores in different orders", t, func() {
		criteria := []model.Criterion{
			{ID: "crit-a", CompetitionID: "comp-1", Name: "Impact", MaxScore: 10, Weight: 0.6},
			{ID: "crit-b", CompetitionID: "comp-1", Name: "Execution", MaxScore: 10, Weight: 0.4},
		}
		forward := []model.Score{
			{ID: "s1", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 9},
			{ID: "s2", JudgeID: "judge-2", SubmissionID: "sub-1", CriterionID: "crit-a", Value: 7},
			{ID: "s3", JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-b", Value: 6},
		}
		backward := []model.Score{forward[2], forward[1], forward[0]}

		Convey("Then the aggregate is identical", func() {
			a, err := aggregate.Compute(forward, criteria)
			So(err, ShouldBeNil)
			b, err := aggregate.Compute(backward, criteria)
			So(err, ShouldBeNil)
			So(*a, ShouldEqual, *b)
		})
	})
}
