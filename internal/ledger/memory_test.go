package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/podiumd/podium/internal/domain/model"
)

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	score, created, err := store.Upsert(ctx, model.Score{
		JudgeID:      "judge-1",
		SubmissionID: "sub-1",
		CriterionID:  "crit-1",
		Value:        7.5,
		Feedback:     "solid",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected first upsert to create")
	}
	if score.ID == "" {
		t.Error("expected a generated score ID")
	}
	if score.CreatedAt.IsZero() || !score.CreatedAt.Equal(score.UpdatedAt) {
		t.Errorf("expected matching timestamps on create, got %v / %v", score.CreatedAt, score.UpdatedAt)
	}

	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	rows, err := store.BySubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Value != 7.5 || rows[0].Feedback != "solid" {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestMemoryStore_UpsertCollapsesTriple(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithMemoryClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	first, created, err := store.Upsert(ctx, model.Score{
		JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-1", Value: 5,
	})
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}

	second, created, err := store.Upsert(ctx, model.Score{
		JudgeID: "judge-1", SubmissionID: "sub-1", CriterionID: "crit-1", Value: 9, Feedback: "revised",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected second upsert to update in place")
	}
	if second.ID != first.ID {
		t.Errorf("expected stable score ID, got %s then %s", first.ID, second.ID)
	}
	if second.Value != 9 || second.Feedback != "revised" {
		t.Errorf("unexpected updated row: %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("expected CreatedAt to be preserved on update")
	}
	if !second.UpdatedAt.After(second.CreatedAt) {
		t.Error("expected UpdatedAt to advance on update")
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after duplicate upsert, got %d", count)
	}

	// A different judge on the same submission and criterion is a new row.
	_, created, err = store.Upsert(ctx, model.Score{
		JudgeID: "judge-2", SubmissionID: "sub-1", CriterionID: "crit-1", Value: 6,
	})
	if err != nil || !created {
		t.Fatalf("distinct triple: created=%v err=%v", created, err)
	}
	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}

func TestMemoryStore_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const judges = 10
	const rounds = 50

	var wg sync.WaitGroup
	for j := 0; j < judges; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			judgeID := fmt.Sprintf("judge-%d", j)
			for r := 0; r < rounds; r++ {
				_, _, err := store.Upsert(ctx, model.Score{
					JudgeID:      judgeID,
					SubmissionID: "sub-1",
					CriterionID:  "crit-1",
					Value:        float64(r),
				})
				if err != nil {
					t.Errorf("upsert: %v", err)
					return
				}
			}
		}(j)
	}
	wg.Wait()

	// Repeated writes per judge collapse to one row each.
	if count := store.Count(ctx); count != judges {
		t.Errorf("expected %d rows, got %d", judges, count)
	}
	rows, err := store.BySubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != judges {
		t.Errorf("expected %d rows for submission, got %d", judges, len(rows))
	}
	for _, row := range rows {
		if row.Value != rounds-1 {
			t.Errorf("judge %s: expected final value %d, got %v", row.JudgeID, rounds-1, row.Value)
		}
	}
}

func TestMemoryStore_BySubmissionIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 3; i++ {
		_, _, err := store.Upsert(ctx, model.Score{
			JudgeID: "judge-1", SubmissionID: fmt.Sprintf("sub-%d", i), CriterionID: "crit-1", Value: 5,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rows, err := store.BySubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(rows))
	}

	rows, err = store.BySubmission(ctx, "sub-missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows for unknown submission, got %d", len(rows))
	}
}
