package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Registered database/sql drivers selectable via config.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/podiumd/podium/internal/domain/model"
)

// SQLStore implements Store on database/sql, for deployments that need the
// ledger to survive restarts. Works against sqlite3 and postgres; the upsert
// is a single INSERT ... ON CONFLICT DO UPDATE statement, so concurrent
// duplicate submissions collapse to one row without a read-then-write race.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

const scoresSchema = `
CREATE TABLE IF NOT EXISTS scores (
	id            TEXT PRIMARY KEY,
	judge_id      TEXT NOT NULL,
	submission_id TEXT NOT NULL,
	criterion_id  TEXT NOT NULL,
	value         DOUBLE PRECISION NOT NULL,
	feedback      TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL,
	UNIQUE (judge_id, submission_id, criterion_id)
);
CREATE INDEX IF NOT EXISTS idx_scores_submission ON scores (submission_id);
`

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithSQLClock overrides the time source, for deterministic tests.
func WithSQLClock(now func() time.Time) SQLOption {
	return func(s *SQLStore) {
		if now != nil {
			s.now = now
		}
	}
}

// OpenSQLStore opens the database and ensures the schema exists.
// Supported drivers: "sqlite3", "postgres".
func OpenSQLStore(ctx context.Context, driver, dsn string, opts ...SQLOption) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s ledger: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s ledger: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, scoresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}

	s := &SQLStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Upsert implements Store.
func (s *SQLStore) Upsert(ctx context.Context, score model.Score) (model.Score, bool, error) {
	now := s.now().UTC().Truncate(time.Microsecond)

	// created_at survives the conflict branch, so a row is an insert exactly
	// when the two timestamps come back equal.
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO scores (id, judge_id, submission_id, criterion_id, value, feedback, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (judge_id, submission_id, criterion_id) DO UPDATE
		SET value = excluded.value, feedback = excluded.feedback, updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at`,
		uuid.NewString(), score.JudgeID, score.SubmissionID, score.CriterionID,
		score.Value, score.Feedback, now,
	)

	var id string
	var createdAt, updatedAt time.Time
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return model.Score{}, false, fmt.Errorf("upsert score row: %w", err)
	}

	score.ID = id
	score.CreatedAt = createdAt
	score.UpdatedAt = updatedAt
	return score, createdAt.Equal(updatedAt), nil
}

// BySubmission implements Store.
func (s *SQLStore) BySubmission(ctx context.Context, submissionID string) ([]model.Score, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, judge_id, submission_id, criterion_id, value, feedback, created_at, updated_at
		FROM scores WHERE submission_id = $1`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []model.Score
	for rows.Next() {
		var sc model.Score
		if err := rows.Scan(&sc.ID, &sc.JudgeID, &sc.SubmissionID, &sc.CriterionID,
			&sc.Value, &sc.Feedback, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rows: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close implements Store.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close ledger db: %w", err)
	}
	return nil
}
