package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rsbench/internal/domain"
)

var _ domain.RunRecordSink = (*Repo)(nil)

// Repo appends run records for one benchmark run.
type Repo struct {
	db    *sql.DB
	runID string
}

// NewRepo binds a repository to one run id.
func NewRepo(db *sql.DB, runID string) *Repo {
	return &Repo{db: db, runID: runID}
}

// Append inserts one run record.
func (r *Repo) Append(ctx context.Context, rec domain.RunRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO run_records (
			id, run_id, test, attempt, statement_id, query_string,
			external_query_id, status, duration_s, has_result_set,
			result_rows, result_size, error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		domain.NewID(), r.runID, rec.Test, rec.Attempt, rec.ID, rec.QueryString,
		rec.ExternalQueryID, rec.Status, rec.Duration, rec.HasResultSet,
		rec.ResultRows, rec.ResultSize, rec.Error,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// ListByRun returns a run's records ordered by test then attempt.
func (r *Repo) ListByRun(ctx context.Context, runID string) ([]domain.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT test, attempt, statement_id, query_string, external_query_id,
		       status, duration_s, has_result_set, result_rows, result_size,
		       error, created_at, updated_at
		FROM run_records
		WHERE run_id = ?
		ORDER BY test, attempt, created_at
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run records: %w", err)
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var created, updated string
		if err := rows.Scan(
			&rec.Test, &rec.Attempt, &rec.ID, &rec.QueryString, &rec.ExternalQueryID,
			&rec.Status, &rec.Duration, &rec.HasResultSet, &rec.ResultRows,
			&rec.ResultSize, &rec.Error, &created, &updated,
		); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.CreatedAt = parseTime(created)
		rec.UpdatedAt = parseTime(updated)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
