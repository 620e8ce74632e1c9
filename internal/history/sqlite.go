// Package history persists run records across benchmark runs in SQLite so
// earlier runs stay queryable next to the per-run CSV files.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// SQLite DSN parameters, hardened for a single-writer CLI process.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_records (
	id                TEXT PRIMARY KEY,
	run_id            TEXT NOT NULL,
	test              INTEGER NOT NULL,
	attempt           INTEGER NOT NULL,
	statement_id      TEXT NOT NULL,
	query_string      TEXT NOT NULL,
	external_query_id TEXT,
	status            TEXT NOT NULL,
	duration_s        REAL NOT NULL,
	has_result_set    INTEGER NOT NULL,
	result_rows       INTEGER NOT NULL,
	result_size       INTEGER NOT NULL,
	error             TEXT,
	created_at        TEXT,
	updated_at        TEXT
);
CREATE INDEX IF NOT EXISTS idx_run_records_run ON run_records(run_id);
`

// Open opens the history database, creating the schema when missing. The
// pool is limited to one connection; the CLI is the only writer.
func Open(path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_synchronous", defaultSynchronous)
	params.Set("_txlock", "immediate")

	db, err := sql.Open("sqlite3", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return db, nil
}
