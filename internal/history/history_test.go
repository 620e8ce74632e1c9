package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsbench/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

func TestRepo_AppendAndListByRun(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	runID := domain.NewID()
	repo := NewRepo(db, runID)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, domain.RunRecord{
		Test:            1,
		Attempt:         1,
		ID:              "stmt-1",
		QueryString:     "select 1;",
		ExternalQueryID: "991",
		Status:          "FINISHED",
		Duration:        0.042,
		HasResultSet:    true,
		ResultRows:      1,
		ResultSize:      8,
		CreatedAt:       created,
		UpdatedAt:       created.Add(42 * time.Millisecond),
	}))
	require.NoError(t, repo.Append(ctx, domain.RunRecord{
		Test:        2,
		Attempt:     1,
		ID:          "stmt-2",
		QueryString: "select * from missing;",
		Status:      "FAILED",
		Error:       `relation "missing" does not exist`,
	}))

	// Records from another run must not bleed in.
	other := NewRepo(db, domain.NewID())
	require.NoError(t, other.Append(ctx, domain.RunRecord{
		Test: 1, Attempt: 1, ID: "stmt-9", QueryString: "select 9;", Status: "FINISHED",
	}))

	records, err := repo.ListByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "stmt-1", records[0].ID)
	assert.Equal(t, "FINISHED", records[0].Status)
	assert.InDelta(t, 0.042, records[0].Duration, 1e-9)
	assert.True(t, records[0].HasResultSet)
	assert.True(t, records[0].CreatedAt.Equal(created))

	assert.Equal(t, "stmt-2", records[1].ID)
	assert.Contains(t, records[1].Error, "does not exist")
	assert.True(t, records[1].CreatedAt.IsZero())
}
