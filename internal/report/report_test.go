package report

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsbench/internal/domain"
)

func TestCSVSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")

	sink, err := NewCSVSink(path)
	require.NoError(t, err)

	created := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.FixedZone("CET", 3600))
	want := domain.RunRecord{
		Test:            1,
		Attempt:         2,
		CreatedAt:       created,
		Duration:        0.0623,
		HasResultSet:    true,
		ID:              "stmt-7",
		QueryString:     "select count(*) from lineitem where l_comment like '%late%';",
		ExternalQueryID: "991234",
		ResultRows:      1,
		ResultSize:      8,
		Status:          "FINISHED",
		UpdatedAt:       created.Add(70 * time.Millisecond),
		Error:           "",
	}
	require.NoError(t, sink.Append(context.Background(), want))

	failedRec := domain.RunRecord{
		Test:        1,
		Attempt:     3,
		Duration:    0,
		ID:          "stmt-8",
		QueryString: "select * from missing;",
		Status:      "FAILED",
		Error:       `ERROR: relation "missing" does not exist`,
	}
	require.NoError(t, sink.Append(context.Background(), failedRec))
	require.NoError(t, sink.Close())

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	got := records[0]
	assert.Equal(t, want.Test, got.Test)
	assert.Equal(t, want.Attempt, got.Attempt)
	assert.True(t, got.CreatedAt.Equal(created), "timestamps must survive with zone")
	assert.InDelta(t, want.Duration, got.Duration, 1e-9)
	assert.Equal(t, want.HasResultSet, got.HasResultSet)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.QueryString, got.QueryString)
	assert.Equal(t, want.ExternalQueryID, got.ExternalQueryID)
	assert.Equal(t, want.Status, got.Status)
	assert.Empty(t, got.Error)

	assert.Equal(t, "FAILED", records[1].Status)
	assert.Contains(t, records[1].Error, "does not exist")
	assert.True(t, records[1].CreatedAt.IsZero())
}

func TestNewRunRecord_FlattensQueryText(t *testing.T) {
	step := domain.StepResult{
		ID:       "stmt-1",
		SQL:      "select l_returnflag,\n       sum(l_quantity)\nfrom lineitem;",
		Status:   domain.StatusFinished,
		Duration: 250 * time.Millisecond,
	}

	rec := domain.NewRunRecord(3, 1, step)

	assert.Equal(t, "select l_returnflag,        sum(l_quantity) from lineitem;", rec.QueryString)
	assert.InDelta(t, 0.25, rec.Duration, 1e-9)
	assert.Equal(t, "FINISHED", rec.Status)
}

// sampleClient serves canned result sets keyed by statement id.
type sampleClient struct {
	results map[string]*domain.ResultSet
	fetched []string
	err     error
}

func (c *sampleClient) Submit(context.Context, *domain.Session, string) (string, error) {
	return "", fmt.Errorf("not used")
}

func (c *sampleClient) Poll(context.Context, string) (*domain.StatementStatus, error) {
	return nil, fmt.Errorf("not used")
}

func (c *sampleClient) FetchResult(_ context.Context, id string) (*domain.ResultSet, error) {
	c.fetched = append(c.fetched, id)
	if c.err != nil {
		return nil, c.err
	}
	return c.results[id], nil
}

func finishedAttempt(id string, hasResult bool) domain.Attempt {
	return domain.Attempt{
		Outcome: domain.OutcomeFinished,
		Steps: []domain.StepResult{{
			ID:           id,
			Status:       domain.StatusFinished,
			HasResultSet: hasResult,
		}},
	}
}

func TestSample_FirstFinishedAttemptWithResult(t *testing.T) {
	client := &sampleClient{results: map[string]*domain.ResultSet{
		"stmt-3": {
			Columns: []string{"n"},
			Rows:    [][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}},
		},
	}}
	attempts := []domain.Attempt{
		{Outcome: domain.OutcomeFailed, Steps: []domain.StepResult{{ID: "stmt-1", Status: domain.StatusFailed}}},
		finishedAttempt("stmt-2", false),
		finishedAttempt("stmt-3", true),
		finishedAttempt("stmt-4", true),
	}

	rs := Sample(context.Background(), client, attempts, 3)

	require.NotNil(t, rs)
	assert.Equal(t, []string{"n"}, rs.Columns)
	assert.Equal(t, [][]string{{"1"}, {"2"}, {"3"}}, rs.Rows, "preview is truncated and order-preserving")
	assert.Equal(t, []string{"stmt-3"}, client.fetched, "only the designated attempt is fetched")
}

func TestSample_FetchFailureDegradesToNoSample(t *testing.T) {
	client := &sampleClient{err: fmt.Errorf("result expired")}
	attempts := []domain.Attempt{finishedAttempt("stmt-1", true)}

	assert.Nil(t, Sample(context.Background(), client, attempts, 3))
}

func TestSample_NoEligibleAttempt(t *testing.T) {
	client := &sampleClient{}
	attempts := []domain.Attempt{
		{Outcome: domain.OutcomeIncomplete},
		finishedAttempt("stmt-1", false),
	}

	assert.Nil(t, Sample(context.Background(), client, attempts, 3))
	assert.Empty(t, client.fetched)
}
