package domain

import (
	"strings"
	"time"
)

// RunRecord is the flattened, persistable projection of one StepResult plus
// its test and attempt indexes — the unit written to report sinks.
type RunRecord struct {
	Test            int
	Attempt         int
	CreatedAt       time.Time
	Duration        float64 // fractional seconds
	HasResultSet    bool
	ID              string
	QueryString     string
	ExternalQueryID string
	ResultRows      int64
	ResultSize      int64
	Status          string
	UpdatedAt       time.Time
	Error           string
}

// NewRunRecord flattens a step result into a run record. Newlines in the
// query text are collapsed to spaces so the record stays one row.
func NewRunRecord(test, attempt int, step StepResult) RunRecord {
	return RunRecord{
		Test:            test,
		Attempt:         attempt,
		CreatedAt:       step.CreatedAt,
		Duration:        step.Duration.Seconds(),
		HasResultSet:    step.HasResultSet,
		ID:              step.ID,
		QueryString:     strings.ReplaceAll(step.SQL, "\n", " "),
		ExternalQueryID: step.ExternalQueryID,
		ResultRows:      step.ResultRows,
		ResultSize:      step.ResultSize,
		Status:          string(step.Status),
		UpdatedAt:       step.UpdatedAt,
		Error:           step.Error,
	}
}
