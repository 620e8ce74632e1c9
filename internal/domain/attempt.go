package domain

import "time"

// StepStatus is the Data API lifecycle status of one submitted statement.
type StepStatus string

// Statement lifecycle statuses as reported by the Data API.
const (
	StatusSubmitted StepStatus = "SUBMITTED"
	StatusPicked    StepStatus = "PICKED"
	StatusStarted   StepStatus = "STARTED"
	StatusFinished  StepStatus = "FINISHED"
	StatusFailed    StepStatus = "FAILED"
	StatusAborted   StepStatus = "ABORTED"
)

// Terminal reports whether no further status transitions can occur.
func (s StepStatus) Terminal() bool {
	return s == StatusFinished || s == StatusFailed || s == StatusAborted
}

// AttemptOutcome is the terminal outcome of one full chain execution.
type AttemptOutcome string

// Attempt outcomes.
const (
	OutcomeFinished   AttemptOutcome = "FINISHED"
	OutcomeFailed     AttemptOutcome = "FAILED"
	OutcomeIncomplete AttemptOutcome = "INCOMPLETE"
)

// TestSpec is one test: an ordered chain of one or more dependent SQL steps.
// A single-statement test is a chain of length 1. Immutable once loaded.
type TestSpec struct {
	Steps []string
}

// Session is the isolation scope under which one attempt's chain executes, so
// later steps observe session-local objects created by earlier steps. The ID
// is assigned by the Data API on the first submit and reused for the rest of
// the chain. A Session is never shared across concurrently live attempts.
type Session struct {
	ID string
}

// StatementStatus is one poll response for a submitted statement.
type StatementStatus struct {
	Status          StepStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Duration        time.Duration
	HasResultSet    bool
	ResultRows      int64
	ResultSize      int64
	ExternalQueryID string
	QueryString     string
	Error           string
}

// StepResult is the recorded outcome of one chain step. Status stays
// non-terminal when the poll budget runs out before completion.
type StepResult struct {
	ID              string // Data API statement id
	SQL             string
	Status          StepStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Duration        time.Duration
	HasResultSet    bool
	ResultRows      int64
	ResultSize      int64
	ExternalQueryID string
	Error           string
}

// Apply merges the latest poll response into the step.
func (r *StepResult) Apply(st *StatementStatus) {
	r.Status = st.Status
	r.CreatedAt = st.CreatedAt
	r.UpdatedAt = st.UpdatedAt
	r.Duration = st.Duration
	r.HasResultSet = st.HasResultSet
	r.ResultRows = st.ResultRows
	r.ResultSize = st.ResultSize
	r.ExternalQueryID = st.ExternalQueryID
	r.Error = st.Error
}

// Attempt is one execution of a test's full chain.
type Attempt struct {
	Index   int
	Steps   []StepResult
	Outcome AttemptOutcome
}

// ChainDuration is the sum of all step durations.
func (a *Attempt) ChainDuration() time.Duration {
	var total time.Duration
	for i := range a.Steps {
		total += a.Steps[i].Duration
	}
	return total
}

// LastStep returns the most recently submitted step, or nil when the first
// submit was rejected before any step was recorded.
func (a *Attempt) LastStep() *StepResult {
	if len(a.Steps) == 0 {
		return nil
	}
	return &a.Steps[len(a.Steps)-1]
}

// ResultSet is a fetched statement result: column names plus stringified rows.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}
