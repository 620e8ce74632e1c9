package report

import (
	"context"

	"rsbench/internal/domain"
)

// DefaultSampleRows is the preview size shown after each test.
const DefaultSampleRows = 3

// Sample fetches a small, order-preserving row preview from the first
// FINISHED attempt whose final step produced a result set. Any fetch failure
// is non-fatal: the sample degrades to nil ("no sample available").
func Sample(ctx context.Context, client domain.StatementClient, attempts []domain.Attempt, maxRows int) *domain.ResultSet {
	if maxRows <= 0 {
		maxRows = DefaultSampleRows
	}
	for i := range attempts {
		att := &attempts[i]
		if att.Outcome != domain.OutcomeFinished {
			continue
		}
		step := att.LastStep()
		if step == nil || !step.HasResultSet {
			continue
		}
		rs, err := client.FetchResult(ctx, step.ID)
		if err != nil {
			return nil
		}
		if len(rs.Rows) > maxRows {
			rs.Rows = rs.Rows[:maxRows]
		}
		return rs
	}
	return nil
}
