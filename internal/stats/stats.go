// Package stats reduces terminal attempt outcomes into duration statistics.
package stats

import (
	"time"

	"rsbench/internal/domain"
)

// Summary holds min/max/avg over one duration series.
type Summary struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Report aggregates one test's attempts. Total and LastStep are nil when no
// attempt finished — failed and incomplete attempts are counted but never
// contribute to duration figures.
type Report struct {
	Finished   int
	Failed     int
	Incomplete int
	Total      *Summary
	LastStep   *Summary
}

// Aggregate computes min, max, and arithmetic mean of whole-chain duration
// and last-step duration over the FINISHED attempts.
func Aggregate(attempts []domain.Attempt) Report {
	var rep Report
	var totals, lastSteps []time.Duration

	for i := range attempts {
		att := &attempts[i]
		switch att.Outcome {
		case domain.OutcomeFinished:
			rep.Finished++
			totals = append(totals, att.ChainDuration())
			if step := att.LastStep(); step != nil {
				lastSteps = append(lastSteps, step.Duration)
			}
		case domain.OutcomeFailed:
			rep.Failed++
		case domain.OutcomeIncomplete:
			rep.Incomplete++
		}
	}

	rep.Total = summarize(totals)
	rep.LastStep = summarize(lastSteps)
	return rep
}

func summarize(durations []time.Duration) *Summary {
	if len(durations) == 0 {
		return nil
	}
	s := &Summary{Count: len(durations), Min: durations[0], Max: durations[0]}
	var sum time.Duration
	for _, d := range durations {
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
		sum += d
	}
	s.Avg = sum / time.Duration(len(durations))
	return s
}
