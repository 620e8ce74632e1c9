// Package bench orchestrates one benchmark run: it drives the scheduler over
// each test, aggregates statistics, samples result rows, and feeds the
// report sinks.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rsbench/internal/config"
	"rsbench/internal/domain"
	"rsbench/internal/plan"
	"rsbench/internal/report"
	"rsbench/internal/scheduler"
	"rsbench/internal/stats"
)

// Runner is the explicit run context threaded through one benchmark run.
// All run-scoped state lives here; nothing is global.
type Runner struct {
	Target     *config.Target
	Client     domain.StatementClient
	Sinks      []domain.RunRecordSink
	Logger     *slog.Logger
	RunID      string
	SampleRows int
}

// Run executes every test in order. A run that contains failed or incomplete
// attempts still completes; only record-sink errors are surfaced as warnings.
func (r *Runner) Run(ctx context.Context, specs []domain.TestSpec) {
	logger := r.Logger.With("run_id", r.RunID)
	logger.Info("run configuration", "target", r.Target.String(), "tests", len(specs))

	for i, spec := range specs {
		testNum := i + 1
		tlog := logger.With("test", testNum)

		chain := plan.BuildChain(r.Target, spec)
		tlog.Info("test", "steps", len(chain))
		for _, stmt := range chain {
			tlog.Info("statement", "sql", strings.TrimSpace(stmt))
		}

		sched := scheduler.New(r.Client, scheduler.Options{
			Attempts:      r.Target.Attempts,
			WaitCycles:    r.Target.WaitCycles,
			SleepInterval: r.Target.SleepDuration(),
			Asynchronous:  r.Target.Mode == config.ModeAsynchronous,
		}, tlog)
		attempts := sched.Run(ctx, chain)

		r.logStats(tlog, stats.Aggregate(attempts))
		r.logSample(ctx, tlog, attempts)
		r.appendRecords(ctx, tlog, testNum, attempts)
	}
}

func (r *Runner) logStats(logger *slog.Logger, rep stats.Report) {
	logger.Info("attempt outcomes",
		"finished", rep.Finished, "failed", rep.Failed, "incomplete", rep.Incomplete)
	logSummary(logger, "total duration stats", rep.Total)
	logSummary(logger, "last step duration stats", rep.LastStep)
}

func logSummary(logger *slog.Logger, msg string, s *stats.Summary) {
	if s == nil {
		logger.Info(msg, "data", "no finished attempts")
		return
	}
	logger.Info(msg,
		"min_s", fmt.Sprintf("%.3f", s.Min.Seconds()),
		"max_s", fmt.Sprintf("%.3f", s.Max.Seconds()),
		"avg_s", fmt.Sprintf("%.3f", s.Avg.Seconds()),
	)
}

func (r *Runner) logSample(ctx context.Context, logger *slog.Logger, attempts []domain.Attempt) {
	sample := report.Sample(ctx, r.Client, attempts, r.SampleRows)
	if sample == nil {
		logger.Info("sample records", "data", "no sample available")
		return
	}
	logger.Info("sample records", "columns", strings.Join(sample.Columns, ", "))
	for _, row := range sample.Rows {
		logger.Info("sample record", "values", strings.Join(row, ", "))
	}
}

func (r *Runner) appendRecords(ctx context.Context, logger *slog.Logger, testNum int, attempts []domain.Attempt) {
	for _, att := range attempts {
		for _, step := range att.Steps {
			rec := domain.NewRunRecord(testNum, att.Index, step)
			for _, sink := range r.Sinks {
				if err := sink.Append(ctx, rec); err != nil {
					logger.Warn("append run record failed",
						"attempt", att.Index, "statement", rec.ID, "error", err)
				}
			}
		}
	}
}
