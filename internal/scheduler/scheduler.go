// Package scheduler drives repeated attempts of a statement chain against an
// asynchronous statement client, in serial or fan-out scheduling mode.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"rsbench/internal/domain"
)

// Options configure one scheduler run.
type Options struct {
	Attempts      int
	WaitCycles    int
	SleepInterval time.Duration
	Asynchronous  bool
}

// Scheduler owns the per-attempt state machine. Status transitions are driven
// by poll responses only; the scheduler never infers statement state.
type Scheduler struct {
	client domain.StatementClient
	opts   Options
	logger *slog.Logger
}

// New creates a scheduler. Attempt and cycle counts are clamped to at least 1.
func New(client domain.StatementClient, opts Options, logger *slog.Logger) *Scheduler {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.WaitCycles < 1 {
		opts.WaitCycles = 1
	}
	return &Scheduler{client: client, opts: opts, logger: logger}
}

// Run executes all attempts of the chain and returns their terminal outcomes
// in attempt order.
func (s *Scheduler) Run(ctx context.Context, chain []string) []domain.Attempt {
	if s.opts.Asynchronous {
		return s.runAsync(ctx, chain)
	}
	return s.runSync(ctx, chain)
}

// runSync executes attempts strictly one at a time: the next attempt starts
// only after the previous chain fully resolved. Each attempt has a poll
// budget of WaitCycles sleep cycles shared across its whole chain.
func (s *Scheduler) runSync(ctx context.Context, chain []string) []domain.Attempt {
	attempts := make([]domain.Attempt, 0, s.opts.Attempts)
	for i := 1; i <= s.opts.Attempts; i++ {
		att := s.runChain(ctx, i, chain)
		s.logAttempt(&att)
		attempts = append(attempts, att)
	}
	return attempts
}

// runChain executes one attempt's full chain under a fresh session. Step i+1
// is submitted only after step i was observed FINISHED; a failed or rejected
// step aborts the remaining chain for this attempt.
func (s *Scheduler) runChain(ctx context.Context, index int, chain []string) domain.Attempt {
	att := domain.Attempt{Index: index}
	sess := &domain.Session{}
	cycles := 0

	for _, sql := range chain {
		id, err := s.client.Submit(ctx, sess, sql)
		if err != nil {
			att.Steps = append(att.Steps, domain.StepResult{
				SQL:    sql,
				Status: domain.StatusFailed,
				Error:  err.Error(),
			})
			att.Outcome = domain.OutcomeFailed
			return att
		}
		att.Steps = append(att.Steps, domain.StepResult{ID: id, SQL: sql, Status: domain.StatusSubmitted})
		step := att.LastStep()

		for cycles < s.opts.WaitCycles {
			st, perr := s.client.Poll(ctx, step.ID)
			if perr != nil {
				// Transient poll failures are retried within the budget.
				s.logger.Debug("poll retry", "attempt", index, "statement", step.ID, "error", perr)
			} else {
				step.Apply(st)
				s.logger.Debug("poll", "attempt", index, "statement", step.ID,
					"status", step.Status, "duration_s", seconds(step.Duration))
				if step.Status.Terminal() {
					break
				}
			}
			if !s.sleep(ctx) {
				att.Outcome = domain.OutcomeIncomplete
				return att
			}
			cycles++
		}

		switch step.Status {
		case domain.StatusFinished:
			// Next step of the chain, same session.
		case domain.StatusFailed, domain.StatusAborted:
			att.Outcome = domain.OutcomeFailed
			return att
		default:
			att.Outcome = domain.OutcomeIncomplete
			return att
		}
	}

	att.Outcome = domain.OutcomeFinished
	return att
}

// chainRun is the in-flight state of one attempt during an asynchronous run.
type chainRun struct {
	att   domain.Attempt
	sess  *domain.Session
	chain []string
	next  int // index of the next chain step to submit
	done  bool
}

// runAsync submits every attempt's first step back to back, then drives all
// in-flight steps through a single shared poll loop bounded by WaitCycles.
// When a step finishes, its chain's next step is submitted within the same
// cycle and is first polled in the following cycle. The whole batch is
// bounded by WaitCycles*SleepInterval regardless of attempt count.
func (s *Scheduler) runAsync(ctx context.Context, chain []string) []domain.Attempt {
	runs := make([]*chainRun, s.opts.Attempts)

	// Fan out first-step submissions, one exclusive session per attempt.
	var g errgroup.Group
	for i := range runs {
		run := &chainRun{
			att:   domain.Attempt{Index: i + 1},
			sess:  &domain.Session{},
			chain: chain,
		}
		runs[i] = run
		g.Go(func() error {
			s.submitNext(ctx, run)
			return nil
		})
	}
	_ = g.Wait()

	for cycle := 0; cycle < s.opts.WaitCycles; cycle++ {
		if cycle > 0 && !s.sleep(ctx) {
			break
		}
		pending := 0
		for _, run := range runs {
			if run.done {
				continue
			}
			s.pollOnce(ctx, run)
			if !run.done {
				pending++
			}
		}
		s.logger.Info("poll cycle", "cycle", cycle+1, "status", statusCounts(runs))
		if pending == 0 {
			break
		}
	}

	attempts := make([]domain.Attempt, 0, len(runs))
	for _, run := range runs {
		if !run.done {
			run.att.Outcome = domain.OutcomeIncomplete
		}
		s.logAttempt(&run.att)
		attempts = append(attempts, run.att)
	}
	return attempts
}

// submitNext submits the chain's next step. A rejection marks the attempt
// FAILED and excludes it from further submission; sibling attempts are
// unaffected.
func (s *Scheduler) submitNext(ctx context.Context, run *chainRun) {
	sql := run.chain[run.next]
	id, err := s.client.Submit(ctx, run.sess, sql)
	if err != nil {
		run.att.Steps = append(run.att.Steps, domain.StepResult{
			SQL:    sql,
			Status: domain.StatusFailed,
			Error:  err.Error(),
		})
		run.att.Outcome = domain.OutcomeFailed
		run.done = true
		return
	}
	run.att.Steps = append(run.att.Steps, domain.StepResult{ID: id, SQL: sql, Status: domain.StatusSubmitted})
	run.next++
}

// pollOnce polls the attempt's current step once and advances its chain when
// the step finished.
func (s *Scheduler) pollOnce(ctx context.Context, run *chainRun) {
	step := run.att.LastStep()
	st, err := s.client.Poll(ctx, step.ID)
	if err != nil {
		s.logger.Debug("poll retry", "attempt", run.att.Index, "statement", step.ID, "error", err)
		return
	}
	step.Apply(st)
	s.logger.Debug("poll", "attempt", run.att.Index, "statement", step.ID,
		"status", step.Status, "duration_s", seconds(step.Duration))

	switch step.Status {
	case domain.StatusFinished:
		if run.next < len(run.chain) {
			s.submitNext(ctx, run)
			return
		}
		run.att.Outcome = domain.OutcomeFinished
		run.done = true
	case domain.StatusFailed, domain.StatusAborted:
		run.att.Outcome = domain.OutcomeFailed
		run.done = true
	}
}

// sleep waits one poll interval. It returns false when the context ended,
// which stops watching in-flight statements without retracting them.
func (s *Scheduler) sleep(ctx context.Context) bool {
	if s.opts.SleepInterval <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(s.opts.SleepInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Scheduler) logAttempt(att *domain.Attempt) {
	args := []any{
		"attempt", att.Index,
		"outcome", att.Outcome,
		"duration_s", seconds(att.ChainDuration()),
	}
	step := att.LastStep()
	switch att.Outcome {
	case domain.OutcomeFinished:
		args = append(args, "has_result", step != nil && step.HasResultSet)
	case domain.OutcomeFailed:
		if step != nil {
			args = append(args, "error", step.Error)
		}
	case domain.OutcomeIncomplete:
		args = append(args, "reason", "wait cycles limit reached")
	}
	s.logger.Info("attempt", args...)
}

// statusCounts renders per-status attempt counts for one poll cycle, in the
// style "FINISHED: 3, STARTED: 2".
func statusCounts(runs []*chainRun) string {
	counts := make(map[string]int)
	for _, run := range runs {
		if step := run.att.LastStep(); step != nil {
			counts[string(step.Status)]++
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.4f", d.Seconds())
}
