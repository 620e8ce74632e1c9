package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"rsbench/internal/bench"
	"rsbench/internal/client"
	"rsbench/internal/config"
	"rsbench/internal/domain"
	"rsbench/internal/history"
	"rsbench/internal/plan"
	"rsbench/internal/report"
)

func runBench(ctx context.Context, opts *options, targetName, testFile string) error {
	target, err := config.Load(opts.configPath, targetName)
	if err != nil {
		return err
	}

	logger := newLogger(opts.verbose || target.VerboseLogging)

	specs, err := plan.Load(filepath.Join(opts.testsDir, testFile))
	if err != nil {
		return err
	}
	logger.Info("test plan loaded", "file", testFile, "tests", len(specs))

	cl, err := client.New(ctx, target, logger)
	if err != nil {
		return err
	}

	var historyDB *sql.DB
	if opts.historyDB != "" {
		historyDB, err = history.Open(opts.historyDB)
		if err != nil {
			return err
		}
		defer historyDB.Close()
	}

	if opts.schedule == "" {
		return executeRun(ctx, opts, target, cl, historyDB, logger, specs)
	}
	return runScheduled(ctx, opts, target, cl, historyDB, logger, specs)
}

// runScheduled executes one run immediately, then re-runs on the cron
// schedule until the process is interrupted.
func runScheduled(ctx context.Context, opts *options, target *config.Target,
	cl domain.StatementClient, historyDB *sql.DB, logger *slog.Logger, specs []domain.TestSpec) error {

	c := cron.New()
	_, err := c.AddFunc(opts.schedule, func() {
		if err := executeRun(ctx, opts, target, cl, historyDB, logger, specs); err != nil {
			logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", opts.schedule, err)
	}

	if err := executeRun(ctx, opts, target, cl, historyDB, logger, specs); err != nil {
		return err
	}

	c.Start()
	logger.Info("schedule active", "schedule", opts.schedule)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}

	<-c.Stop().Done()
	logger.Info("schedule stopped")
	return nil
}

func executeRun(ctx context.Context, opts *options, target *config.Target,
	cl domain.StatementClient, historyDB *sql.DB, logger *slog.Logger, specs []domain.TestSpec) error {

	runID := domain.NewID()

	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	csvPath := filepath.Join(opts.outputDir, time.Now().Format("20060102_150405")+".csv")
	csvSink, err := report.NewCSVSink(csvPath)
	if err != nil {
		return err
	}
	defer csvSink.Close()

	sinks := []domain.RunRecordSink{csvSink}
	if historyDB != nil {
		sinks = append(sinks, history.NewRepo(historyDB, runID))
	}

	runner := &bench.Runner{
		Target:     target,
		Client:     cl,
		Sinks:      sinks,
		Logger:     logger,
		RunID:      runID,
		SampleRows: report.DefaultSampleRows,
	}
	runner.Run(ctx, specs)

	logger.Info("run complete", "run_id", runID, "run_details", csvPath)
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
