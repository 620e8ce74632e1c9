// Package report persists run records and samples result rows for display.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"rsbench/internal/domain"
)

// csvHeader is the persisted run-record column order.
var csvHeader = []string{
	"Test", "Attempt", "CreatedAt", "Duration", "HasResultSet", "Id",
	"QueryString", "ExternalQueryId", "ResultRows", "ResultSize", "Status",
	"UpdatedAt", "Error",
}

var _ domain.RunRecordSink = (*CSVSink)(nil)

// CSVSink appends run records to a per-run CSV file, one row per step result.
type CSVSink struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSVSink creates the file and writes the header row.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create run details file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write run details header: %w", err)
	}
	w.Flush()
	return &CSVSink{file: f, w: w}, nil
}

// Append writes one record and flushes so partial runs still leave usable
// output behind.
func (s *CSVSink) Append(_ context.Context, rec domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := []string{
		strconv.Itoa(rec.Test),
		strconv.Itoa(rec.Attempt),
		formatTime(rec.CreatedAt),
		strconv.FormatFloat(rec.Duration, 'f', -1, 64),
		strconv.FormatBool(rec.HasResultSet),
		rec.ID,
		rec.QueryString,
		rec.ExternalQueryID,
		strconv.FormatInt(rec.ResultRows, 10),
		strconv.FormatInt(rec.ResultSize, 10),
		rec.Status,
		formatTime(rec.UpdatedAt),
		rec.Error,
	}
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("write run record: %w", err)
	}
	s.w.Flush()
	return s.w.Error()
}

// Close flushes and closes the underlying file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// ReadRecords parses a run details file back into records.
func ReadRecords(path string) ([]domain.RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run details file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read run details file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("run details file %s is empty", path)
	}

	records := make([]domain.RunRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (domain.RunRecord, error) {
	if len(row) != len(csvHeader) {
		return domain.RunRecord{}, fmt.Errorf("run record has %d fields, want %d", len(row), len(csvHeader))
	}
	test, err := strconv.Atoi(row[0])
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse Test: %w", err)
	}
	attempt, err := strconv.Atoi(row[1])
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse Attempt: %w", err)
	}
	duration, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse Duration: %w", err)
	}
	hasResult, err := strconv.ParseBool(row[4])
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse HasResultSet: %w", err)
	}
	resultRows, err := strconv.ParseInt(row[8], 10, 64)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse ResultRows: %w", err)
	}
	resultSize, err := strconv.ParseInt(row[9], 10, 64)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse ResultSize: %w", err)
	}
	return domain.RunRecord{
		Test:            test,
		Attempt:         attempt,
		CreatedAt:       parseTime(row[2]),
		Duration:        duration,
		HasResultSet:    hasResult,
		ID:              row[5],
		QueryString:     row[6],
		ExternalQueryID: row[7],
		ResultRows:      resultRows,
		ResultSize:      resultSize,
		Status:          row[10],
		UpdatedAt:       parseTime(row[11]),
		Error:           row[12],
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
