// Package syncer implements the validation-and-load pipeline for SheetSync:
// record validation, duplicate resolution, foreign-key checking, batched
// loading and the run orchestration across tables.
package syncer

import (
	"time"
)

// TableStats accumulates the counters for one table's sync pass.
type TableStats struct {
	Table string
	Sheet string

	RowsRead     int // raw rows below the header, blank ones included
	EmptyRows    int
	ValidRows    int
	InvalidRows  int
	Duplicates   int
	FKErrors     int
	Inserted     int
	InsertErrors int

	Skipped       bool   // load never attempted (read failure or no survivors)
	ReadError     string // set when the source read failed
	CountMismatch bool   // post-load count check disagreed with Inserted

	Duration time.Duration

	// SampleErrors retains the first few row-level problems for the final
	// report; the full count lives in InvalidRows/FKErrors.
	SampleErrors []RowError
}

// ErrorCount returns the number of rows this table lost to any failure.
func (s *TableStats) ErrorCount() int {
	return s.InvalidRows + s.FKErrors + s.InsertErrors
}

// RunStats aggregates one full sync run.
type RunStats struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Tables      []TableStats
}

// Totals is the fold of all per-table counters.
type Totals struct {
	RowsRead     int
	EmptyRows    int
	ValidRows    int
	InvalidRows  int
	Duplicates   int
	FKErrors     int
	Inserted     int
	InsertErrors int
}

// Totals folds the per-table stats into run-level counters.
func (r *RunStats) Totals() Totals {
	var t Totals
	for _, ts := range r.Tables {
		t.RowsRead += ts.RowsRead
		t.EmptyRows += ts.EmptyRows
		t.ValidRows += ts.ValidRows
		t.InvalidRows += ts.InvalidRows
		t.Duplicates += ts.Duplicates
		t.FKErrors += ts.FKErrors
		t.Inserted += ts.Inserted
		t.InsertErrors += ts.InsertErrors
	}
	return t
}

// ErrorCount returns the number of rows lost to any failure across the run.
func (r *RunStats) ErrorCount() int {
	total := 0
	for i := range r.Tables {
		total += r.Tables[i].ErrorCount()
	}
	return total
}
