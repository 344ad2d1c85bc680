package model

import "time"

// Status is the terminal state of one property within a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// PropertyResult captures the outcome of exporting a single property.
type PropertyResult struct {
	Property    Property
	Status      Status
	Phase       string // failing phase; empty when completed
	Err         error
	Pages       int
	Rows        int
	CSVPath     string
	ParquetPath string
	RowsLoaded  int64
	Duration    time.Duration
}

// RunSummary captures metrics from a single export run.
type RunSummary struct {
	RunID         string
	StartDate     time.Time
	EndDate       time.Time
	Results       []PropertyResult
	Completed     int
	Failed        int
	DurationTotal time.Duration
}
