package model

import (
	"time"

	"github.com/google/uuid"
)

// LoadRow is the DB-ready representation of one Output Table row.
// Dimensions and metrics are keyed by header name and stored as JSONB so
// the table does not depend on the configured field lists.
type LoadRow struct {
	RunID      uuid.UUID
	ViewID     string
	Label      string
	RowNumber  int64
	RowHash    []byte
	ReportDate time.Time
	Dimensions map[string]string
	Metrics    map[string]*float64
}

// LoadColumns returns the ordered column names for COPY into gaexport.report_rows.
func LoadColumns() []string {
	return []string{
		"run_id",
		"view_id",
		"property_label",
		"row_number",
		"row_hash",
		"report_date",
		"dimensions",
		"metrics",
	}
}

// CopyValues returns the row values in the same order as LoadColumns(),
// suitable for pgx CopyFromSource.
func (r *LoadRow) CopyValues() []any {
	return []any{
		r.RunID,
		r.ViewID,
		r.Label,
		r.RowNumber,
		r.RowHash,
		r.ReportDate,
		r.Dimensions,
		r.Metrics,
	}
}
