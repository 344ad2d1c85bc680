package model

import "time"

// Kind is the type of an Output Table column.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	default:
		return "string"
	}
}

// Column describes one Output Table column.
type Column struct {
	Name string
	Kind Kind
}

// Cell holds a single typed value. Exactly one field is meaningful,
// selected by the column's Kind. A nil Number is a missing metric.
type Cell struct {
	String string
	Date   time.Time
	Number *float64
}

// Row is one normalized report row, cells in column order.
type Row []Cell

// Table is the normalized report for one property over a date range.
type Table struct {
	Columns    []Column
	Rows       []Row
	DateColumn int // index of the KindDate column
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// FirstDate returns the date of the first row, or ok=false for an empty table.
func (t *Table) FirstDate() (time.Time, bool) {
	if len(t.Rows) == 0 {
		return time.Time{}, false
	}
	return t.Rows[0][t.DateColumn].Date, true
}
