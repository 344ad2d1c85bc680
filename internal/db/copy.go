package db

import (
	"github.com/gyeh/gaexport/internal/model"
	"github.com/jackc/pgx/v5"
)

// RowSource implements pgx.CopyFromSource over a slice of LoadRows.
type RowSource struct {
	rows []*model.LoadRow
	idx  int
}

// NewRowSource creates a CopyFromSource backed by rows.
func NewRowSource(rows []*model.LoadRow) *RowSource {
	return &RowSource{rows: rows, idx: -1}
}

// Next advances to the next row. Returns false after the last row.
func (s *RowSource) Next() bool {
	s.idx++
	return s.idx < len(s.rows)
}

// Values returns the current row's values in COPY column order.
func (s *RowSource) Values() ([]any, error) {
	return s.rows[s.idx].CopyValues(), nil
}

// Err always returns nil; the rows are already in memory.
func (s *RowSource) Err() error {
	return nil
}

// Compile-time check that RowSource satisfies the interface.
var _ pgx.CopyFromSource = (*RowSource)(nil)
