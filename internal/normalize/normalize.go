package normalize

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gyeh/gaexport/internal/model"
)

var (
	// ErrColumnMismatch is returned when a row's dimension or metric count differs from the header.
	ErrColumnMismatch = errors.New("column count mismatch")
	// ErrNoDateColumn is returned when the header lacks the date dimension.
	ErrNoDateColumn = errors.New("date dimension missing from header")
	// ErrBadDate is returned when a date dimension value cannot be parsed.
	ErrBadDate = errors.New("unparseable date")
)

// ToTable converts a RawTable into the typed Output Table. The column named
// dateDimension becomes a KindDate column, the remaining dimensions stay
// strings and every metric column becomes a nullable number.
//
// Column count mismatches and unparseable dates fail the whole conversion;
// unparseable metric values only become missing.
func ToTable(raw *model.RawTable, dateDimension string) (*model.Table, error) {
	if raw.DimensionCount < 0 || raw.DimensionCount > len(raw.Header) {
		return nil, fmt.Errorf("%w: %d dimensions in a %d-column header",
			ErrColumnMismatch, raw.DimensionCount, len(raw.Header))
	}

	t := &model.Table{
		Columns:    make([]model.Column, len(raw.Header)),
		Rows:       make([]model.Row, 0, len(raw.Rows)),
		DateColumn: -1,
	}
	for i, name := range raw.Header {
		switch {
		case i >= raw.DimensionCount:
			t.Columns[i] = model.Column{Name: name, Kind: model.KindNumber}
		case name == dateDimension && t.DateColumn < 0:
			t.Columns[i] = model.Column{Name: name, Kind: model.KindDate}
			t.DateColumn = i
		default:
			t.Columns[i] = model.Column{Name: name, Kind: model.KindString}
		}
	}
	if t.DateColumn < 0 {
		return nil, fmt.Errorf("%w: %q not in %v", ErrNoDateColumn, dateDimension, raw.Header)
	}

	for n, r := range raw.Rows {
		if len(r.Dimensions) != raw.DimensionCount || len(r.Metrics) != len(raw.Header)-raw.DimensionCount {
			return nil, fmt.Errorf("%w: row %d has %d dimensions and %d metrics, header has %d and %d",
				ErrColumnMismatch, n+1, len(r.Dimensions), len(r.Metrics),
				raw.DimensionCount, len(raw.Header)-raw.DimensionCount)
		}
		values := r.Values()

		row := make(model.Row, len(values))
		for i, v := range values {
			switch t.Columns[i].Kind {
			case model.KindDate:
				d := ParseDate(v)
				if d == nil {
					return nil, fmt.Errorf("%w: row %d %s=%q", ErrBadDate, n+1, t.Columns[i].Name, v)
				}
				row[i].Date = *d
			case model.KindNumber:
				row[i].Number = ParseMetric(v)
			default:
				row[i].String = v
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// ToLoadRows converts an Output Table into DB-ready rows for the given run
// and property. Row numbers start at 1.
func ToLoadRows(t *model.Table, runID uuid.UUID, prop model.Property) []*model.LoadRow {
	out := make([]*model.LoadRow, 0, len(t.Rows))
	for n, row := range t.Rows {
		lr := &model.LoadRow{
			RunID:      runID,
			ViewID:     prop.ID,
			Label:      prop.Label,
			RowNumber:  int64(n + 1),
			Dimensions: make(map[string]string),
			Metrics:    make(map[string]*float64),
		}

		key := []string{prop.ID}
		for i, col := range t.Columns {
			switch col.Kind {
			case model.KindDate:
				lr.ReportDate = row[i].Date
				s := row[i].Date.Format("2006-01-02")
				lr.Dimensions[col.Name] = s
				key = append(key, s)
			case model.KindNumber:
				lr.Metrics[col.Name] = row[i].Number
			default:
				lr.Dimensions[col.Name] = row[i].String
				key = append(key, row[i].String)
			}
		}
		lr.RowHash = RowHash(key...)
		out = append(out, lr)
	}
	return out
}
