// Package parquetio writes Output Tables as Parquet files and reads them
// back for inspection.
package parquetio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/gaexport/internal/csvout"
	"github.com/gyeh/gaexport/internal/model"
)

// SchemaFor derives a flat Parquet schema from the table columns: dates
// become DATE, strings UTF8 and metrics optional DOUBLE.
func SchemaFor(cols []model.Column) (*parquet.Schema, error) {
	g := make(parquet.Group, len(cols))
	for _, c := range cols {
		if _, dup := g[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		switch c.Kind {
		case model.KindDate:
			g[c.Name] = parquet.Date()
		case model.KindNumber:
			g[c.Name] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
		default:
			g[c.Name] = parquet.String()
		}
	}
	return parquet.NewSchema("report", g), nil
}

// Write stores t next to its CSV counterpart as <label>/<YYYYMMDD>.parquet.
func Write(outputDir, label string, t *model.Table) (string, error) {
	path, err := csvout.Path(outputDir, label, ".parquet", t)
	if err != nil {
		return "", err
	}
	schema, err := SchemaFor(t.Columns)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create property dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.parquet")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := parquet.NewWriter(tmp, schema)
	if _, err := w.WriteRows(toRows(schema, t)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("close parquet writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename into place: %w", err)
	}
	return path, nil
}

// toRows lays each table row out in schema leaf order, which for a Group
// is sorted by column name rather than table order.
func toRows(schema *parquet.Schema, t *model.Table) []parquet.Row {
	leaf := make(map[string]int, len(t.Columns))
	for i, f := range schema.Fields() {
		leaf[f.Name()] = i
	}

	rows := make([]parquet.Row, len(t.Rows))
	for n, r := range t.Rows {
		row := make(parquet.Row, len(t.Columns))
		for i, col := range t.Columns {
			li := leaf[col.Name]
			switch col.Kind {
			case model.KindDate:
				row[li] = parquet.Int32Value(daysSinceEpoch(r[i].Date)).Level(0, 0, li)
			case model.KindNumber:
				if r[i].Number == nil {
					row[li] = parquet.ValueOf(nil).Level(0, 0, li)
				} else {
					row[li] = parquet.DoubleValue(*r[i].Number).Level(0, 1, li)
				}
			default:
				row[li] = parquet.ByteArrayValue([]byte(r[i].String)).Level(0, 0, li)
			}
		}
		rows[n] = row
	}
	return rows
}

func daysSinceEpoch(d time.Time) int32 {
	y, m, day := d.Date()
	utc := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return int32(utc.Unix() / 86400)
}

func fromDays(days int32) time.Time {
	return time.Unix(int64(days)*86400, 0).UTC()
}
