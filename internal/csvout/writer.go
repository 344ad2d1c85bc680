// Package csvout persists Output Tables as one CSV file per property per day.
package csvout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gyeh/gaexport/internal/model"
	"github.com/gyeh/gaexport/internal/normalize"
)

// ErrEmptyTable is returned when there is no first row to name the file by.
var ErrEmptyTable = errors.New("table has no rows")

// Path returns <outputDir>/<label>/<YYYYMMDD><ext> for the table's first row.
func Path(outputDir, label, ext string, t *model.Table) (string, error) {
	first, ok := t.FirstDate()
	if !ok {
		return "", ErrEmptyTable
	}
	dir := normalize.DirName(label)
	if dir == "" {
		return "", fmt.Errorf("unusable property label %q", label)
	}
	return filepath.Join(outputDir, dir, first.Format("20060102")+ext), nil
}

// Write stores t as CSV under outputDir, creating the property directory if
// needed and replacing any existing file of the same name. The file is
// written to a temp file and renamed, so a failed write leaves the previous
// file untouched.
func Write(outputDir, label string, t *model.Table) (string, error) {
	path, err := Path(outputDir, label, ".csv", t)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create property dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, t); err != nil {
		tmp.Close()
		return "", err
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

// Encode writes the header and every row of t as CSV. Dates are written as
// YYYY-MM-DD, numbers in their shortest exact form, missing numbers empty.
func Encode(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for n, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = formatCell(col.Kind, row[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", n+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatCell(kind model.Kind, c model.Cell) string {
	switch kind {
	case model.KindDate:
		return c.Date.Format(time.DateOnly)
	case model.KindNumber:
		if c.Number == nil {
			return ""
		}
		return strconv.FormatFloat(*c.Number, 'f', -1, 64)
	default:
		return c.String
	}
}
