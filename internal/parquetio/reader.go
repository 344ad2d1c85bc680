package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Reader wraps a parquet Reader for streaming back an exported report.
type Reader struct {
	file   *os.File
	pf     *parquet.File
	reader *parquet.Reader
}

// Open opens a Parquet file and returns a streaming Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	return &Reader{file: f, pf: pf, reader: parquet.NewReader(pf)}, nil
}

// NumRows returns the total number of rows in the Parquet file.
func (r *Reader) NumRows() int64 {
	return r.pf.NumRows()
}

// Schema returns the Parquet schema for validation.
func (r *Reader) Schema() *parquet.Schema {
	return r.pf.Schema()
}

// Columns returns the leaf column names in schema order.
func (r *Reader) Columns() []string {
	fields := r.pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// ReadAll decodes every row into a map keyed by column name. Dates decode
// to time.Time, metrics to float64 or nil, strings to string.
func (r *Reader) ReadAll() ([]map[string]any, error) {
	cols := r.Columns()
	var out []map[string]any
	buf := make([]parquet.Row, 128)

	for {
		n, readErr := r.reader.ReadRows(buf)
		for _, row := range buf[:n] {
			m := make(map[string]any, len(cols))
			for _, v := range row {
				m[cols[v.Column()]] = decode(v)
			}
			out = append(out, m)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read parquet rows: %w", readErr)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

func decode(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Int32:
		return fromDays(v.Int32())
	case parquet.Double:
		return v.Double()
	default:
		return string(v.ByteArray())
	}
}

// Close releases all resources.
func (r *Reader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
