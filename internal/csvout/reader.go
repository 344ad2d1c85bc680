package csvout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Inspect reads a written CSV file back and returns its header and data
// row count.
func Inspect(path string) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	rows := 0
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		rows++
	}
	return header, rows, nil
}
