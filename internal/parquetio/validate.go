package parquetio

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ValidateSchema checks that an exported file carries the date column and
// at least one other column.
func ValidateSchema(schema *parquet.Schema, dateColumn string) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[field.Name()] = true
	}

	if !columns[dateColumn] {
		return fmt.Errorf("missing date column: %s", dateColumn)
	}
	if len(columns) < 2 {
		names := make([]string, 0, len(columns))
		for name := range columns {
			names = append(names, name)
		}
		return fmt.Errorf("no report columns besides the date; found: %s",
			strings.Join(names, ", "))
	}
	return nil
}
