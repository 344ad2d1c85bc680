package model

// ReportRow is one row of a report page exactly as the API returns it.
type ReportRow struct {
	Dimensions []string
	Metrics    []string
}

// Values returns the row's values in header order: dimensions, then metrics.
func (r ReportRow) Values() []string {
	out := make([]string, 0, len(r.Dimensions)+len(r.Metrics))
	out = append(out, r.Dimensions...)
	return append(out, r.Metrics...)
}

// ReportPage is one batchGet response for a single report.
type ReportPage struct {
	Dimensions    []string // dimension header names
	Metrics       []string // metric header names
	Rows          []ReportRow
	NextPageToken string
}

// RawTable is the concatenation of all pages for a (property, date range)
// query. Header comes from the first page.
type RawTable struct {
	Header         []string
	DimensionCount int
	Rows           []ReportRow
	Pages          int
}
