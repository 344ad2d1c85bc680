package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/delete_report_range.sql
var DeleteReportRange string

//go:embed queries/count_report_rows.sql
var CountReportRows string
