package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/gaexport/internal/model"
	embedsql "github.com/gyeh/gaexport/internal/sql"
)

// LoadReport replaces a view's rows for [start, end] with rows in a single
// transaction: delete the range, then COPY the new rows in.
func LoadReport(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, viewID string, start, end time.Time, rows []*model.LoadRow) (int64, error) {
	begin := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, embedsql.DeleteReportRange, viewID, start, end)
	if err != nil {
		return 0, fmt.Errorf("delete previous rows: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"gaexport", "report_rows"},
		model.LoadColumns(),
		NewRowSource(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy report rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit load: %w", err)
	}

	log.Info().
		Str("view_id", viewID).
		Int64("rows_replaced", tag.RowsAffected()).
		Int64("rows_loaded", copied).
		Dur("duration", time.Since(begin)).
		Msg("report loaded")

	return copied, nil
}

// CountRows returns how many rows are stored for a view over [start, end].
func CountRows(ctx context.Context, pool *pgxpool.Pool, viewID string, start, end time.Time) (int64, error) {
	var n int64
	if err := pool.QueryRow(ctx, embedsql.CountReportRows, viewID, start, end).Scan(&n); err != nil {
		return 0, fmt.Errorf("count report rows: %w", err)
	}
	return n, nil
}

// Loader loads report rows through a connection pool.
type Loader struct {
	Pool *pgxpool.Pool
	Log  zerolog.Logger
}

func (l *Loader) Load(ctx context.Context, viewID string, start, end time.Time, rows []*model.LoadRow) (int64, error) {
	return LoadReport(ctx, l.Pool, l.Log, viewID, start, end, rows)
}
