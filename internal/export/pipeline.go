// Package export runs the per-property fetch, normalize and write sequence
// for one date range.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/gaexport/internal/config"
	"github.com/gyeh/gaexport/internal/csvout"
	"github.com/gyeh/gaexport/internal/model"
	"github.com/gyeh/gaexport/internal/normalize"
	"github.com/gyeh/gaexport/internal/parquetio"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the complete raw report for one view.
type Fetcher interface {
	Fetch(ctx context.Context, viewID string, start, end time.Time) (*model.RawTable, error)
}

// Loader stores normalized rows, replacing the view's rows for the range.
type Loader interface {
	Load(ctx context.Context, viewID string, start, end time.Time, rows []*model.LoadRow) (int64, error)
}

// Run exports every selected property of cfg over [start, end]. A failing
// property is logged and skipped; Run itself never fails. loader may be nil.
func Run(ctx context.Context, f Fetcher, loader Loader, log zerolog.Logger, cfg *config.Config, start, end time.Time) *model.RunSummary {
	totalStart := time.Now()
	runID := uuid.New()

	summary := &model.RunSummary{
		RunID:     runID.String(),
		StartDate: start,
		EndDate:   end,
	}
	log = log.With().Str("run_id", summary.RunID).Logger()

	props := cfg.SelectedProperties()
	log.Info().
		Str("start_date", start.Format(time.DateOnly)).
		Str("end_date", end.Format(time.DateOnly)).
		Int("properties", len(props)).
		Msg("starting export")

	for _, p := range props {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("export interrupted")
			break
		}

		plog := log.With().Str("property", p.Label).Str("view_id", p.ID).Logger()
		res := exportProperty(ctx, f, loader, plog, cfg, runID, p, start, end)
		summary.Results = append(summary.Results, res)

		if res.Status == model.StatusFailed {
			summary.Failed++
			plog.Error().
				Err(res.Err).
				Str("phase", res.Phase).
				Msg("property failed, skipping")
			continue
		}
		summary.Completed++
		plog.Info().
			Int("rows", res.Rows).
			Int("pages", res.Pages).
			Str("file", res.CSVPath).
			Dur("duration", res.Duration).
			Msg("property exported")
	}

	summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Int("completed", summary.Completed).
		Int("failed", summary.Failed).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("export complete")

	return summary
}

func exportProperty(ctx context.Context, f Fetcher, loader Loader, log zerolog.Logger, cfg *config.Config,
	runID uuid.UUID, p model.Property, start, end time.Time) model.PropertyResult {
	begin := time.Now()
	res := model.PropertyResult{Property: p, Status: model.StatusFailed}
	fail := func(phase string, err error) model.PropertyResult {
		res.Phase = phase
		res.Err = &PipelineError{Phase: phase, Err: err}
		res.Duration = time.Since(begin)
		return res
	}

	// Phase 1: Fetch
	raw, err := f.Fetch(ctx, p.ID, start, end)
	if err != nil {
		return fail("fetch", err)
	}
	res.Pages = raw.Pages

	// Phase 2: Normalize
	tbl, err := normalize.ToTable(raw, cfg.DateDimension)
	if err != nil {
		return fail("normalize", err)
	}
	res.Rows = tbl.Len()

	// Phase 3: Write
	path, err := csvout.Write(cfg.OutputDir, p.Label, tbl)
	if err != nil {
		return fail("write", err)
	}
	res.CSVPath = path
	if sum, err := normalize.FileHash(path); err == nil {
		log.Debug().Str("file", path).Str("sha256", sum).Msg("csv written")
	}

	// Phase 4: optional sinks
	if cfg.WriteParquet {
		pq, err := parquetio.Write(cfg.OutputDir, p.Label, tbl)
		if err != nil {
			return fail("parquet", err)
		}
		res.ParquetPath = pq
		log.Debug().Str("file", pq).Msg("parquet written")
	}

	if loader != nil {
		n, err := loader.Load(ctx, p.ID, start, end, normalize.ToLoadRows(tbl, runID, p))
		if err != nil {
			return fail("load", err)
		}
		res.RowsLoaded = n
	}

	res.Status = model.StatusCompleted
	res.Duration = time.Since(begin)
	return res
}
