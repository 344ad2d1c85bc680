package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/gaexport/internal/config"
	"github.com/gyeh/gaexport/internal/model"
	"github.com/gyeh/gaexport/internal/parquetio"
)

var errUpstream = errors.New("upstream 500")

type fakeFetcher struct {
	reports map[string]*model.RawTable
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, viewID string, _, _ time.Time) (*model.RawTable, error) {
	f.calls = append(f.calls, viewID)
	if err := f.errs[viewID]; err != nil {
		return nil, err
	}
	return f.reports[viewID], nil
}

type fakeLoader struct {
	rows map[string]int
	err  error
}

func (l *fakeLoader) Load(_ context.Context, viewID string, _, _ time.Time, rows []*model.LoadRow) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	if l.rows == nil {
		l.rows = make(map[string]int)
	}
	l.rows[viewID] += len(rows)
	return int64(len(rows)), nil
}

func scenarioReport(day string, pages int) *model.RawTable {
	return &model.RawTable{
		Header:         []string{"ga:date", "ga:source", "ga:medium", "ga:sessions", "ga:pageviews"},
		DimensionCount: 3,
		Rows: []model.ReportRow{
			{Dimensions: []string{day, "google", "organic"}, Metrics: []string{"10", "50"}},
			{Dimensions: []string{day, "direct", "(none)"}, Metrics: []string{"5", "20"}},
		},
		Pages: pages,
	}
}

func testConfig(t *testing.T, props ...model.Property) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Properties = props
	return &cfg
}

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRun_Scenario(t *testing.T) {
	cfg := testConfig(t, model.Property{ID: "ga:1", Label: "Spain"})
	f := &fakeFetcher{reports: map[string]*model.RawTable{"ga:1": scenarioReport("20240101", 1)}}

	summary := Run(context.Background(), f, nil, zerolog.Nop(), cfg, day, day)

	if summary.Completed != 1 || summary.Failed != 0 {
		t.Fatalf("completed=%d failed=%d", summary.Completed, summary.Failed)
	}
	if summary.RunID == "" {
		t.Error("expected a run id")
	}

	path := filepath.Join(cfg.OutputDir, "Spain", "20240101.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "ga:date,ga:source,ga:medium,ga:sessions,ga:pageviews\n" +
		"2024-01-01,google,organic,10,50\n" +
		"2024-01-01,direct,(none),5,20\n"
	if string(data) != want {
		t.Errorf("unexpected content:\n%s\nwant:\n%s", data, want)
	}

	res := summary.Results[0]
	if res.CSVPath != path || res.Rows != 2 || res.Status != model.StatusCompleted {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRun_PartialFailure(t *testing.T) {
	cfg := testConfig(t,
		model.Property{ID: "ga:1", Label: "A"},
		model.Property{ID: "ga:2", Label: "B"},
		model.Property{ID: "ga:3", Label: "C"},
	)
	f := &fakeFetcher{
		reports: map[string]*model.RawTable{
			"ga:1": scenarioReport("20240101", 1),
			"ga:3": scenarioReport("20240101", 1),
		},
		errs: map[string]error{"ga:2": errUpstream},
	}

	summary := Run(context.Background(), f, nil, zerolog.Nop(), cfg, day, day)

	if summary.Completed != 2 || summary.Failed != 1 {
		t.Fatalf("completed=%d failed=%d", summary.Completed, summary.Failed)
	}
	if len(f.calls) != 3 || f.calls[2] != "ga:3" {
		t.Errorf("expected all properties attempted in order, got %v", f.calls)
	}

	for _, label := range []string{"A", "C"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, label, "20240101.csv")); err != nil {
			t.Errorf("expected output for %s: %v", label, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "B")); !os.IsNotExist(err) {
		t.Errorf("expected no output dir for failed property, got %v", err)
	}

	failed := summary.Results[1]
	if failed.Phase != "fetch" {
		t.Errorf("phase = %q, want fetch", failed.Phase)
	}
	var pe *PipelineError
	if !errors.As(failed.Err, &pe) || !errors.Is(failed.Err, errUpstream) {
		t.Errorf("expected PipelineError wrapping upstream error, got %v", failed.Err)
	}
}

func TestRun_OneFilePerProperty(t *testing.T) {
	cfg := testConfig(t, model.Property{ID: "ga:1", Label: "Spain"})
	raw := scenarioReport("20240101", 2)
	raw.Rows = append(raw.Rows, model.ReportRow{
		Dimensions: []string{"20240102", "bing", "organic"}, Metrics: []string{"1", "2"},
	})
	f := &fakeFetcher{reports: map[string]*model.RawTable{"ga:1": raw}}

	end := day.AddDate(0, 0, 1)
	summary := Run(context.Background(), f, nil, zerolog.Nop(), cfg, day, end)

	entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, "Spain"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "20240101.csv" {
		t.Errorf("expected a single file named by first row date, got %v", entries)
	}
	if res := summary.Results[0]; res.Rows != 3 || res.Pages != 2 {
		t.Errorf("rows=%d pages=%d, want 3 and 2", res.Rows, res.Pages)
	}
}

func TestRun_NormalizeAndEmptyFailures(t *testing.T) {
	cfg := testConfig(t,
		model.Property{ID: "ga:1", Label: "Broken"},
		model.Property{ID: "ga:2", Label: "Empty"},
	)
	broken := scenarioReport("20240101", 1)
	broken.Rows[1].Metrics = []string{"5"}
	empty := scenarioReport("20240101", 1)
	empty.Rows = nil
	f := &fakeFetcher{reports: map[string]*model.RawTable{"ga:1": broken, "ga:2": empty}}

	summary := Run(context.Background(), f, nil, zerolog.Nop(), cfg, day, day)

	if summary.Failed != 2 {
		t.Fatalf("failed=%d, want 2", summary.Failed)
	}
	if p := summary.Results[0].Phase; p != "normalize" {
		t.Errorf("broken phase = %q, want normalize", p)
	}
	if p := summary.Results[1].Phase; p != "write" {
		t.Errorf("empty phase = %q, want write", p)
	}
}

func TestRun_ParquetAndLoader(t *testing.T) {
	cfg := testConfig(t, model.Property{ID: "ga:1", Label: "Spain"})
	cfg.WriteParquet = true
	f := &fakeFetcher{reports: map[string]*model.RawTable{"ga:1": scenarioReport("20240101", 1)}}
	l := &fakeLoader{}

	summary := Run(context.Background(), f, l, zerolog.Nop(), cfg, day, day)

	res := summary.Results[0]
	if res.Status != model.StatusCompleted {
		t.Fatalf("property failed: %v", res.Err)
	}
	if res.RowsLoaded != 2 || l.rows["ga:1"] != 2 {
		t.Errorf("rows loaded = %d (loader saw %d), want 2", res.RowsLoaded, l.rows["ga:1"])
	}

	r, err := parquetio.Open(res.ParquetPath)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer r.Close()
	if r.NumRows() != 2 {
		t.Errorf("parquet rows = %d, want 2", r.NumRows())
	}
}

func TestRun_LoaderFailureKeepsCSV(t *testing.T) {
	cfg := testConfig(t, model.Property{ID: "ga:1", Label: "Spain"})
	f := &fakeFetcher{reports: map[string]*model.RawTable{"ga:1": scenarioReport("20240101", 1)}}

	summary := Run(context.Background(), f, &fakeLoader{err: errors.New("conn reset")}, zerolog.Nop(), cfg, day, day)

	res := summary.Results[0]
	if res.Phase != "load" {
		t.Errorf("phase = %q, want load", res.Phase)
	}
	if _, err := os.Stat(res.CSVPath); err != nil {
		t.Errorf("csv should remain after load failure: %v", err)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	cfg := testConfig(t, model.Property{ID: "ga:1", Label: "Spain"})
	f := &fakeFetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := Run(ctx, f, nil, zerolog.Nop(), cfg, day, day)

	if len(f.calls) != 0 || len(summary.Results) != 0 {
		t.Errorf("expected no work after cancel, got calls=%v", f.calls)
	}
}
