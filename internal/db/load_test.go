package db_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/gaexport/internal/db"
	"github.com/gyeh/gaexport/internal/model"
	"github.com/gyeh/gaexport/internal/normalize"
)

const (
	testPort     = 15433
	testDB       = "gaexporttest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var testDSN string

// The embedded server downloads a Postgres binary on first use, so the
// database tests only run when GAEXPORT_PG_TESTS is set.
func TestMain(m *testing.M) {
	if os.Getenv("GAEXPORT_PG_TESTS") == "" {
		os.Exit(m.Run())
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testDSN == "" {
		t.Skip("set GAEXPORT_PG_TESTS=1 to run embedded postgres tests")
	}
	ctx := context.Background()

	pool, err := db.NewPool(ctx, testDSN, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS gaexport CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	if err := db.ApplyMigrations(ctx, pool, zerolog.Nop()); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

func loadRows(t *testing.T, runID uuid.UUID, sessions ...string) []*model.LoadRow {
	t.Helper()
	raw := &model.RawTable{
		Header:         []string{"ga:date", "ga:source", "ga:medium", "ga:sessions"},
		DimensionCount: 3,
	}
	for i, s := range sessions {
		raw.Rows = append(raw.Rows, model.ReportRow{
			Dimensions: []string{"20240101", fmt.Sprintf("source-%d", i), "organic"},
			Metrics:    []string{s},
		})
	}
	tbl, err := normalize.ToTable(raw, "ga:date")
	if err != nil {
		t.Fatalf("ToTable: %v", err)
	}
	return normalize.ToLoadRows(tbl, runID, model.Property{ID: "ga:1", Label: "Spain"})
}

func TestLoadReport_ReplacesRange(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	n, err := db.LoadReport(ctx, pool, zerolog.Nop(), "ga:1", day, day, loadRows(t, uuid.New(), "1", "2", "3"))
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if n != 3 {
		t.Errorf("first load copied %d rows, want 3", n)
	}

	n, err = db.LoadReport(ctx, pool, zerolog.Nop(), "ga:1", day, day, loadRows(t, uuid.New(), "4", "n/a"))
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if n != 2 {
		t.Errorf("second load copied %d rows, want 2", n)
	}

	count, err := db.CountRows(ctx, pool, "ga:1", day, day)
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if count != 2 {
		t.Errorf("expected previous rows replaced, found %d rows", count)
	}

	var missing int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM gaexport.report_rows WHERE metrics->'ga:sessions' = 'null'::jsonb`,
	).Scan(&missing)
	if err != nil {
		t.Fatalf("query missing metrics: %v", err)
	}
	if missing != 1 {
		t.Errorf("expected one null sessions metric, got %d", missing)
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	pool := setupDB(t)
	if err := db.ApplyMigrations(context.Background(), pool, zerolog.Nop()); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}
