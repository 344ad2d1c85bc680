package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/gaexport/internal/db"
	"github.com/gyeh/gaexport/internal/exitcode"
	"github.com/gyeh/gaexport/internal/export"
	"github.com/gyeh/gaexport/internal/gaclient"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Export reports for every configured property",
	RunE:  runExport,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&cfg.StartDate, "start-date", "", "First day to export, YYYY-MM-DD (default today)")
	f.StringVar(&cfg.EndDate, "end-date", "", "Last day to export, YYYY-MM-DD (default start date)")
	f.StringSliceVar(&cfg.Only, "property", nil, "Export only these properties (view id or label, repeatable)")
	f.BoolVar(&cfg.WriteParquet, "parquet", false, "Also write a Parquet file next to each CSV")
	f.StringVar(&cfg.Endpoint, "endpoint", os.Getenv("GAEXPORT_ENDPOINT"), "Reporting API endpoint override")
	rootCmd.AddCommand(runCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log, closer := setup(true)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cfg.ValidateWithCredentials(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	start, end, err := cfg.DateRange(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("invalid date range")
		os.Exit(exitcode.UsageError)
	}

	client, err := gaclient.New(ctx, clientOptions(), log)
	if err != nil {
		log.Error().Err(err).Str("credentials", cfg.CredentialsFile).Msg("authentication failed")
		if errors.Is(err, gaclient.ErrAuth) {
			os.Exit(exitcode.AuthError)
		}
		os.Exit(exitcode.UsageError)
	}

	var loader export.Loader
	if cfg.DSN != "" {
		pool, err := db.NewPool(ctx, cfg.DSN, log)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()

		if err := db.ApplyMigrations(ctx, pool, log); err != nil {
			log.Error().Err(err).Msg("migration failed")
			os.Exit(exitcode.MigrationError)
		}
		loader = &db.Loader{Pool: pool, Log: log}
	}

	summary := export.Run(ctx, client, loader, log, &cfg, start, end)

	fmt.Printf("Export complete: %d properties written, %d failed (%.1fs)\n",
		summary.Completed, summary.Failed, summary.DurationTotal.Seconds())
	for _, r := range summary.Results {
		if r.Err != nil {
			fmt.Printf("  %-10s FAILED %v\n", r.Property.Label, r.Err)
			continue
		}
		fmt.Printf("  %-10s %6d rows  %s\n", r.Property.Label, r.Rows, r.CSVPath)
	}
	return nil
}
