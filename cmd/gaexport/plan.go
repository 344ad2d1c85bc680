package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/gaexport/internal/exitcode"
	"github.com/gyeh/gaexport/internal/gaclient"
	"github.com/gyeh/gaexport/internal/normalize"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run: show the properties, paths and requests a run would use",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&cfg.StartDate, "start-date", "", "First day to export, YYYY-MM-DD (default today)")
	f.StringVar(&cfg.EndDate, "end-date", "", "Last day to export, YYYY-MM-DD (default start date)")
	f.StringSliceVar(&cfg.Only, "property", nil, "Plan only these properties (view id or label, repeatable)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log, closer := setup(false)
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	start, end, err := cfg.DateRange(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("invalid date range")
		os.Exit(exitcode.UsageError)
	}

	client := gaclient.NewWithService(nil, clientOptions(), log)

	fmt.Println("=== gaexport plan ===")
	fmt.Printf("Date range:  %s .. %s\n", start.Format(time.DateOnly), end.Format(time.DateOnly))
	fmt.Printf("Credentials: %s\n", cfg.CredentialsFile)
	fmt.Printf("Output dir:  %s\n", cfg.OutputDir)
	fmt.Printf("Log file:    %s\n", cfg.LogPath())
	fmt.Printf("Dimensions:  %v\n", cfg.Dimensions)
	fmt.Printf("Metrics:     %v\n", cfg.Metrics)
	fmt.Printf("Paging:      %d rows/page, at most %d pages\n", cfg.PageSize, cfg.MaxPages)
	fmt.Println()

	for _, p := range cfg.SelectedProperties() {
		fmt.Printf("%s (%s) -> %s/%s/<first row date>.csv\n",
			p.Label, p.ID, cfg.OutputDir, normalize.DirName(p.Label))
		body, err := json.MarshalIndent(client.BuildRequest(p.ID, start, end, ""), "  ", "  ")
		if err != nil {
			log.Error().Err(err).Msg("failed to encode request")
			os.Exit(exitcode.UsageError)
		}
		fmt.Printf("  %s\n", body)
	}
	return nil
}
