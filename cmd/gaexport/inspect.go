package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gyeh/gaexport/internal/csvout"
	"github.com/gyeh/gaexport/internal/exitcode"
	"github.com/gyeh/gaexport/internal/normalize"
	"github.com/gyeh/gaexport/internal/parquetio"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Validate an exported CSV or Parquet file and print its stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	log, closer := setup(false)
	defer closer.Close()
	path := args[0]

	sha, err := normalize.FileHash(path)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.UsageError)
	}

	var columns []string
	var rows int64
	if filepath.Ext(path) == ".parquet" {
		reader, err := parquetio.Open(path)
		if err != nil {
			log.Error().Err(err).Msg("failed to open parquet file")
			os.Exit(exitcode.UsageError)
		}
		defer reader.Close()

		if err := parquetio.ValidateSchema(reader.Schema(), cfg.DateDimension); err != nil {
			log.Error().Err(err).Msg("schema validation failed")
			os.Exit(exitcode.UsageError)
		}
		columns = reader.Columns()
		rows = reader.NumRows()
	} else {
		header, n, err := csvout.Inspect(path)
		if err != nil {
			log.Error().Err(err).Msg("failed to read csv file")
			os.Exit(exitcode.UsageError)
		}
		columns = header
		rows = int64(n)
	}

	fmt.Println("=== gaexport inspect ===")
	fmt.Printf("File:    %s\n", path)
	fmt.Printf("SHA-256: %s\n", sha)
	fmt.Printf("Rows:    %d\n", rows)
	fmt.Printf("Columns: %v\n", columns)
	return nil
}
