package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/gaexport/internal/config"
	"github.com/gyeh/gaexport/internal/exitcode"
	"github.com/gyeh/gaexport/internal/gaclient"
	"github.com/gyeh/gaexport/internal/logging"
)

// .env must be loaded before the flag defaults below read the environment.
var dotenvErr = godotenv.Load()

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "gaexport",
	Short: "Google Analytics report → CSV exporter",
	Long: "Fetches Reporting API v4 reports for a fixed set of views and writes one CSV per view per day, " +
		"optionally mirrored to Parquet and Postgres.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.ConfigFile, "config", os.Getenv("GAEXPORT_CONFIG"), "YAML file overriding properties, dimensions and metrics")
	pf.StringVar(&cfg.CredentialsFile, "credentials", envOr("GAEXPORT_CREDENTIALS", cfg.CredentialsFile), "Service-account key file (or set GAEXPORT_CREDENTIALS)")
	pf.StringVar(&cfg.OutputDir, "output-dir", envOr("GAEXPORT_OUTPUT_DIR", cfg.OutputDir), "Root directory for exported files")
	pf.StringVar(&cfg.LogFile, "log-file", os.Getenv("GAEXPORT_LOG_FILE"), "Log file (default <output-dir>/analytics.log)")
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// setup builds the logger and applies the config file. With toFile the log
// is also written to cfg.LogPath(). Exits on invalid input.
func setup(toFile bool) (zerolog.Logger, io.Closer) {
	logFile := ""
	if toFile {
		logFile = cfg.LogPath()
	}
	log, closer, err := logging.Setup(cfg.LogFormat, logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log setup failed: %v\n", err)
		os.Exit(exitcode.UsageError)
	}
	if dotenvErr == nil {
		log.Debug().Msg("loaded .env")
	}

	if cfg.ConfigFile != "" {
		if err := cfg.LoadFromFile(cfg.ConfigFile); err != nil {
			log.Error().Err(err).Str("config", cfg.ConfigFile).Msg("config file invalid")
			os.Exit(exitcode.UsageError)
		}
	}
	return log, closer
}

func clientOptions() gaclient.Options {
	return gaclient.Options{
		CredentialsFile: cfg.CredentialsFile,
		Scope:           cfg.Scope,
		Endpoint:        cfg.Endpoint,
		Dimensions:      cfg.Dimensions,
		Metrics:         cfg.Metrics,
		DateDimension:   cfg.DateDimension,
		PageSize:        cfg.PageSize,
		MaxPages:        cfg.MaxPages,
	}
}
