// roster serves and queries the student roster.
//
// Usage:
//
//	roster serve                         # HTTP API on :1245
//	roster ids                           # list student IDs
//	roster grade --location=SF           # graded students of a location
//	roster census                        # head count per field
//	roster page --page=2 --page-size=10  # one page of students
//	roster normalize < tags.json         # double numeric tag entries
//	roster import students.csv           # load a CSV into the database
//	roster migrate                       # apply Postgres migrations
//	roster hash-key <key>                # bcrypt hash for API_KEY_HASHES
//
// Storage is chosen from the environment: DATABASE_URL selects Postgres,
// ROSTER_SQLITE an embedded SQLite file, otherwise ROSTER_DATABASE is read
// as CSV.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Roupies/holbertonschool-web-back-end/config"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Query and update the student roster",
	Long: "roster loads the student roster from CSV, SQLite or Postgres and exposes\n" +
		"ID listing, graded location lookups, census, pagination and tag\n" +
		"normalization on the command line and over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ROSTER_CONFIG"), "YAML config file applied over the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(idsCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(censusCmd)
	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashKeyCmd)
	rootCmd.Version = version
}

// setup loads configuration and builds the logger for every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if c.App.Version == "" {
		c.App.Version = version
	}
	if logLevel != "" {
		c.Observability.LogLevel = logLevel
	}
	cfg = c

	// Logs go to stderr so that stdout carries only command output.
	log = logger.New(logger.Options{
		Output:    cmd.ErrOrStderr(),
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	}).With(logger.String("app", cfg.App.Name))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
