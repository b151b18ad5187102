package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile        string
	logLevel       string
	logFormat      string
	batchSize      int
	sleepSeconds   float64
	skipCountCheck bool
)

var rootCmd = &cobra.Command{
	Use:   "sheetsync",
	Short: "Spreadsheet to relational store sync",
	Long: `A CLI tool for one-directional synchronization of spreadsheet data
into a relational store, with schema validation along the way.

Features:
  - Automatic table ordering from foreign key dependencies
  - Cell cleaning and type coercion (text, decimal, integer, date)
  - Last-write-wins duplicate resolution by primary key
  - Foreign key existence checks before load
  - Batched inserts with per-record fallback`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	// Credentials commonly live in a .env next to the config; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "sheetsync.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Processing overrides
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0,
		"Override insert batch size (records per INSERT)")
	rootCmd.PersistentFlags().Float64Var(&sleepSeconds, "sleep", 0,
		"Override sleep seconds between batches")

	// Verification overrides
	rootCmd.PersistentFlags().BoolVar(&skipCountCheck, "skip-count-check", false,
		"Skip the post-load row count check")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel       string
	LogFormat      string
	BatchSize      int
	SleepSeconds   float64
	SkipCountCheck bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:       logLevel,
		LogFormat:      logFormat,
		BatchSize:      batchSize,
		SleepSeconds:   sleepSeconds,
		SkipCountCheck: skipCountCheck,
	}
}
