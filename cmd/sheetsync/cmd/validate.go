package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/sheetsync/internal/config"
	"github.com/dbsmedya/sheetsync/internal/database"
	"github.com/dbsmedya/sheetsync/internal/graph"
	"github.com/dbsmedya/sheetsync/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and store connectivity",
	Long: `Validate checks the configuration file and verifies the store is
reachable before a real sync.

Checks performed:
  - Configuration syntax and required fields
  - Table and column identifier safety
  - Foreign key targets exist and form no cycle
  - Store connectivity

Example:
  sheetsync validate --config sheetsync.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.BatchSize, overrides.SleepSeconds, overrides.SkipCountCheck)

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting validation checks...")

	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n", configFile)
	cmd.Printf("Tables found: %d\n\n", len(cfg.Tables))

	hasErrors := false

	// Structural validation
	if err := cfg.Validate(); err != nil {
		cmd.Printf("❌ Configuration invalid:\n%v\n\n", err)
		hasErrors = true
	} else {
		cmd.Printf("✅ Configuration fields valid\n")
	}

	// Schema registry and dependency graph
	reg, err := cfg.BuildRegistry()
	if err != nil {
		cmd.Printf("❌ Table schemas invalid: %v\n\n", err)
		hasErrors = true
	} else {
		g := graph.Build(reg)
		if g.HasCycle() {
			cmd.Printf("❌ Foreign key cycle detected\n\n")
			hasErrors = true
		} else {
			order, err := g.SyncOrder()
			if err != nil {
				cmd.Printf("❌ Failed to order tables: %v\n\n", err)
				hasErrors = true
			} else {
				cmd.Printf("✅ Table order resolved: %v\n", order)
			}
		}
	}

	// Store connectivity
	ctx := context.Background()
	dbManager := database.NewManager(cfg)
	if err := dbManager.Connect(ctx); err != nil {
		cmd.Printf("❌ Store connection failed: %v\n\n", err)
		hasErrors = true
	} else {
		defer dbManager.Close()
		if err := dbManager.Ping(ctx); err != nil {
			cmd.Printf("❌ Store ping failed: %v\n\n", err)
			hasErrors = true
		} else {
			cmd.Printf("✅ Store reachable (%s)\n", cfg.Database.Driver)
		}
	}

	cmd.Println()
	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	cmd.Println("=== Validation Complete ===")
	cmd.Println("✅ Configuration validated successfully")
	return nil
}
