package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/sheetsync/internal/config"
	"github.com/dbsmedya/sheetsync/internal/database"
	"github.com/dbsmedya/sheetsync/internal/graph"
	"github.com/dbsmedya/sheetsync/internal/lock"
	"github.com/dbsmedya/sheetsync/internal/logger"
	"github.com/dbsmedya/sheetsync/internal/store"
)

var (
	purgeYes   bool
	purgeForce bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all rows from the configured tables",
	Long: `Purge clears every configured table in reverse dependency order, so
referencing tables empty out before the tables they point at.

WARNING: This permanently deletes data. Requires --yes to proceed.

Example:
  sheetsync purge --config sheetsync.yaml --yes`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeYes, "yes", false,
		"Confirm deletion of all rows in the configured tables")
	purgeCmd.Flags().BoolVar(&purgeForce, "force", false,
		"Force execution even if the run lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	if !purgeYes {
		return fmt.Errorf("purge deletes all rows in the configured tables; re-run with --yes to confirm")
	}

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

	log.Infow("Starting purge", "config", configFile, "tables", len(cfg.Tables))

	reg, err := cfg.BuildRegistry()
	if err != nil {
		return fmt.Errorf("invalid table configuration: %w", err)
	}

	order, err := graph.Build(reg).PurgeOrder()
	if err != nil {
		return fmt.Errorf("failed to order tables: %w", err)
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - stopping purge...")
		cancel()
	}()

	// Connect to the store
	dbManager := database.NewManager(cfg)
	if err := dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		return fmt.Errorf("store connection failed: %w", err)
	}

	// Same lock the sync takes, so a purge never races a running sync.
	if !purgeForce {
		runLock := lock.NewRunLock(dbManager.Store, dbManager.Dialect, lock.DefaultLockName)
		if err := runLock.Acquire(ctx); err != nil {
			if errors.Is(err, lock.ErrAlreadyRunning) {
				return fmt.Errorf("a sync is already running (use --force to override)")
			}
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer runLock.Release(context.Background())
	} else {
		log.Warnw("Skipping advisory lock acquisition (--force flag used)")
	}

	client, err := store.NewClient(dbManager.Store, dbManager.Dialect)
	if err != nil {
		return fmt.Errorf("failed to create store client: %w", err)
	}

	cleared := 0
	for _, table := range order {
		if err := ctx.Err(); err != nil {
			log.Warn("Purge cancelled")
			return nil
		}
		if err := client.ClearTable(ctx, table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		log.Infow("Cleared table", "table", table)
		cleared++
	}

	// Display results
	cmd.Printf("\n=== Purge Complete ===\n")
	cmd.Printf("Tables cleared: %d\n", cleared)
	return nil
}
