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
	"github.com/dbsmedya/sheetsync/internal/lock"
	"github.com/dbsmedya/sheetsync/internal/logger"
	"github.com/dbsmedya/sheetsync/internal/report"
	"github.com/dbsmedya/sheetsync/internal/source"
	"github.com/dbsmedya/sheetsync/internal/store"
	"github.com/dbsmedya/sheetsync/internal/syncer"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync all configured tables from the spreadsheet source",
	Long: `Sync reads every configured worksheet, validates the rows against
the table schemas and replaces the store tables with the results.

Tables are processed in foreign key dependency order so referenced
tables are loaded before the tables pointing at them. Each table goes
through the same pipeline:

  1. Read raw rows from the source
  2. Clean cells and validate required columns
  3. Collapse duplicate primary keys (last row wins)
  4. Drop records whose foreign keys do not resolve
  5. Clear the table and insert in batches

A table that fails is skipped, not fatal; losses show up in the final
report. The exit code is 0 on a clean run, 0 with a warning while the
total number of lost rows stays under the configured threshold, and 1
beyond it.

Example:
  sheetsync sync --config sheetsync.yaml`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false,
		"Force execution even if the run lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
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

	log.Infow("Starting sync",
		"config", configFile,
		"source", cfg.Source.Kind,
		"tables", len(cfg.Tables),
	)

	// Build the schema registry from the table configuration
	reg, err := cfg.BuildRegistry()
	if err != nil {
		return fmt.Errorf("invalid table configuration: %w", err)
	}

	// Create source reader
	reader, err := source.New(&cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to create source reader: %w", err)
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the store
	dbManager := database.NewManager(cfg)
	if err := dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		return fmt.Errorf("store connection failed: %w", err)
	}

	// Acquire advisory lock to prevent concurrent sync runs
	if !syncForce {
		runLock := lock.NewRunLock(dbManager.Store, dbManager.Dialect, lock.DefaultLockName)
		if err := runLock.Acquire(ctx); err != nil {
			if errors.Is(err, lock.ErrAlreadyRunning) {
				return fmt.Errorf("another sync is already running (use --force to override)")
			}
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer runLock.Release(context.Background())
		log.Infow("Acquired advisory run lock", "lock", runLock.Name())
	} else {
		log.Warnw("Skipping advisory lock acquisition (--force flag used)")
	}

	client, err := store.NewClient(dbManager.Store, dbManager.Dialect)
	if err != nil {
		return fmt.Errorf("failed to create store client: %w", err)
	}

	// Create orchestrator
	orch, err := syncer.NewOrchestrator(cfg, reg, reader, client, log)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	// Initialize (resolve table order)
	if err := orch.Initialize(); err != nil {
		return fmt.Errorf("orchestrator initialization failed: %w", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - completing current batch...")
		cancel()
	}()

	// Execute the sync run
	stats, err := orch.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Sync cancelled by user")
			return nil
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	// Display results
	report.Render(cmd.OutOrStdout(), stats)

	lost := stats.ErrorCount()
	if lost >= cfg.Processing.WarnThreshold {
		return fmt.Errorf("sync lost %d rows, at or above the threshold of %d",
			lost, cfg.Processing.WarnThreshold)
	}
	if lost > 0 {
		log.Warnw("Sync finished with row losses under the threshold",
			"lost", lost,
			"threshold", cfg.Processing.WarnThreshold,
		)
	}
	return nil
}
