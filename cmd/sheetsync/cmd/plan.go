package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/sheetsync/internal/config"
	"github.com/dbsmedya/sheetsync/internal/graph"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the table processing order",
	Long: `Plan analyzes the configured foreign keys and displays the order in
which tables will be synced and purged, without touching the store.

The plan shows:
  - Sync order (referenced tables first)
  - Purge order (referencing tables first)
  - Detected foreign key relationships

Example:
  sheetsync plan --config sheetsync.yaml`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	reg, err := cfg.BuildRegistry()
	if err != nil {
		return fmt.Errorf("invalid table configuration: %w", err)
	}

	g := graph.Build(reg)

	syncOrder, err := g.SyncOrder()
	if err != nil {
		return fmt.Errorf("failed to generate sync order: %w", err)
	}
	purgeOrder, err := g.PurgeOrder()
	if err != nil {
		return fmt.Errorf("failed to generate purge order: %w", err)
	}

	printHeader("Sync Plan: %s", configFile)

	fmt.Fprintln(outputWriter)
	printSection("Overview")
	fmt.Fprintf(outputWriter, "  Source:       %s\n", cfg.Source.Kind)
	fmt.Fprintf(outputWriter, "  Store:        %s\n", cfg.Database.Driver)
	fmt.Fprintf(outputWriter, "  Total Tables: %d\n", g.NodeCount())

	fmt.Fprintln(outputWriter)
	printSection("Sync Order (referenced tables first)")
	for i, table := range syncOrder {
		printOrderItem(i+1, table, reg.Get(table).Sheet)
	}

	fmt.Fprintln(outputWriter)
	printSection("Purge Order (referencing tables first)")
	for i, table := range purgeOrder {
		printOrderItem(i+1, table, reg.Get(table).Sheet)
	}

	fmt.Fprintln(outputWriter)
	printSection("Detected Relationships")
	edges := g.Edges()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, edge := range edges {
		fmt.Fprintf(outputWriter, "  • %s → %s (FK: %s)\n",
			edge.To, edge.From, edge.Column)
	}
	if len(edges) == 0 {
		fmt.Fprintln(outputWriter, "  (none)")
	}

	fmt.Fprintln(outputWriter)
	printSection("Configuration")
	fmt.Fprintf(outputWriter, "  Batch Size:            %d\n", cfg.Processing.BatchSize)
	fmt.Fprintf(outputWriter, "  Sleep Between Batches: %.1fs\n", cfg.Processing.SleepSeconds)
	fmt.Fprintf(outputWriter, "  Count Check:           %v\n", cfg.Verification.CountCheck)

	return nil
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := len(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}

// printOrderItem prints a table in the sync/purge order list
func printOrderItem(num int, table, sheet string) {
	fmt.Fprintf(outputWriter, "  [%d] %s (sheet: %s)\n", num, table, sheet)
}
