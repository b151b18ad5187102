package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/sheetsync/internal/config"
	"github.com/dbsmedya/sheetsync/internal/graph"
	"github.com/dbsmedya/sheetsync/internal/logger"
	"github.com/dbsmedya/sheetsync/internal/schema"
	"github.com/dbsmedya/sheetsync/internal/source"
)

// storeAPI is everything the pipeline needs from store.Client.
type storeAPI interface {
	keySource
	tableStore
	rowCounter
}

// Orchestrator runs the full sync: tables in dependency order, each one
// read, validated, deduplicated, foreign-key checked, loaded and verified.
// One table failing never aborts the run; losses surface in the stats.
type Orchestrator struct {
	cfg    *config.Config
	reg    *schema.Registry
	reader source.Reader
	store  storeAPI
	log    *logger.Logger

	order []string
}

// NewOrchestrator creates an orchestrator with the given dependencies.
func NewOrchestrator(cfg *config.Config, reg *schema.Registry, reader source.Reader, store storeAPI, log *logger.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if reg == nil {
		return nil, fmt.Errorf("schema registry is nil")
	}
	if reader == nil {
		return nil, fmt.Errorf("source reader is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store client is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Orchestrator{
		cfg:    cfg,
		reg:    reg,
		reader: reader,
		store:  store,
		log:    log,
	}, nil
}

// Initialize resolves the table processing order from the foreign-key
// graph. Must be called before Run.
func (o *Orchestrator) Initialize() error {
	order, err := graph.Build(o.reg).SyncOrder()
	if err != nil {
		var cycleErr *graph.CycleError
		if errors.As(err, &cycleErr) {
			return fmt.Errorf("cannot order tables: %w", err)
		}
		return err
	}
	o.order = order
	o.log.Infow("resolved table order", "order", order)
	return nil
}

// Order returns the resolved processing order.
func (o *Orchestrator) Order() []string {
	return o.order
}

// Run executes one sync pass over every table. It returns an error only
// when the run could not proceed at all (uninitialized, cancelled context);
// per-table failures are recorded in the returned stats.
func (o *Orchestrator) Run(ctx context.Context) (*RunStats, error) {
	if o.order == nil {
		return nil, fmt.Errorf("orchestrator not initialized")
	}

	stats := &RunStats{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := o.log.WithRun(stats.RunID)
	log.Infow("sync run starting", "tables", len(o.order))

	keys, err := NewKeyCache(o.store, o.reg, log)
	if err != nil {
		return nil, err
	}
	loader, err := NewLoader(o.store, log,
		o.cfg.Processing.BatchSize,
		time.Duration(o.cfg.Processing.SleepSeconds*float64(time.Second)))
	if err != nil {
		return nil, err
	}

	for _, name := range o.order {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		ts := o.syncTable(ctx, log, keys, loader, name)
		stats.Tables = append(stats.Tables, ts)
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)

	totals := stats.Totals()
	log.Infow("sync run finished",
		"duration", stats.Duration.Round(time.Millisecond),
		"inserted", totals.Inserted,
		"errors", stats.ErrorCount(),
	)
	return stats, nil
}

// syncTable runs the pipeline for one table. Every stage's losses are
// counted; the load is skipped when nothing survives validation.
func (o *Orchestrator) syncTable(ctx context.Context, log *logger.Logger, keys *KeyCache, loader *Loader, name string) TableStats {
	start := time.Now()

	table := o.reg.Get(name)
	if table == nil {
		// Registry and order come from the same config; not reachable
		// unless Initialize was bypassed.
		return TableStats{Table: name, Skipped: true, ReadError: "table not defined"}
	}

	ts := TableStats{Table: name, Sheet: table.Sheet}
	tlog := log.WithTable(name).WithSheet(table.Sheet)
	tlog.Infow("syncing table")

	headers, rows, err := o.reader.ListRows(ctx, table.Sheet)
	if err != nil {
		tlog.Errorw("failed to read sheet", "error", err)
		ts.ReadError = err.Error()
		ts.Skipped = true
		ts.Duration = time.Since(start)
		return ts
	}
	ts.RowsRead = len(rows)

	validator, err := NewValidator(table, log)
	if err != nil {
		ts.ReadError = err.Error()
		ts.Skipped = true
		ts.Duration = time.Since(start)
		return ts
	}
	vr := validator.ValidateSheet(headers, rows)
	ts.EmptyRows = vr.EmptyRows
	ts.ValidRows = len(vr.Records)
	ts.InvalidRows = vr.InvalidRows
	o.sample(&ts, vr.Errors)

	records, duplicates := Dedupe(vr.Records, table.PrimaryKey)
	ts.Duplicates = duplicates

	records, fkErrors, err := ValidateForeignKeys(ctx, keys, table, records)
	if err != nil {
		tlog.Errorw("foreign key validation failed", "error", err)
		ts.Skipped = true
		ts.Duration = time.Since(start)
		return ts
	}
	ts.FKErrors = len(fkErrors)
	o.sample(&ts, fkErrors)

	if len(records) == 0 {
		tlog.Warnw("no records survived validation, table left untouched",
			"rows_read", ts.RowsRead,
			"invalid", ts.InvalidRows,
			"fk_errors", ts.FKErrors,
		)
		ts.Skipped = true
		ts.Duration = time.Since(start)
		return ts
	}

	lr, err := loader.Load(ctx, table, records)
	if lr != nil {
		ts.Inserted = lr.Inserted
		ts.InsertErrors = lr.InsertErrors
		o.sample(&ts, lr.Errors)
	}
	if err != nil {
		tlog.Errorw("load interrupted", "error", err)
		ts.Duration = time.Since(start)
		return ts
	}

	if o.cfg.Verification.CountCheck {
		ts.CountMismatch = VerifyCount(ctx, o.store, log, name, ts.Inserted)
	}

	ts.Duration = time.Since(start)
	tlog.Infow("table synced",
		"rows_read", ts.RowsRead,
		"inserted", ts.Inserted,
		"errors", ts.ErrorCount(),
		"duration", ts.Duration.Round(time.Millisecond),
	)
	return ts
}

// sample appends row errors up to the configured reporting cap.
func (o *Orchestrator) sample(ts *TableStats, errs []RowError) {
	max := o.cfg.Processing.MaxReportedErrors
	for _, e := range errs {
		if len(ts.SampleErrors) >= max {
			return
		}
		ts.SampleErrors = append(ts.SampleErrors, e)
	}
}
