package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/sheetsync/internal/logger"
	"github.com/dbsmedya/sheetsync/internal/schema"
)

// tableStore is the slice of store.Client the loader depends on.
type tableStore interface {
	ClearTable(ctx context.Context, table string) error
	InsertBatch(ctx context.Context, table *schema.Table, records []schema.Record) error
}

// LoadResult reports the outcome of loading one table.
type LoadResult struct {
	Cleared      bool
	Inserted     int
	InsertErrors int
	Errors       []RowError
}

// Loader replaces a table's contents with a set of records: clear first,
// then insert in fixed-size batches. When a batch insert fails the batch is
// retried record by record so one bad record costs one row, not the batch.
type Loader struct {
	store     tableStore
	log       *logger.Logger
	batchSize int
	sleep     time.Duration
}

// NewLoader creates a loader. batchSize must be positive; sleep is the pause
// between consecutive batch inserts (zero disables it).
func NewLoader(store tableStore, log *logger.Logger, batchSize int, sleep time.Duration) (*Loader, error) {
	if store == nil {
		return nil, fmt.Errorf("store client is nil")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Loader{store: store, log: log, batchSize: batchSize, sleep: sleep}, nil
}

// Load clears the table and inserts the records. A failed clear is logged
// and loading continues; stale rows are better than no rows when the clear
// itself is the only problem. Returns an error only on context cancellation.
func (l *Loader) Load(ctx context.Context, table *schema.Table, records []schema.Record) (*LoadResult, error) {
	result := &LoadResult{}
	log := l.log.WithTable(table.Name)

	if err := l.store.ClearTable(ctx, table.Name); err != nil {
		log.Warnw("failed to clear table before load", "error", err)
	} else {
		result.Cleared = true
	}

	for start := 0; start < len(records); start += l.batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + l.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		batchNum := start/l.batchSize + 1

		if err := l.store.InsertBatch(ctx, table, batch); err != nil {
			blog := log.WithBatch(batchNum)
			blog.Warnw("batch insert failed, retrying records individually",
				"size", len(batch),
				"error", err,
			)
			l.insertIndividually(ctx, blog, table, batch, start, result)
		} else {
			result.Inserted += len(batch)
		}

		if l.sleep > 0 && end < len(records) {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(l.sleep):
			}
		}
	}

	return result, nil
}

// insertIndividually retries a failed batch one record at a time, counting
// each record as inserted or failed on its own. Failed records are logged in
// full so the offending row can be found in the source sheet.
func (l *Loader) insertIndividually(ctx context.Context, log *logger.Logger, table *schema.Table, batch []schema.Record, offset int, result *LoadResult) {
	for i, record := range batch {
		if ctx.Err() != nil {
			return
		}
		if err := l.store.InsertBatch(ctx, table, []schema.Record{record}); err != nil {
			log.Warnw("record insert failed",
				"row", offset+i+1,
				"record", record,
				"error", err,
			)
			result.InsertErrors++
			result.Errors = append(result.Errors, RowError{
				Row:     offset + i + 1,
				Column:  table.PrimaryKey,
				Message: fmt.Sprintf("insert failed for record %v: %v", record, err),
			})
			continue
		}
		result.Inserted++
	}
}
