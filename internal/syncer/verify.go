package syncer

import (
	"context"

	"github.com/dbsmedya/sheetsync/internal/logger"
)

// rowCounter is the slice of store.Client the verifier depends on.
type rowCounter interface {
	CountRows(ctx context.Context, table string) (int64, error)
}

// VerifyCount compares the table's row count against the number of records
// the run inserted. A mismatch is logged and reported, never fatal: the sync
// already happened, this is a post-hoc sanity check.
func VerifyCount(ctx context.Context, counter rowCounter, log *logger.Logger, table string, inserted int) (mismatch bool) {
	count, err := counter.CountRows(ctx, table)
	if err != nil {
		log.WithTable(table).Warnw("row count check failed", "error", err)
		return false
	}
	if count != int64(inserted) {
		log.WithTable(table).Warnw("row count does not match inserted records",
			"counted", count,
			"inserted", inserted,
		)
		return true
	}
	return false
}
