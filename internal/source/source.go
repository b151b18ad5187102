// Package source provides spreadsheet readers for SheetSync.
//
// A Reader hands back the raw header row and all raw data rows of one
// worksheet. Cells are returned untouched: cleaning, blank-row filtering and
// header normalization are the pipeline's job, not the reader's.
package source

import (
	"context"
	"fmt"

	"github.com/dbsmedya/sheetsync/internal/config"
)

// Reader lists the raw rows of a named worksheet.
type Reader interface {
	// ListRows returns the header row and every data row below it, in
	// source order, including rows whose cells are all empty.
	ListRows(ctx context.Context, sheet string) (headers []string, rows [][]string, err error)
}

// SheetNotFoundError is returned when a worksheet does not exist in the source.
type SheetNotFoundError struct {
	Sheet string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("worksheet %q not found in source", e.Sheet)
}

// New builds a Reader from the source configuration.
func New(cfg *config.SourceConfig) (Reader, error) {
	switch cfg.Kind {
	case "csv":
		return NewCSVDir(cfg.Dir), nil
	case "sheets":
		return NewSheetsExport(cfg.SpreadsheetID, cfg.HTTPTimeoutSeconds), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
