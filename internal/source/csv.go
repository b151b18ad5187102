package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// CSVDir reads worksheets exported as CSV files, one <sheet>.csv per
// worksheet inside a directory.
type CSVDir struct {
	dir string
}

// NewCSVDir creates a CSVDir reader rooted at the given directory.
func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{dir: dir}
}

// ListRows implements Reader.
func (r *CSVDir) ListRows(ctx context.Context, sheet string) ([]string, [][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	path := filepath.Join(r.dir, sheet+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &SheetNotFoundError{Sheet: sheet}
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return parseCSV(f, sheet)
}
