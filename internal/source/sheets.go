package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// exportURLFormat is the CSV export endpoint for a published Google
// spreadsheet. It requires no OAuth flow, only that the spreadsheet is
// shared for reading.
const exportURLFormat = "https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s"

// SheetsExport reads worksheets from a Google spreadsheet through its CSV
// export endpoint.
type SheetsExport struct {
	spreadsheetID string
	baseURL       string // overridden in tests
	client        *http.Client
}

// NewSheetsExport creates a reader for the given spreadsheet ID.
func NewSheetsExport(spreadsheetID string, timeoutSeconds int) *SheetsExport {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &SheetsExport{
		spreadsheetID: spreadsheetID,
		client:        &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}
}

// ListRows implements Reader.
func (r *SheetsExport) ListRows(ctx context.Context, sheet string) ([]string, [][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.exportURL(sheet), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build export request for %q: %w", sheet, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch worksheet %q: %w", sheet, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadRequest:
		// The export endpoint answers 400 for an unknown sheet name.
		io.Copy(io.Discard, resp.Body)
		return nil, nil, &SheetNotFoundError{Sheet: sheet}
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, nil, fmt.Errorf("worksheet %q export returned status %d", sheet, resp.StatusCode)
	}

	return parseCSV(resp.Body, sheet)
}

func (r *SheetsExport) exportURL(sheet string) string {
	if r.baseURL != "" {
		return r.baseURL + "?sheet=" + url.QueryEscape(sheet)
	}
	return fmt.Sprintf(exportURLFormat, url.PathEscape(r.spreadsheetID), url.QueryEscape(sheet))
}

// parseCSV reads a worksheet body into a header row plus data rows.
// Rows may have varying cell counts; short rows are returned as-is.
func parseCSV(body io.Reader, sheet string) ([]string, [][]string, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse worksheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	return records[0], records[1:], nil
}
