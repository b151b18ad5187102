// Package report renders sync run statistics as an aligned console table.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/sheetsync/internal/syncer"
)

var headings = []string{"TABLE", "ROWS", "EMPTY", "VALID", "INVALID", "DUPS", "FK ERR", "INSERTED", "INS ERR", "TIME"}

// Render writes the per-table stats table, sample errors and the run
// summary to w. Colors degrade to plain text on non-TTY output.
func Render(w io.Writer, stats *syncer.RunStats) {
	rows := make([][]string, 0, len(stats.Tables)+1)
	for i := range stats.Tables {
		rows = append(rows, tableRow(&stats.Tables[i]))
	}
	totals := stats.Totals()
	totalRow := []string{
		"TOTAL",
		strconv.Itoa(totals.RowsRead),
		strconv.Itoa(totals.EmptyRows),
		strconv.Itoa(totals.ValidRows),
		strconv.Itoa(totals.InvalidRows),
		strconv.Itoa(totals.Duplicates),
		strconv.Itoa(totals.FKErrors),
		strconv.Itoa(totals.Inserted),
		strconv.Itoa(totals.InsertErrors),
		formatDuration(stats.Duration),
	}
	rows = append(rows, totalRow)

	widths := columnWidths(rows)

	fmt.Fprintln(w)
	fmt.Fprintln(w, color.Bold.Sprint(renderRow(headings, widths)))
	fmt.Fprintln(w, separator(widths))
	for i := range stats.Tables {
		line := renderRow(rows[i], widths)
		if stats.Tables[i].Skipped {
			fmt.Fprintln(w, color.Yellow.Sprint(line))
		} else if stats.Tables[i].ErrorCount() > 0 {
			fmt.Fprintln(w, color.Red.Sprint(line))
		} else {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, separator(widths))
	fmt.Fprintln(w, color.Bold.Sprint(renderRow(totalRow, widths)))

	renderProblems(w, stats)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run %s finished in %s: %d records inserted, %d rows lost.\n",
		stats.RunID, formatDuration(stats.Duration), totals.Inserted, stats.ErrorCount())
}

func tableRow(ts *syncer.TableStats) []string {
	return []string{
		ts.Table,
		strconv.Itoa(ts.RowsRead),
		strconv.Itoa(ts.EmptyRows),
		strconv.Itoa(ts.ValidRows),
		strconv.Itoa(ts.InvalidRows),
		strconv.Itoa(ts.Duplicates),
		strconv.Itoa(ts.FKErrors),
		strconv.Itoa(ts.Inserted),
		strconv.Itoa(ts.InsertErrors),
		formatDuration(ts.Duration),
	}
}

// renderProblems lists read failures, count mismatches and the retained
// sample of row errors, table by table.
func renderProblems(w io.Writer, stats *syncer.RunStats) {
	for i := range stats.Tables {
		ts := &stats.Tables[i]
		if ts.ReadError == "" && !ts.CountMismatch && len(ts.SampleErrors) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, color.Bold.Sprintf("%s:\n", ts.Table))
		if ts.ReadError != "" {
			fmt.Fprint(w, color.Red.Sprintf("  read failed: %s\n", ts.ReadError))
		}
		if ts.CountMismatch {
			fmt.Fprintln(w, color.Yellow.Sprint("  row count does not match inserted records"))
		}
		for _, e := range ts.SampleErrors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
		if hidden := ts.ErrorCount() - len(ts.SampleErrors); hidden > 0 && len(ts.SampleErrors) > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", hidden)
		}
	}
}

// columnWidths sizes each column to its widest cell or heading. Widths use
// display width, not byte length, so multibyte table names stay aligned.
func columnWidths(rows [][]string) []int {
	widths := make([]int, len(headings))
	for i, h := range headings {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func renderRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i == 0 {
			parts[i] = runewidth.FillRight(cell, widths[i])
		} else {
			parts[i] = runewidth.FillLeft(cell, widths[i])
		}
	}
	return strings.Join(parts, "  ")
}

func separator(widths []int) string {
	total := 0
	for _, w := range widths {
		total += w
	}
	total += 2 * (len(widths) - 1)
	return strings.Repeat("-", total)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
