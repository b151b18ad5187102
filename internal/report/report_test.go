package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/sheetsync/internal/syncer"
)

func sampleStats() *syncer.RunStats {
	return &syncer.RunStats{
		RunID:    "9b2a1f40-17a1-4c9f-8e14-2f40f1c1f001",
		Duration: 3200 * time.Millisecond,
		Tables: []syncer.TableStats{
			{
				Table:    "clientes",
				Sheet:    "Clientes",
				RowsRead: 150, ValidRows: 148, InvalidRows: 2,
				Inserted: 148,
				Duration: 900 * time.Millisecond,
				SampleErrors: []syncer.RowError{
					{Row: 12, Column: "id_cliente", Message: "required column empty or invalid, raw value \"\""},
				},
			},
			{
				Table:    "vendas",
				Sheet:    "Vendas",
				RowsRead: 500, ValidRows: 480, InvalidRows: 20, FKErrors: 3,
				Inserted: 477,
				Duration: 2 * time.Second,
			},
		},
	}
}

func TestRenderIncludesTablesAndTotals(t *testing.T) {
	var buf strings.Builder
	Render(&buf, sampleStats())
	out := buf.String()

	assert.Contains(t, out, "clientes")
	assert.Contains(t, out, "vendas")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "650")    // total rows read
	assert.Contains(t, out, "625")    // total inserted
	assert.Contains(t, out, "Run 9b") // summary line
	assert.Contains(t, out, "26 rows lost")
}

func TestRenderShowsSampleErrors(t *testing.T) {
	var buf strings.Builder
	Render(&buf, sampleStats())
	out := buf.String()

	assert.Contains(t, out, "row 12")
	assert.Contains(t, out, "id_cliente")
	assert.Contains(t, out, "and 1 more")
}

func TestRenderReadFailure(t *testing.T) {
	stats := &syncer.RunStats{
		RunID: "run-1",
		Tables: []syncer.TableStats{
			{Table: "produtos", Skipped: true, ReadError: "sheet \"Produtos\" not found"},
		},
	}

	var buf strings.Builder
	Render(&buf, stats)
	out := buf.String()

	assert.Contains(t, out, "read failed")
	assert.Contains(t, out, "Produtos")
}

func TestRenderEmptyRun(t *testing.T) {
	var buf strings.Builder
	Render(&buf, &syncer.RunStats{RunID: "run-2"})
	out := buf.String()

	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "0 records inserted")
}
