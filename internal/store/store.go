// Package store implements the relational store client used by the SheetSync
// load pipeline: full-table clears, batched inserts and key-column reads.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbsmedya/sheetsync/internal/schema"
	"github.com/dbsmedya/sheetsync/internal/sqlutil"
)

// Client wraps the store connection with the three operations the pipeline
// needs. It never inspects store error contents beyond passing them up.
type Client struct {
	db      *sql.DB
	dialect sqlutil.Dialect
}

// NewClient creates a store client for the given connection and dialect.
func NewClient(db *sql.DB, dialect sqlutil.Dialect) (*Client, error) {
	if db == nil {
		return nil, fmt.Errorf("store database is nil")
	}
	if !dialect.Valid() {
		return nil, fmt.Errorf("unknown store dialect %q", dialect)
	}
	return &Client{db: db, dialect: dialect}, nil
}

// ClearTable deletes every row of the target table. DELETE rather than
// TRUNCATE so the statement works without table-lock privileges and under
// referential constraints already satisfied by the purge order.
func (c *Client) ClearTable(ctx context.Context, table string) error {
	quoted, err := c.dialect.QuoteIdentifierSafe(table)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx, "DELETE FROM "+quoted); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", table, err)
	}
	return nil
}

// InsertBatch inserts the records with a single multi-row INSERT. The column
// list is the table's declared column order restricted to columns present in
// at least one record of the batch; records missing one of those columns bind
// NULL for it.
func (c *Client) InsertBatch(ctx context.Context, table *schema.Table, records []schema.Record) error {
	if len(records) == 0 {
		return nil
	}

	columns := batchColumns(table, records)
	if len(columns) == 0 {
		return fmt.Errorf("no schema columns present in batch for table %s", table.Name)
	}

	query, err := c.buildInsert(table.Name, columns, len(records))
	if err != nil {
		return err
	}

	args := make([]interface{}, 0, len(columns)*len(records))
	for _, record := range records {
		for _, col := range columns {
			if v, ok := record[col]; ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %d records into %s: %w", len(records), table.Name, err)
	}
	return nil
}

// batchColumns returns table columns, in schema order, that appear in at
// least one record of the batch.
func batchColumns(table *schema.Table, records []schema.Record) []string {
	present := make(map[string]bool)
	for _, record := range records {
		for col := range record {
			present[col] = true
		}
	}

	columns := make([]string, 0, len(present))
	for _, col := range table.Columns {
		if present[col] {
			columns = append(columns, col)
		}
	}
	return columns
}

func (c *Client) buildInsert(table string, columns []string, rowCount int) (string, error) {
	quotedTable, err := c.dialect.QuoteIdentifierSafe(table)
	if err != nil {
		return "", err
	}

	quotedCols := make([]string, len(columns))
	for i, col := range columns {
		quoted, err := c.dialect.QuoteIdentifierSafe(col)
		if err != nil {
			return "", err
		}
		quotedCols[i] = quoted
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quotedTable)
	b.WriteString(" (")
	b.WriteString(strings.Join(quotedCols, ", "))
	b.WriteString(") VALUES ")

	n := 1
	for row := 0; row < rowCount; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for i := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.dialect.Placeholder(n))
			n++
		}
		b.WriteString(")")
	}

	return b.String(), nil
}

// SelectColumn returns the distinct non-null values of one column as trimmed
// strings, the form foreign-key comparisons are made on.
func (c *Client) SelectColumn(ctx context.Context, table, column string) ([]string, error) {
	quotedTable, err := c.dialect.QuoteIdentifierSafe(table)
	if err != nil {
		return nil, err
	}
	quotedCol, err := c.dialect.QuoteIdentifierSafe(column)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL",
		quotedCol, quotedTable, quotedCol)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var raw interface{}
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s.%s: %w", table, column, err)
		}

		// Drivers return []byte for text columns
		var value string
		switch v := raw.(type) {
		case []byte:
			value = string(v)
		case string:
			value = v
		default:
			value = fmt.Sprint(v)
		}

		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s.%s: %w", table, column, err)
	}
	return values, nil
}

// CountRows returns the number of rows currently in the table.
func (c *Client) CountRows(ctx context.Context, table string) (int64, error) {
	quoted, err := c.dialect.QuoteIdentifierSafe(table)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}
