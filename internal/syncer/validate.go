package syncer

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/sheetsync/internal/clean"
	"github.com/dbsmedya/sheetsync/internal/logger"
	"github.com/dbsmedya/sheetsync/internal/schema"
)

// RowError describes one row-level validation or rejection reason.
type RowError struct {
	Row     int // 1-based source position (header row is 1)
	Column  string
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: column %q: %s", e.Row, e.Column, e.Message)
}

// ValidationResult is the outcome of validating one sheet against its schema.
// InvalidRows counts rows with at least one error; Errors holds every problem
// found, so a row missing two required columns contributes one invalid row and
// two errors.
type ValidationResult struct {
	Records     []schema.Record
	Errors      []RowError
	InvalidRows int
	EmptyRows   int
}

// Validator applies a table schema to raw sheet rows, producing cleaned
// records and per-row validation errors.
type Validator struct {
	table *schema.Table
	log   *logger.Logger
}

// NewValidator creates a validator for one table.
func NewValidator(table *schema.Table, log *logger.Logger) (*Validator, error) {
	if table == nil {
		return nil, fmt.Errorf("table schema is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Validator{table: table, log: log.WithTable(table.Name)}, nil
}

// ValidateSheet validates every raw row against the schema. Headers are
// normalized once up front and matched to schema columns case- and
// underscore-insensitively, so "ID Cliente" satisfies "id_cliente".
//
// Rows with no content at all are counted, not reported as errors. A row is
// valid iff every required column cleaned to a non-null value; all of a row's
// problems are collected in one pass rather than failing on the first.
func (v *Validator) ValidateSheet(headers []string, rows [][]string) *ValidationResult {
	result := &ValidationResult{}

	// Header match-key -> cell index, first occurrence wins.
	headerIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		key := clean.MatchKey(h)
		if key == "" {
			continue
		}
		if _, seen := headerIndex[key]; !seen {
			headerIndex[key] = i
		}
	}

	for i, row := range rows {
		position := i + 2 // 1-based, row 1 is the header

		if isEmptyRow(row) {
			result.EmptyRows++
			continue
		}

		record, errs := v.validateRow(row, headerIndex, position)
		if len(errs) > 0 {
			result.InvalidRows++
			result.Errors = append(result.Errors, errs...)
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result
}

// validateRow cleans one raw row column by column. Null cleaned values are
// omitted from the record entirely; a null in a required column makes the
// whole row invalid.
func (v *Validator) validateRow(row []string, headerIndex map[string]int, position int) (schema.Record, []RowError) {
	record := make(schema.Record)
	var errs []RowError

	for _, column := range v.table.Columns {
		raw := ""
		if idx, ok := headerIndex[clean.MatchKey(column)]; ok && idx < len(row) {
			raw = row[idx]
		}

		columnType := v.table.Type(column)
		value, ok := columnType.Clean(raw)

		if !ok {
			if v.table.IsRequired(column) {
				errs = append(errs, RowError{
					Row:     position,
					Column:  column,
					Message: fmt.Sprintf("required column empty or invalid, raw value %q", raw),
				})
			}
			continue
		}

		if columnType == schema.TypeDecimal {
			if f, isFloat := value.(float64); isFloat && !clean.DecimalInRange(f) {
				v.log.Warnw("decimal value outside expected range",
					"row", position,
					"column", column,
					"value", f,
				)
			}
		}

		record[column] = value
	}

	return record, errs
}

// isEmptyRow reports whether every cell of the row is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
