// Package sqlutil provides SQL dialect helpers for SheetSync.
package sqlutil

import (
	"regexp"
	"strconv"
	"strings"
)

// Dialect selects identifier quoting and placeholder style for the store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// Valid reports whether the dialect is supported.
func (d Dialect) Valid() bool {
	return d == DialectPostgres || d == DialectMySQL
}

// QuoteIdentifier quotes a table or column name for the dialect, escaping
// embedded quote characters by doubling them.
// Postgres: "my_table"  MySQL: `my_table`
func (d Dialect) QuoteIdentifier(name string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the 1-based bind placeholder for the dialect
// ($n for Postgres, ? for MySQL).
func (d Dialect) Placeholder(n int) string {
	if d == DialectMySQL {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// validIdentifierRegex restricts identifiers to alphanumerics and underscore.
// Narrower than what either server allows, as a defense against injection via
// configured table or column names.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name is a safe SQL identifier.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes an identifier after validating it.
// Use this when identifiers come from configuration.
func (d Dialect) QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return d.QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
