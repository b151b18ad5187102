package config

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/sheetsync/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// Schema-level consistency (types, FK targets) is checked by BuildRegistry;
// this covers everything before that point.
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateSource()...)
	errs = append(errs, c.validateDatabase()...)
	errs = append(errs, c.validateTables()...)
	errs = append(errs, c.validateProcessing()...)
	errs = append(errs, c.validateLogging()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateSource() ValidationErrors {
	var errs ValidationErrors

	switch c.Source.Kind {
	case "csv":
		if c.Source.Dir == "" {
			errs = append(errs, ValidationError{
				Field:   "source.dir",
				Message: "directory is required for the csv source",
			})
		}
	case "sheets":
		if c.Source.SpreadsheetID == "" {
			errs = append(errs, ValidationError{
				Field:   "source.spreadsheet_id",
				Message: "spreadsheet id is required for the sheets source",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "source.kind",
			Message: fmt.Sprintf("unknown source kind %q (must be csv or sheets)", c.Source.Kind),
		})
	}

	if c.Source.HTTPTimeoutSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "source.http_timeout_seconds",
			Message: "must not be negative",
		})
	}

	return errs
}

func (c *Config) validateDatabase() ValidationErrors {
	var errs ValidationErrors

	if !sqlutil.Dialect(c.Database.Driver).Valid() {
		errs = append(errs, ValidationError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unknown driver %q (must be postgres or mysql)", c.Database.Driver),
		})
	}
	if c.Database.Host == "" {
		errs = append(errs, ValidationError{Field: "database.host", Message: "host is required"})
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "database.port",
			Message: fmt.Sprintf("invalid port %d", c.Database.Port),
		})
	}
	if c.Database.User == "" {
		errs = append(errs, ValidationError{Field: "database.user", Message: "user is required"})
	}
	if c.Database.Database == "" {
		errs = append(errs, ValidationError{Field: "database.database", Message: "database name is required"})
	}

	return errs
}

func (c *Config) validateTables() ValidationErrors {
	var errs ValidationErrors

	if len(c.Tables) == 0 {
		errs = append(errs, ValidationError{
			Field:   "tables",
			Message: "at least one table must be defined",
		})
		return errs
	}

	for name, tc := range c.Tables {
		field := "tables." + name

		if !sqlutil.IsValidIdentifier(name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "table name must contain only alphanumeric characters and underscores",
			})
		}
		if len(tc.Columns) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".columns",
				Message: "at least one column must be defined",
			})
		}
		for _, col := range tc.Columns {
			if !sqlutil.IsValidIdentifier(col) {
				errs = append(errs, ValidationError{
					Field:   field + ".columns",
					Message: fmt.Sprintf("invalid column name %q", col),
				})
			}
		}
	}

	return errs
}

func (c *Config) validateProcessing() ValidationErrors {
	var errs ValidationErrors

	if c.Processing.BatchSize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "processing.batch_size",
			Message: "must be greater than zero",
		})
	}
	if c.Processing.SleepSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "processing.sleep_seconds",
			Message: "must not be negative",
		})
	}
	if c.Processing.MaxReportedErrors < 0 {
		errs = append(errs, ValidationError{
			Field:   "processing.max_reported_errors",
			Message: "must not be negative",
		})
	}

	return errs
}

func (c *Config) validateLogging() ValidationErrors {
	var errs ValidationErrors

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}

	switch c.Logging.Format {
	case "", "json", "text":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
		})
	}

	return errs
}
