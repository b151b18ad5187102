// Package config provides configuration structures and loading for SheetSync.
package config

// Config represents the complete application configuration.
type Config struct {
	Source       SourceConfig           `yaml:"source" mapstructure:"source"`
	Database     DatabaseConfig         `yaml:"database" mapstructure:"database"`
	Tables       map[string]TableConfig `yaml:"tables" mapstructure:"tables"`
	Processing   ProcessingConfig       `yaml:"processing" mapstructure:"processing"`
	Verification VerificationConfig     `yaml:"verification" mapstructure:"verification"`
	Logging      LoggingConfig          `yaml:"logging" mapstructure:"logging"`
}

// SourceConfig selects and configures the spreadsheet source.
type SourceConfig struct {
	Kind               string `yaml:"kind" mapstructure:"kind"` // csv or sheets
	Dir                string `yaml:"dir" mapstructure:"dir"`   // csv: directory with one <sheet>.csv per worksheet
	SpreadsheetID      string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds" mapstructure:"http_timeout_seconds"`
}

// DatabaseConfig represents the relational store connection configuration.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // postgres or mysql
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	SSLMode            string `yaml:"sslmode" mapstructure:"sslmode"` // postgres: disable, prefer, require
	TLS                string `yaml:"tls" mapstructure:"tls"`         // mysql: disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// TableConfig declares one target table's schema and its source worksheet.
type TableConfig struct {
	Sheet       string            `yaml:"sheet" mapstructure:"sheet"`
	PrimaryKey  string            `yaml:"primary_key" mapstructure:"primary_key"`
	Columns     []string          `yaml:"columns" mapstructure:"columns"`
	Required    []string          `yaml:"required" mapstructure:"required"`
	Types       map[string]string `yaml:"types" mapstructure:"types"`
	ForeignKeys map[string]string `yaml:"foreign_keys" mapstructure:"foreign_keys"`
}

// ProcessingConfig represents batch processing settings.
type ProcessingConfig struct {
	BatchSize         int     `yaml:"batch_size" mapstructure:"batch_size"`
	SleepSeconds      float64 `yaml:"sleep_seconds" mapstructure:"sleep_seconds"`
	MaxReportedErrors int     `yaml:"max_reported_errors" mapstructure:"max_reported_errors"`
	WarnThreshold     int     `yaml:"warn_threshold" mapstructure:"warn_threshold"`
}

// VerificationConfig represents post-load verification settings.
type VerificationConfig struct {
	CountCheck bool `yaml:"count_check" mapstructure:"count_check"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:               "csv",
			Dir:                "./data",
			HTTPTimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Driver:             "postgres",
			Port:               5432,
			SSLMode:            "prefer",
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Processing: ProcessingConfig{
			BatchSize:         500,
			SleepSeconds:      0,
			MaxReportedErrors: 5,
			WarnThreshold:     100,
		},
		Verification: VerificationConfig{
			CountCheck: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// GetTable retrieves a table configuration by name.
func (c *Config) GetTable(name string) (*TableConfig, bool) {
	t, ok := c.Tables[name]
	if !ok {
		return nil, false
	}
	return &t, true
}

// SheetFor returns the worksheet name for a table, defaulting to the table name.
func (tc *TableConfig) SheetFor(tableName string) string {
	if tc.Sheet != "" {
		return tc.Sheet
	}
	return tableName
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, batchSize int, sleepSeconds float64, skipCountCheck bool) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if batchSize > 0 {
		c.Processing.BatchSize = batchSize
	}
	if sleepSeconds > 0 {
		c.Processing.SleepSeconds = sleepSeconds
	}
	if skipCountCheck {
		c.Verification.CountCheck = false
	}
}
