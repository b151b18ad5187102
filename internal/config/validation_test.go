package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Database.Host = "localhost"
	cfg.Database.User = "sync"
	cfg.Database.Database = "ecommerce"
	cfg.Tables = map[string]TableConfig{
		"clientes": {
			PrimaryKey: "id_cliente",
			Columns:    []string{"id_cliente", "nome_cliente"},
			Required:   []string{"id_cliente"},
		},
	}
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"Unknown source kind", func(c *Config) { c.Source.Kind = "excel" }, "source.kind"},
		{"CSV without dir", func(c *Config) { c.Source.Dir = "" }, "source.dir"},
		{"Sheets without id", func(c *Config) { c.Source.Kind = "sheets" }, "source.spreadsheet_id"},
		{"Unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "database.driver"},
		{"Missing host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"Bad port", func(c *Config) { c.Database.Port = 99999 }, "database.port"},
		{"Missing user", func(c *Config) { c.Database.User = "" }, "database.user"},
		{"Missing database", func(c *Config) { c.Database.Database = "" }, "database.database"},
		{"No tables", func(c *Config) { c.Tables = nil }, "tables"},
		{"Injection in table name", func(c *Config) {
			c.Tables["x; drop table y"] = TableConfig{Columns: []string{"id"}}
		}, "tables.x; drop table y"},
		{"Injection in column name", func(c *Config) {
			c.Tables["clientes"] = TableConfig{Columns: []string{`id"; --`}}
		}, "tables.clientes.columns"},
		{"Table without columns", func(c *Config) {
			c.Tables["clientes"] = TableConfig{}
		}, "tables.clientes.columns"},
		{"Zero batch size", func(c *Config) { c.Processing.BatchSize = 0 }, "processing.batch_size"},
		{"Negative sleep", func(c *Config) { c.Processing.SleepSeconds = -1 }, "processing.sleep_seconds"},
		{"Unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"Unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	cfg.Database.User = ""
	cfg.Processing.BatchSize = 0

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.GreaterOrEqual(t, len(verrs), 3)
	assert.Equal(t, 3, strings.Count(err.Error(), "\n  - "))
}
