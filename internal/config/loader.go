package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/dbsmedya/sheetsync/internal/schema"
)

// Load reads configuration from the specified YAML file.
// Credential fields support ${VAR_NAME} environment substitution so that
// passwords and spreadsheet IDs can be kept out of the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.Database.Host = expandEnvVar(cfg.Database.Host)
	cfg.Database.User = expandEnvVar(cfg.Database.User)
	cfg.Database.Password = expandEnvVar(cfg.Database.Password)
	cfg.Database.Database = expandEnvVar(cfg.Database.Database)

	cfg.Source.Dir = expandEnvVar(cfg.Source.Dir)
	cfg.Source.SpreadsheetID = expandEnvVar(cfg.Source.SpreadsheetID)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
// Unset variables are left as written so the error surfaces where it is used.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// BuildRegistry converts the configured table definitions into a schema
// registry, running the registry's structural validation.
func (c *Config) BuildRegistry() (*schema.Registry, error) {
	tables := make([]*schema.Table, 0, len(c.Tables))

	for name, tc := range c.Tables {
		required := make(map[string]bool, len(tc.Required))
		for _, col := range tc.Required {
			required[col] = true
		}

		types := make(map[string]schema.ColumnType, len(tc.Types))
		for col, tag := range tc.Types {
			types[col] = schema.ColumnType(tag)
		}

		fks := make(map[string]string, len(tc.ForeignKeys))
		for col, ref := range tc.ForeignKeys {
			fks[col] = ref
		}

		tables = append(tables, &schema.Table{
			Name:        name,
			Sheet:       tc.SheetFor(name),
			PrimaryKey:  tc.PrimaryKey,
			Columns:     append([]string(nil), tc.Columns...),
			Required:    required,
			Types:       types,
			ForeignKeys: fks,
		})
	}

	return schema.NewRegistry(tables)
}
