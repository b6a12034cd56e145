package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides
// (FKORDER_DATABASE_HOST overrides database.host).
const EnvPrefix = "FKORDER"

// envBoundKeys are the keys that may be set from the environment even when
// the config file does not mention them.
var envBoundKeys = []string{
	"database.driver",
	"database.dsn",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.database",
	"database.schema",
	"partitions.dynamic_schema",
	"server.listen",
	"logging.level",
	"logging.format",
	"logging.output",
}

// Load reads configuration from the specified file path.
// A .env file next to the config file is loaded first (if present) so that
// ${VAR} references and FKORDER_* overrides can be kept out of the YAML.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, err
	}

	v := newViper()
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

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	cfg.Database.Driver = NormalizeDriver(cfg.Database.Driver)
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envBoundKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// loadDotEnv loads a dotenv file without overriding variables that are
// already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// NormalizeDriver maps driver aliases onto the canonical driver names.
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres
	case "mysql", "mariadb":
		return DriverMySQL
	case "sqlserver", "mssql":
		return DriverSQLServer
	case "oracle", "ora":
		return DriverOracle
	default:
		return driver
	}
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	cfg.Database.DSN = expandEnvVar(cfg.Database.DSN)
	cfg.Database.Host = expandEnvVar(cfg.Database.Host)
	cfg.Database.User = expandEnvVar(cfg.Database.User)
	cfg.Database.Password = expandEnvVar(cfg.Database.Password)
	cfg.Database.Database = expandEnvVar(cfg.Database.Database)
	cfg.Database.Schema = expandEnvVar(cfg.Database.Schema)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
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
		// Return original if env var not found
		return match
	})
}

// GetTableSet retrieves a specific table set by name.
func (c *Config) GetTableSet(name string) (*TableSetConfig, error) {
	set, exists := c.TableSets[name]
	if !exists {
		return nil, fmt.Errorf("table set %q not found in configuration", name)
	}
	return &set, nil
}

// ListTableSets returns all table set names, sorted.
func (c *Config) ListTableSets() []string {
	names := make([]string, 0, len(c.TableSets))
	for name := range c.TableSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveTables combines the tables of a named set (if any) with explicitly
// listed tables. Order is preserved and duplicates are dropped.
func (c *Config) ResolveTables(setName string, explicit []string) ([]string, error) {
	var tables []string
	if setName != "" {
		set, err := c.GetTableSet(setName)
		if err != nil {
			return nil, err
		}
		tables = append(tables, set.Tables...)
	}
	tables = append(tables, explicit...)

	seen := make(map[string]bool, len(tables))
	result := make([]string, 0, len(tables))
	for _, t := range tables {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result, nil
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat, driver, dsn string) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if driver != "" {
		c.Database.Driver = NormalizeDriver(driver)
	}
	if dsn != "" {
		c.Database.DSN = dsn
	}
}
