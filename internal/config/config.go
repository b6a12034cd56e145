// Package config provides configuration structures and loading for fkorder.
package config

// Supported database drivers.
const (
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
	DriverOracle    = "oracle"
)

// DefaultDynamicPartitionSchema is the schema holding detached and dynamic
// partitions whose foreign keys are owned by the base table name.
const DefaultDynamicPartitionSchema = "gitlab_partitions_dynamic"

// Config represents the complete application configuration.
type Config struct {
	Database   DatabaseConfig            `yaml:"database" mapstructure:"database"`
	Partitions PartitionsConfig          `yaml:"partitions" mapstructure:"partitions"`
	TableSets  map[string]TableSetConfig `yaml:"table_sets" mapstructure:"table_sets"`
	Truncate   TruncateConfig            `yaml:"truncate" mapstructure:"truncate"`
	Server     ServerConfig              `yaml:"server" mapstructure:"server"`
	Logging    LoggingConfig             `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents the connection to the database being introspected.
// When DSN is set it is passed to the driver verbatim and the discrete
// connection fields are ignored.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // mysql, postgres, sqlserver, oracle
	DSN                string `yaml:"dsn" mapstructure:"dsn"`
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	Schema             string `yaml:"schema" mapstructure:"schema"` // default schema for --all listing
	TLS                string `yaml:"tls" mapstructure:"tls"`       // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// PartitionsConfig controls how partition tables are resolved.
type PartitionsConfig struct {
	DynamicSchema string `yaml:"dynamic_schema" mapstructure:"dynamic_schema"`
}

// TableSetConfig is a named, reusable list of table references.
type TableSetConfig struct {
	Description string   `yaml:"description" mapstructure:"description"`
	Tables      []string `yaml:"tables" mapstructure:"tables"`
}

// TruncateConfig represents settings for the truncate command.
type TruncateConfig struct {
	LockTimeout           int      `yaml:"lock_timeout" mapstructure:"lock_timeout"` // seconds
	ProtectedTables       []string `yaml:"protected_tables" mapstructure:"protected_tables"`
	Progress              bool     `yaml:"progress" mapstructure:"progress"`
	MaxTablesPerStatement int      `yaml:"max_tables_per_statement" mapstructure:"max_tables_per_statement"` // postgres, 0 = one statement
}

// ServerConfig represents the HTTP ordering service.
type ServerConfig struct {
	Listen              string   `yaml:"listen" mapstructure:"listen"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`
	AllowedOrigins      []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultPort returns the conventional port for a driver.
func DefaultPort(driver string) int {
	switch driver {
	case DriverPostgres:
		return 5432
	case DriverSQLServer:
		return 1433
	case DriverOracle:
		return 1521
	default:
		return 3306
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:             DriverPostgres,
			TLS:                "preferred",
			MaxConnections:     5,
			MaxIdleConnections: 2,
		},
		Partitions: PartitionsConfig{
			DynamicSchema: DefaultDynamicPartitionSchema,
		},
		Truncate: TruncateConfig{
			LockTimeout: 1,
			Progress:    true,
		},
		Server: ServerConfig{
			Listen:              ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// EffectivePort returns the configured port or the driver default.
func (d *DatabaseConfig) EffectivePort() int {
	if d.Port > 0 {
		return d.Port
	}
	return DefaultPort(d.Driver)
}

// IsProtected reports whether table is listed in truncate.protected_tables.
func (t *TruncateConfig) IsProtected(table string) bool {
	for _, p := range t.ProtectedTables {
		if p == table {
			return true
		}
	}
	return false
}
