package config

import (
	"fmt"
	"strings"
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
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateDatabase()...)
	errors = append(errors, c.validatePartitions()...)

	for _, name := range c.ListTableSets() {
		set := c.TableSets[name]
		errors = append(errors, c.validateTableSet(name, &set)...)
	}

	errors = append(errors, c.validateTruncate()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors
	db := &c.Database

	validDrivers := map[string]bool{DriverMySQL: true, DriverPostgres: true, DriverSQLServer: true, DriverOracle: true}
	if !validDrivers[NormalizeDriver(db.Driver)] {
		errors = append(errors, ValidationError{
			Field:   "database.driver",
			Message: "driver must be 'mysql', 'postgres', 'sqlserver', or 'oracle'",
		})
	}

	// A DSN carries everything the driver needs.
	if db.DSN == "" {
		if db.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "database.host",
				Message: "host is required when dsn is not set",
			})
		}

		if db.User == "" {
			errors = append(errors, ValidationError{
				Field:   "database.user",
				Message: "user is required when dsn is not set",
			})
		}

		if db.Database == "" {
			errors = append(errors, ValidationError{
				Field:   "database.database",
				Message: "database name is required when dsn is not set",
			})
		}
	}

	if db.Port < 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "database.port",
			Message: "port must be between 1 and 65535",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "database.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validatePartitions() ValidationErrors {
	var errors ValidationErrors

	if strings.ContainsAny(c.Partitions.DynamicSchema, ". ") {
		errors = append(errors, ValidationError{
			Field:   "partitions.dynamic_schema",
			Message: "dynamic_schema must be a bare schema name",
		})
	}

	return errors
}

func (c *Config) validateTableSet(name string, set *TableSetConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("table_sets.%s", name)

	if len(set.Tables) == 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tables",
			Message: "at least one table is required",
		})
	}

	seen := make(map[string]bool, len(set.Tables))
	for i, table := range set.Tables {
		field := fmt.Sprintf("%s.tables[%d]", prefix, i)
		if strings.TrimSpace(table) == "" {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "table name is required",
			})
			continue
		}
		if seen[table] {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("table %q is listed more than once", table),
			})
		}
		seen[table] = true
	}

	return errors
}

func (c *Config) validateTruncate() ValidationErrors {
	var errors ValidationErrors

	if c.Truncate.LockTimeout < -1 {
		errors = append(errors, ValidationError{
			Field:   "truncate.lock_timeout",
			Message: "lock_timeout must be -1 (wait forever) or a non-negative number of seconds",
		})
	}

	if c.Truncate.MaxTablesPerStatement < 0 {
		errors = append(errors, ValidationError{
			Field:   "truncate.max_tables_per_statement",
			Message: "max_tables_per_statement cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateServer() ValidationErrors {
	var errors ValidationErrors

	if c.Server.Listen == "" {
		errors = append(errors, ValidationError{
			Field:   "server.listen",
			Message: "listen address is required",
		})
	}

	if c.Server.ReadTimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read_timeout_seconds cannot be negative",
		})
	}

	if c.Server.WriteTimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write_timeout_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
