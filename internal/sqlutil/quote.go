// Package sqlutil provides identifier quoting for the supported SQL dialects.
package sqlutil

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dbsmedya/fkorder/internal/config"
	"github.com/dbsmedya/fkorder/internal/schema"
)

// QuoteIdentifier quotes a MySQL identifier (table name, column name) with backticks.
// It escapes any existing backticks by doubling them.
// Example: "my_table" -> "`my_table`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteIdentifierFor quotes a single identifier for driver.
//
//	mysql:     `name`
//	postgres:  "name"
//	sqlserver: [name]
//	oracle:    "name"
func QuoteIdentifierFor(driver, name string) (string, error) {
	switch config.NormalizeDriver(driver) {
	case config.DriverMySQL:
		return QuoteIdentifier(name), nil
	case config.DriverPostgres:
		return pgx.Identifier{name}.Sanitize(), nil
	case config.DriverSQLServer:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]", nil
	case config.DriverOracle:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// QuoteTable quotes a possibly schema-qualified table reference for driver,
// quoting the schema and the identifier separately.
func QuoteTable(driver, table string) (string, error) {
	name := schema.ParseTableName(table)
	if name.Identifier == "" {
		return "", &InvalidIdentifierError{Name: table}
	}

	ident, err := QuoteIdentifierFor(driver, name.Identifier)
	if err != nil {
		return "", err
	}
	if name.Schema == "" {
		return ident, nil
	}

	var parts []string
	for _, part := range strings.Split(name.Schema, ".") {
		quoted, err := QuoteIdentifierFor(driver, part)
		if err != nil {
			return "", err
		}
		parts = append(parts, quoted)
	}
	return strings.Join(append(parts, ident), "."), nil
}

// QuoteTableSafe quotes a table reference after validating every part of it.
// Use this when the statement is executed, not only displayed.
func QuoteTableSafe(driver, table string) (string, error) {
	name := schema.ParseTableName(table)
	if !IsValidIdentifier(name.Identifier) {
		return "", &InvalidIdentifierError{Name: table}
	}
	if name.Schema != "" {
		for _, part := range strings.Split(name.Schema, ".") {
			if !IsValidIdentifier(part) {
				return "", &InvalidIdentifierError{Name: table}
			}
		}
	}
	return QuoteTable(driver, table)
}

// validIdentifierRegex matches identifiers made of alphanumeric characters
// and underscores.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name only contains alphanumeric characters
// and underscores.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes a MySQL identifier after validating it.
// Returns an error if the identifier contains invalid characters.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
