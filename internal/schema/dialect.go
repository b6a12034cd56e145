package schema

import (
	"fmt"
	"strings"
)

// Dialect produces the catalog queries for one database engine.
//
// TableExistsQuery returns a single integer row (non-zero when the table
// exists). ForeignKeysQuery returns rows of
// (constraint, column, referenced table, referenced column, delete rule)
// ordered by constraint and column position. Referenced tables are rendered
// unqualified when they live in the session's default schema and as
// schema.table otherwise. TablesQuery returns one table name per row.
type Dialect interface {
	Name() string
	TableExistsQuery(t TableName) (string, []any)
	ForeignKeysQuery(t TableName) (string, []any)
	TablesQuery(schema string) (string, []any)
}

// NewDialect returns the dialect for a driver name.
func NewDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql", "mariadb":
		return MySQLDialect{}, nil
	case "postgres", "postgresql", "pgx":
		return PostgresDialect{}, nil
	case "sqlserver", "mssql":
		return SQLServerDialect{}, nil
	case "oracle":
		return OracleDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// nullable maps an empty string to a SQL NULL argument so the catalog query
// can fall back to the session's default schema.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
