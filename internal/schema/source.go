package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLSource is a ForeignKeySource and TableLister backed by a live
// connection. Each call issues its catalog queries and consumes the rows
// before returning; nothing is cached.
type SQLSource struct {
	db      Querier
	dialect Dialect
}

// NewSQLSource creates a source for db using the catalog queries of dialect.
func NewSQLSource(db Querier, dialect Dialect) (*SQLSource, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if dialect == nil {
		return nil, fmt.Errorf("dialect is nil")
	}
	return &SQLSource{db: db, dialect: dialect}, nil
}

// Dialect returns the dialect the source was created with.
func (s *SQLSource) Dialect() Dialect {
	return s.dialect
}

// ForeignKeys returns the outgoing foreign keys of table, one entry per
// constraint with its columns in key order. ErrTableNotFound is returned
// (wrapped) when the table does not exist.
func (s *SQLSource) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	name := ParseTableName(table)
	if name.Identifier == "" {
		return nil, fmt.Errorf("%w: empty table reference", ErrTableNotFound)
	}

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	query, args := s.dialect.ForeignKeysQuery(name)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var constraint, column, refTable, refColumn string
		var onDelete sql.NullString
		if err := rows.Scan(&constraint, &column, &refTable, &refColumn, &onDelete); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key of %s: %w", table, err)
		}

		// Rows of a multi-column constraint arrive consecutively.
		if n := len(fks); n > 0 && fks[n-1].Name == constraint {
			fks[n-1].Columns = append(fks[n-1].Columns, column)
			fks[n-1].ReferencedColumns = append(fks[n-1].ReferencedColumns, refColumn)
			continue
		}

		fks = append(fks, ForeignKey{
			Name:              constraint,
			Table:             table,
			Columns:           []string{column},
			ReferencedTable:   refTable,
			ReferencedColumns: []string{refColumn},
			OnDelete:          onDelete.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys of %s: %w", table, err)
	}

	return fks, nil
}

func (s *SQLSource) tableExists(ctx context.Context, name TableName) (bool, error) {
	query, args := s.dialect.TableExistsQuery(name)

	var found int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check existence of %s: %w", name, err)
	}
	return found > 0, nil
}

// Tables lists the base tables of schema, or of the session's default
// schema when schema is empty.
func (s *SQLSource) Tables(ctx context.Context, schema string) ([]string, error) {
	query, args := s.dialect.TablesQuery(schema)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	return tables, nil
}
