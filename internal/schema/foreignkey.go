package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrTableNotFound is returned by a ForeignKeySource when the table does not
// exist in the database.
var ErrTableNotFound = errors.New("table not found")

// ForeignKey is one outgoing foreign key of a table.
type ForeignKey struct {
	Name              string   `json:"name" yaml:"name"`
	Table             string   `json:"table" yaml:"table"`
	Columns           []string `json:"columns" yaml:"columns"`
	ReferencedTable   string   `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns" yaml:"referenced_columns"`
	OnDelete          string   `json:"on_delete,omitempty" yaml:"on_delete,omitempty"` // CASCADE, SET NULL, RESTRICT, NO ACTION
}

func (fk ForeignKey) String() string {
	return fmt.Sprintf("%s(%s) -> %s(%s)",
		fk.Table, strings.Join(fk.Columns, ", "),
		fk.ReferencedTable, strings.Join(fk.ReferencedColumns, ", "))
}

// ForeignKeySource answers which foreign keys a table holds. Implementations
// query the live schema on every call.
type ForeignKeySource interface {
	ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)
}

// TableLister lists the base tables of a schema (the default schema when
// schema is empty), rendered the same way ForeignKeys renders referenced
// tables.
type TableLister interface {
	Tables(ctx context.Context, schema string) ([]string, error)
}

// SourceError reports that the foreign keys of a table could not be
// determined. It wraps the underlying driver or lookup error.
type SourceError struct {
	Table string
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("could not determine foreign keys for table %q: %v", e.Table, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
