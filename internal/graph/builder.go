package graph

import (
	"context"
	"fmt"

	"github.com/dbsmedya/fkorder/internal/logger"
	"github.com/dbsmedya/fkorder/internal/schema"
)

// BuildOptions controls how tables are introspected.
type BuildOptions struct {
	// DynamicPartitionSchema names the schema whose tables are looked up by
	// their bare identifier. Empty disables partition resolution.
	DynamicPartitionSchema string
}

// Builder constructs a dependency graph from a foreign-key source.
type Builder struct {
	src  schema.ForeignKeySource
	opts BuildOptions
	log  *logger.Logger
}

// NewBuilder creates a new graph builder reading foreign keys from src.
func NewBuilder(src schema.ForeignKeySource, opts BuildOptions, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{src: src, opts: opts, log: log}
}

// Build queries the foreign keys of every table and returns the graph of
// dependencies between them. Foreign keys into tables outside the set are
// ignored. The first source error aborts the build and is returned as a
// *schema.SourceError.
func (b *Builder) Build(ctx context.Context, tables []string) (*Graph, error) {
	if b.src == nil {
		return nil, fmt.Errorf("foreign key source is nil")
	}

	g := NewGraph(tables)
	src := schema.WithPartitionResolution(b.src, b.opts.DynamicPartitionSchema)

	for _, table := range g.Tables() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fks, err := src.ForeignKeys(ctx, table)
		if err != nil {
			return nil, &schema.SourceError{Table: table, Err: err}
		}

		log := b.log.WithTable(table)
		for _, fk := range fks {
			meta := &EdgeMeta{
				Constraint:        fk.Name,
				Columns:           fk.Columns,
				ReferencedColumns: fk.ReferencedColumns,
				OnDelete:          fk.OnDelete,
			}
			if g.AddEdgeWithMeta(fk.ReferencedTable, table, meta) {
				continue
			}
			if !g.HasTable(fk.ReferencedTable) {
				log.Debugw("ignoring foreign key outside table set",
					"constraint", fk.Name,
					"referenced_table", fk.ReferencedTable)
			}
		}
		log.Debugw("introspected foreign keys", "count", len(fks))
	}

	return g, nil
}

// BuildGraph is a convenience function that builds a graph with a
// throwaway builder.
func BuildGraph(ctx context.Context, src schema.ForeignKeySource, tables []string, opts BuildOptions) (*Graph, error) {
	return NewBuilder(src, opts, nil).Build(ctx, tables)
}
