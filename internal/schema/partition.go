package schema

import "context"

// PartitionResolver maps tables in the dynamic partition schema onto the
// name that owns their foreign-key metadata. Detached partitions such as
// gitlab_partitions_dynamic._test_partition_20220101 keep their foreign keys
// under the bare identifier, resolved through the search path.
type PartitionResolver struct {
	DynamicSchema string
}

// IsDynamicPartition reports whether table lives in the dynamic partition
// schema.
func (r PartitionResolver) IsDynamicPartition(table string) bool {
	if r.DynamicSchema == "" {
		return false
	}
	return ParseTableName(table).Schema == r.DynamicSchema
}

// LookupName returns the reference to query foreign keys with.
func (r PartitionResolver) LookupName(table string) string {
	if !r.IsDynamicPartition(table) {
		return table
	}
	return ParseTableName(table).Identifier
}

// partitionAwareSource resolves dynamic partitions before delegating and
// reports the foreign keys against the original reference.
type partitionAwareSource struct {
	inner    ForeignKeySource
	resolver PartitionResolver
}

// WithPartitionResolution wraps src so that dynamic partition tables are
// looked up by their base name. The returned foreign keys keep the
// partition reference as their Table. With an empty dynamicSchema src is
// returned unchanged.
func WithPartitionResolution(src ForeignKeySource, dynamicSchema string) ForeignKeySource {
	if dynamicSchema == "" {
		return src
	}
	return &partitionAwareSource{inner: src, resolver: PartitionResolver{DynamicSchema: dynamicSchema}}
}

func (p *partitionAwareSource) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	lookup := p.resolver.LookupName(table)
	fks, err := p.inner.ForeignKeys(ctx, lookup)
	if err != nil {
		return nil, err
	}
	if lookup != table {
		for i := range fks {
			fks[i].Table = table
		}
	}
	return fks, nil
}
