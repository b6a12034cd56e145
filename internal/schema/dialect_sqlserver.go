package schema

// SQLServerDialect reads foreign keys from the sys catalog views.
// Unqualified names resolve against the user's default schema.
type SQLServerDialect struct{}

func (SQLServerDialect) Name() string { return "sqlserver" }

func (SQLServerDialect) TableExistsQuery(t TableName) (string, []any) {
	const query = `SELECT CASE WHEN OBJECT_ID(@p1, 'U') IS NULL THEN 0 ELSE 1 END`
	return query, []any{t.Key()}
}

func (SQLServerDialect) ForeignKeysQuery(t TableName) (string, []any) {
	const query = `
		SELECT
			fk.name,
			pc.name,
			CASE WHEN SCHEMA_NAME(rt.schema_id) = SCHEMA_NAME()
				THEN rt.name
				ELSE SCHEMA_NAME(rt.schema_id) + '.' + rt.name
			END,
			rc.name,
			REPLACE(fk.delete_referential_action_desc, '_', ' ')
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.columns pc ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
		JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
		JOIN sys.columns rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
		WHERE fk.parent_object_id = OBJECT_ID(@p1)
		ORDER BY fk.name, fkc.constraint_column_id`
	return query, []any{t.Key()}
}

func (SQLServerDialect) TablesQuery(schema string) (string, []any) {
	const query = `
		SELECT CASE WHEN s.name = SCHEMA_NAME() THEN t.name ELSE s.name + '.' + t.name END
		FROM sys.tables t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		WHERE s.name = COALESCE(@p1, SCHEMA_NAME())
		ORDER BY t.name`
	return query, []any{nullable(schema)}
}
