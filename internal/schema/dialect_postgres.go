package schema

// PostgresDialect reads foreign keys from pg_constraint. Table references
// are resolved through regclass, so unqualified names follow the session's
// search_path and referenced tables are rendered the way PostgreSQL prints
// them (unqualified when visible in the search path).
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) TableExistsQuery(t TableName) (string, []any) {
	const query = `SELECT (to_regclass($1) IS NOT NULL)::int`
	return query, []any{t.String()}
}

func (PostgresDialect) ForeignKeysQuery(t TableName) (string, []any) {
	const query = `
		SELECT
			c.conname,
			a.attname,
			c.confrelid::regclass::text AS referenced_table,
			af.attname,
			CASE c.confdeltype
				WHEN 'a' THEN 'NO ACTION'
				WHEN 'r' THEN 'RESTRICT'
				WHEN 'c' THEN 'CASCADE'
				WHEN 'n' THEN 'SET NULL'
				WHEN 'd' THEN 'SET DEFAULT'
			END AS on_delete
		FROM pg_catalog.pg_constraint c
		CROSS JOIN LATERAL unnest(c.conkey, c.confkey) WITH ORDINALITY AS k(attnum, fattnum, ord)
		JOIN pg_catalog.pg_attribute a ON a.attrelid = c.conrelid AND a.attnum = k.attnum
		JOIN pg_catalog.pg_attribute af ON af.attrelid = c.confrelid AND af.attnum = k.fattnum
		WHERE c.conrelid = $1::regclass
		  AND c.contype = 'f'
		ORDER BY c.conname, k.ord`
	return query, []any{t.String()}
}

func (PostgresDialect) TablesQuery(schema string) (string, []any) {
	const query = `
		SELECT c.oid::regclass::text
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = COALESCE($1, current_schema())
		  AND c.relkind IN ('r', 'p')
		ORDER BY c.relname`
	return query, []any{nullable(schema)}
}
