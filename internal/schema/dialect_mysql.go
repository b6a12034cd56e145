package schema

// MySQLDialect reads foreign keys from information_schema. Schemas map to
// MySQL databases; unqualified names resolve against DATABASE().
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) TableExistsQuery(t TableName) (string, []any) {
	const query = `
		SELECT COUNT(*)
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = COALESCE(?, DATABASE())
		  AND TABLE_NAME = ?`
	return query, []any{nullable(t.Schema), t.Identifier}
}

func (MySQLDialect) ForeignKeysQuery(t TableName) (string, []any) {
	const query = `
		SELECT
			k.CONSTRAINT_NAME,
			k.COLUMN_NAME,
			IF(k.REFERENCED_TABLE_SCHEMA = DATABASE(),
				k.REFERENCED_TABLE_NAME,
				CONCAT(k.REFERENCED_TABLE_SCHEMA, '.', k.REFERENCED_TABLE_NAME)) AS REFERENCED_TABLE,
			k.REFERENCED_COLUMN_NAME,
			r.DELETE_RULE
		FROM information_schema.KEY_COLUMN_USAGE k
		JOIN information_schema.REFERENTIAL_CONSTRAINTS r
			ON r.CONSTRAINT_SCHEMA = k.CONSTRAINT_SCHEMA
			AND r.CONSTRAINT_NAME = k.CONSTRAINT_NAME
			AND r.TABLE_NAME = k.TABLE_NAME
		WHERE k.TABLE_SCHEMA = COALESCE(?, DATABASE())
		  AND k.TABLE_NAME = ?
		  AND k.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY k.CONSTRAINT_NAME, k.ORDINAL_POSITION`
	return query, []any{nullable(t.Schema), t.Identifier}
}

func (MySQLDialect) TablesQuery(schema string) (string, []any) {
	const query = `
		SELECT IF(TABLE_SCHEMA = DATABASE(), TABLE_NAME, CONCAT(TABLE_SCHEMA, '.', TABLE_NAME))
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = COALESCE(?, DATABASE())
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`
	return query, []any{nullable(schema)}
}
