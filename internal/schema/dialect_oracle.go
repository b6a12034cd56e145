package schema

// OracleDialect reads referential constraints from the ALL_* dictionary
// views. Schemas are owners; unqualified names resolve against
// CURRENT_SCHEMA. Identifiers are passed as given, so unquoted Oracle names
// must be supplied in upper case.
type OracleDialect struct{}

func (OracleDialect) Name() string { return "oracle" }

func (OracleDialect) TableExistsQuery(t TableName) (string, []any) {
	const query = `
		SELECT COUNT(*)
		FROM ALL_TABLES
		WHERE OWNER = COALESCE(:1, SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA'))
		  AND TABLE_NAME = :2`
	return query, []any{nullable(t.Schema), t.Identifier}
}

func (OracleDialect) ForeignKeysQuery(t TableName) (string, []any) {
	const query = `
		SELECT
			c.CONSTRAINT_NAME,
			cc.COLUMN_NAME,
			CASE WHEN r.OWNER = SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA')
				THEN r.TABLE_NAME
				ELSE r.OWNER || '.' || r.TABLE_NAME
			END,
			rc.COLUMN_NAME,
			c.DELETE_RULE
		FROM ALL_CONSTRAINTS c
		JOIN ALL_CONS_COLUMNS cc ON cc.OWNER = c.OWNER AND cc.CONSTRAINT_NAME = c.CONSTRAINT_NAME
		JOIN ALL_CONSTRAINTS r ON r.OWNER = c.R_OWNER AND r.CONSTRAINT_NAME = c.R_CONSTRAINT_NAME
		JOIN ALL_CONS_COLUMNS rc ON rc.OWNER = r.OWNER AND rc.CONSTRAINT_NAME = r.CONSTRAINT_NAME AND rc.POSITION = cc.POSITION
		WHERE c.CONSTRAINT_TYPE = 'R'
		  AND c.OWNER = COALESCE(:1, SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA'))
		  AND c.TABLE_NAME = :2
		ORDER BY c.CONSTRAINT_NAME, cc.POSITION`
	return query, []any{nullable(t.Schema), t.Identifier}
}

func (OracleDialect) TablesQuery(schema string) (string, []any) {
	const query = `
		SELECT CASE WHEN OWNER = SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA') THEN TABLE_NAME ELSE OWNER || '.' || TABLE_NAME END
		FROM ALL_TABLES
		WHERE OWNER = COALESCE(:1, SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA'))
		ORDER BY TABLE_NAME`
	return query, []any{nullable(schema)}
}
