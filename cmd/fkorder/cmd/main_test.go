package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfigYAML = `database:
  driver: postgres
  host: localhost
  user: app
  database: app
table_sets:
  blog:
    description: blog tables
    tables: [users, posts, comments]
  loop:
    tables: [a, b]
  broken:
    tables: [users, ghosts]
truncate:
  protected_tables: [audit_events]
logging:
  level: error
`

const testSchemaYAML = `tables: [audit_events]
foreign_keys:
  - name: fk_posts_user_id
    table: posts
    columns: [user_id]
    referenced_table: users
    referenced_columns: [id]
  - name: fk_comments_post_id
    table: comments
    columns: [post_id]
    referenced_table: posts
    referenced_columns: [id]
  - name: fk_a_b
    table: a
    columns: [b_id]
    referenced_table: b
    referenced_columns: [id]
    on_delete: CASCADE
  - name: fk_b_a
    table: b
    columns: [a_id]
    referenced_table: a
    referenced_columns: [id]
`

// testFiles writes the test config and schema definition and points the
// root flags at them. Flag variables are restored after the test.
func testFiles(t *testing.T) (configPath, schemaPath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "fkorder.yaml")
	schemaPath = filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigYAML), 0o644))
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSchemaYAML), 0o644))

	saved := struct {
		cfgFile, logLevel, logFormat, driver, dsn string
		noColor                                   bool
	}{cfgFile, logLevel, logFormat, driver, dsn, noColor}
	t.Cleanup(func() {
		cfgFile, logLevel, logFormat = saved.cfgFile, saved.logLevel, saved.logFormat
		driver, dsn, noColor = saved.driver, saved.dsn, saved.noColor
	})

	cfgFile = configPath
	noColor = true
	return configPath, schemaPath
}

// captureOutput redirects outputWriter for the duration of the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	setOutputWriter(&buf)
	t.Cleanup(resetOutputWriter)
	return &buf
}

func TestExecute(t *testing.T) {
	require.NotNil(t, Execute)
	require.NotEmpty(t, Version)
	require.NotEmpty(t, Commit)
}
