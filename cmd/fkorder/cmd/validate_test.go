package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCaptured(t *testing.T) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	validateCmd.SetOut(&buf)
	defer validateCmd.SetOut(nil)
	err := runValidate(validateCmd, nil)
	return buf.String(), err
}

func setValidateFlags(t *testing.T, schemaFile string, skipDB bool) {
	t.Helper()
	savedFile, savedSkip := validateSchemaFile, validateSkipDB
	t.Cleanup(func() { validateSchemaFile, validateSkipDB = savedFile, savedSkip })
	validateSchemaFile, validateSkipDB = schemaFile, skipDB
}

func TestValidateCommandStructure(t *testing.T) {
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Long)
	assert.NotNil(t, validateCmd.RunE)
}

func TestRunValidate_SchemaFile(t *testing.T) {
	_, schemaPath := testFiles(t)
	setValidateFlags(t, schemaPath, false)

	out, err := runValidateCaptured(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	assert.Contains(t, out, "✅ Configuration is valid")
	assert.Contains(t, out, "--- Table set: blog ---\nTables: 3, groups: 3\n✅ All tables found")
	assert.Contains(t, out, "--- Table set: loop ---")
	assert.Contains(t, out, "1 cyclic group(s), e.g. [a b a]")
	assert.Contains(t, out, "1 ON DELETE CASCADE foreign key(s):\n     a -> b\n")
	assert.Contains(t, out, "--- Table set: broken ---\n❌")
}

func TestRunValidate_SkipDB(t *testing.T) {
	testFiles(t)
	setValidateFlags(t, "", true)

	out, err := runValidateCaptured(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Table sets found: 3")
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	testFiles(t)
	setValidateFlags(t, "", true)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("database:\n  driver: sqlite\n  host: x\n  user: u\n  database: d\n"), 0o644))
	cfgFile = invalid

	out, err := runValidateCaptured(t)
	require.Error(t, err)
	assert.Contains(t, out, "database.driver")
}
