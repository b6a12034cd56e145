package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/fkorder/internal/graph"
	"github.com/dbsmedya/fkorder/internal/render"
)

// setSortFlags sets the sort flags and restores them after the test.
func setSortFlags(t *testing.T, schemaFile, set string, tables []string) {
	t.Helper()
	saved := []any{sortSet, sortTables, sortAll, sortSchema, sortSchemaFile, sortFormat, sortOrder, sortEdges, sortStrict}
	t.Cleanup(func() {
		sortSet = saved[0].(string)
		sortTables = saved[1].([]string)
		sortAll = saved[2].(bool)
		sortSchema = saved[3].(string)
		sortSchemaFile = saved[4].(string)
		sortFormat = saved[5].(string)
		sortOrder = saved[6].(string)
		sortEdges = saved[7].(bool)
		sortStrict = saved[8].(bool)
	})

	sortSet, sortTables, sortSchemaFile = set, tables, schemaFile
	sortAll, sortSchema, sortEdges, sortStrict = false, "", false, false
	sortFormat, sortOrder = "text", "copy"
}

func TestSortCommandStructure(t *testing.T) {
	assert.Equal(t, "sort", sortCmd.Use)
	assert.NotEmpty(t, sortCmd.Short)
	assert.NotEmpty(t, sortCmd.Long)
	assert.NotNil(t, sortCmd.RunE)

	for _, name := range []string{"set", "tables", "all", "schema", "schema-file", "format", "order", "edges", "strict"} {
		assert.NotNil(t, sortCmd.Flags().Lookup(name), name)
	}
}

func TestRunSort_Text(t *testing.T) {
	_, schemaPath := testFiles(t)
	out := captureOutput(t)
	setSortFlags(t, schemaPath, "blog", nil)

	require.NoError(t, runSort(sortCmd, nil))
	assert.Contains(t, out.String(), "Table Order: blog")
	assert.Contains(t, out.String(), "  [1] users\n")
	assert.Contains(t, out.String(), "  [3] comments\n")
}

func TestRunSort_JSONDeleteOrder(t *testing.T) {
	_, schemaPath := testFiles(t)
	out := captureOutput(t)
	setSortFlags(t, schemaPath, "", []string{"users", "comments", "posts"})
	sortFormat, sortOrder = "json", "delete"

	require.NoError(t, runSort(sortCmd, nil))

	var doc render.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, graph.OrderDelete, doc.Order)
	require.Len(t, doc.Groups, 3)
	assert.Equal(t, []string{"comments"}, doc.Groups[0].Tables)
	assert.Equal(t, []string{"users"}, doc.Groups[2].Tables)
}

func TestRunSort_All(t *testing.T) {
	_, schemaPath := testFiles(t)
	out := captureOutput(t)
	setSortFlags(t, schemaPath, "", nil)
	sortAll = true
	sortFormat = "mermaid"

	require.NoError(t, runSort(sortCmd, nil))
	assert.Contains(t, out.String(), "subgraph cycle_1 [cycle 1]")
	// Tables are listed sorted: a, audit_events, b, comments, posts, users.
	assert.Contains(t, out.String(), "    t1[\"audit_events\"]\n")
	assert.Contains(t, out.String(), "t3 -->|fk_comments_post_id| t4")
}

func TestRunSort_Strict(t *testing.T) {
	_, schemaPath := testFiles(t)
	out := captureOutput(t)
	setSortFlags(t, schemaPath, "loop", nil)
	sortStrict = true

	err := runSort(sortCmd, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrCycleDetected))
	assert.Contains(t, out.String(), "cycle: a -> b -> a", "groups are printed before failing")

	sortSet = "blog"
	assert.NoError(t, runSort(sortCmd, nil))
}

func TestRunSort_Errors(t *testing.T) {
	_, schemaPath := testFiles(t)
	captureOutput(t)

	tests := []struct {
		name    string
		setup   func()
		wantErr string
	}{
		{"bad format", func() { sortFormat = "xml" }, "invalid format"},
		{"bad order", func() { sortOrder = "sideways" }, "invalid order"},
		{"unknown set", func() { sortSet = "nope" }, `table set "nope" not found`},
		{"no tables", func() {}, "no tables given"},
		{"missing table", func() { sortSet = "broken" }, "ghosts"},
		{"missing schema file", func() { sortSet, sortSchemaFile = "blog", "missing.yaml" }, "failed to load schema file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSortFlags(t, schemaPath, "", nil)
			tt.setup()
			err := runSort(sortCmd, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
