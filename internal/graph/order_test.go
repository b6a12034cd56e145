package graph

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dbsmedya/fkorder/internal/schema"
)

func groupTables(groups []Group) [][]string {
	out := make([][]string, len(groups))
	for i, gr := range groups {
		out[i] = gr.Tables
	}
	return out
}

func buildOrFail(t *testing.T, src schema.ForeignKeySource, tables []string, opts BuildOptions) *Graph {
	t.Helper()
	g, err := BuildGraph(context.Background(), src, tables, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestOrder_UsersPostsComments(t *testing.T) {
	src := schema.NewStaticSource().
		AddForeignKey("posts", "user_id", "users", "id").
		AddForeignKey("comments", "post_id", "posts", "id").
		AddForeignKey("comments", "user_id", "users", "id")

	g := buildOrFail(t, src, []string{"users", "posts", "comments"}, BuildOptions{})

	copyOrder := [][]string{{"users"}, {"posts"}, {"comments"}}
	if diff := cmp.Diff(copyOrder, groupTables(g.Groups())); diff != "" {
		t.Errorf("Groups() mismatch (-want +got):\n%s", diff)
	}
	deleteOrder := [][]string{{"comments"}, {"posts"}, {"users"}}
	if diff := cmp.Diff(deleteOrder, groupTables(g.DeleteOrder())); diff != "" {
		t.Errorf("DeleteOrder() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrder_InputOrderDoesNotChangeGroups(t *testing.T) {
	src := schema.NewStaticSource().
		AddForeignKey("posts", "user_id", "users", "id").
		AddForeignKey("comments", "post_id", "posts", "id")

	g := buildOrFail(t, src, []string{"comments", "posts", "users"}, BuildOptions{})

	expected := [][]string{{"users"}, {"posts"}, {"comments"}}
	if diff := cmp.Diff(expected, groupTables(g.CopyOrder())); diff != "" {
		t.Errorf("CopyOrder() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrder_TwoTableCycle(t *testing.T) {
	src := schema.NewStaticSource().
		AddForeignKey("a", "b_id", "b", "id").
		AddForeignKey("b", "a_id", "a", "id")

	g := buildOrFail(t, src, []string{"a", "b"}, BuildOptions{})
	groups := g.Groups()

	if len(groups) != 1 {
		t.Fatalf("Expected a single group, got %v", groupTables(groups))
	}
	if !reflect.DeepEqual(groups[0].Tables, []string{"a", "b"}) {
		t.Errorf("Group tables = %v, expected [a b]", groups[0].Tables)
	}
	if !groups[0].IsCycle() {
		t.Error("Group should be reported as a cycle")
	}
	if path := g.CyclePath(groups[0]); !reflect.DeepEqual(path, []string{"a", "b", "a"}) {
		t.Errorf("CyclePath() = %v, expected [a b a]", path)
	}
}

func TestOrder_PartitionScenario(t *testing.T) {
	g := buildOrFail(t, partitionScenario(), partitionTables(), partitionOpts)

	deleteOrder := [][]string{{referenceTable}, {parentTable}, {partitionTable}, {itemsTable}}
	if diff := cmp.Diff(deleteOrder, groupTables(g.DeleteOrder())); diff != "" {
		t.Errorf("DeleteOrder() mismatch (-want +got):\n%s", diff)
	}
	copyOrder := [][]string{{itemsTable}, {partitionTable}, {parentTable}, {referenceTable}}
	if diff := cmp.Diff(copyOrder, groupTables(g.CopyOrder())); diff != "" {
		t.Errorf("CopyOrder() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrder_PartitionScenarioWithCycle(t *testing.T) {
	src := partitionScenario().AddForeignKey(itemsTable, "reference_id", referenceTable, "id")
	g := buildOrFail(t, src, partitionTables(), partitionOpts)

	deleteOrder := [][]string{{parentTable}, {partitionTable}, {itemsTable, referenceTable}}
	if diff := cmp.Diff(deleteOrder, groupTables(g.DeleteOrder())); diff != "" {
		t.Errorf("DeleteOrder() mismatch (-want +got):\n%s", diff)
	}

	groups := g.CopyOrder()
	if !groups[0].IsCycle() {
		t.Fatal("First copy group should be the items/references cycle")
	}
	expectedPath := []string{itemsTable, referenceTable, itemsTable}
	if path := g.CyclePath(groups[0]); !reflect.DeepEqual(path, expectedPath) {
		t.Errorf("CyclePath() = %v, expected %v", path, expectedPath)
	}
}

func TestOrder_SelfReferenceIsSingletonCycle(t *testing.T) {
	src := schema.NewStaticSource().
		AddForeignKey("categories", "parent_id", "categories", "id").
		AddForeignKey("products", "category_id", "categories", "id")

	g := buildOrFail(t, src, []string{"products", "categories"}, BuildOptions{})
	groups := g.Groups()

	expected := [][]string{{"categories"}, {"products"}}
	if diff := cmp.Diff(expected, groupTables(groups)); diff != "" {
		t.Fatalf("Groups() mismatch (-want +got):\n%s", diff)
	}
	if !groups[0].IsCycle() {
		t.Error("A self-referencing table should be reported as a cycle")
	}
	if groups[1].IsCycle() {
		t.Error("products is not a cycle")
	}
	if path := g.CyclePath(groups[0]); !reflect.DeepEqual(path, []string{"categories", "categories"}) {
		t.Errorf("CyclePath() = %v", path)
	}
	if g.CyclePath(groups[1]) != nil {
		t.Error("CyclePath of an acyclic group should be nil")
	}
}

func TestOrder_IsolatedTablesKeepInputOrder(t *testing.T) {
	src := schema.NewStaticSource().AddTable("x").AddTable("y").AddTable("z")
	g := buildOrFail(t, src, []string{"x", "y", "z"}, BuildOptions{})

	expected := [][]string{{"x"}, {"y"}, {"z"}}
	if diff := cmp.Diff(expected, groupTables(g.DeleteOrder())); diff != "" {
		t.Errorf("DeleteOrder() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	acyclic := NewGraph([]string{"users", "posts"})
	acyclic.AddEdge("users", "posts")
	if err := acyclic.Validate(); err != nil {
		t.Errorf("Validate() on acyclic graph = %v", err)
	}
	if acyclic.HasCycle() {
		t.Error("HasCycle() should be false")
	}

	cyclic := NewGraph([]string{"a", "b", "c"})
	cyclic.AddEdge("a", "b")
	cyclic.AddEdge("b", "a")
	cyclic.AddEdge("a", "c")

	err := cyclic.Validate()
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("Expected ErrCycleDetected, got %v", err)
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Expected *CycleError, got %T", err)
	}
	if cycleErr.Info.TotalTables != 3 || len(cycleErr.Info.CyclicGroups) != 1 {
		t.Errorf("Unexpected cycle info: %+v", cycleErr.Info)
	}

	msg := err.Error()
	for _, want := range []string{"2 of 3 tables", "Cycle path:", "Tables in cycle: "} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error message %q should contain %q", msg, want)
		}
	}
}
