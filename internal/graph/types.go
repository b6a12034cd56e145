// Package graph builds foreign-key dependency graphs between tables and
// orders them into strongly connected groups.
package graph

import (
	"strings"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/fkorder/internal/schema"
)

// Edge represents a foreign-key dependency between two tables of the graph.
// From is the referenced table, To is the table holding the foreign key.
type Edge struct {
	From string // Referenced (parent) table
	To   string // Dependent (child) table
}

// EdgeMeta contains metadata about the foreign key behind an edge.
type EdgeMeta struct {
	Constraint        string
	Columns           []string // FK columns in the dependent table
	ReferencedColumns []string // Key columns in the referenced table
	OnDelete          string
}

// Graph maps every input table to the tables that depend on it.
//
// Tables keep the exact reference they were given with. Foreign keys are
// matched against them by unquoted schema-qualified key, so "users" and
// `"users"` name the same node while "public.users" does not.
type Graph struct {
	tables       []string
	keys         map[string]string                       // TableKey -> table reference
	dependents   *orderedmap.OrderedMap[string, []string] // table -> dependent tables
	references   map[string][]string                     // table -> referenced tables
	edgeMetadata map[Edge]*EdgeMeta
	edgeOrder    []Edge
}

// NewGraph creates a graph with the given tables as nodes and no edges.
// Duplicate references are dropped, keeping the first occurrence.
func NewGraph(tables []string) *Graph {
	g := &Graph{
		keys:         make(map[string]string, len(tables)),
		dependents:   orderedmap.NewOrderedMap[string, []string](),
		references:   make(map[string][]string),
		edgeMetadata: make(map[Edge]*EdgeMeta),
	}

	for _, table := range tables {
		key := schema.TableKey(table)
		if key == "" {
			continue
		}
		if _, exists := g.keys[key]; exists {
			continue
		}
		g.keys[key] = table
		g.tables = append(g.tables, table)
		g.dependents.Set(table, nil)
	}

	return g
}

// Lookup returns the node a table reference resolves to.
func (g *Graph) Lookup(ref string) (string, bool) {
	table, ok := g.keys[schema.TableKey(ref)]
	return table, ok
}

// HasTable returns true if ref resolves to a node of the graph.
func (g *Graph) HasTable(ref string) bool {
	_, ok := g.Lookup(ref)
	return ok
}

// AddEdge records that child holds a foreign key into parent.
func (g *Graph) AddEdge(parent, child string) bool {
	return g.AddEdgeWithMeta(parent, child, nil)
}

// AddEdgeWithMeta records that child holds a foreign key into parent.
// It returns false when either table is not a node of the graph or the
// edge is already present; only the first foreign key between two tables
// keeps its metadata.
func (g *Graph) AddEdgeWithMeta(parent, child string, meta *EdgeMeta) bool {
	from, ok := g.Lookup(parent)
	if !ok {
		return false
	}
	to, ok := g.Lookup(child)
	if !ok {
		return false
	}

	edge := Edge{From: from, To: to}
	if _, exists := g.edgeMetadata[edge]; exists {
		return false
	}
	if meta == nil {
		meta = &EdgeMeta{}
	}
	g.edgeMetadata[edge] = meta
	g.edgeOrder = append(g.edgeOrder, edge)

	deps, _ := g.dependents.Get(from)
	g.dependents.Set(from, append(deps, to))
	g.references[to] = append(g.references[to], from)

	return true
}

// Tables returns the nodes in input order.
func (g *Graph) Tables() []string {
	out := make([]string, len(g.tables))
	copy(out, g.tables)
	return out
}

// Dependents returns the tables holding a foreign key into table, in the
// order the edges were added.
func (g *Graph) Dependents(table string) []string {
	deps, _ := g.dependents.Get(table)
	return deps
}

// References returns the tables that table holds a foreign key into.
func (g *Graph) References(table string) []string {
	return g.references[table]
}

// ConnectedComponents partitions the tables into sets joined by foreign
// keys in either direction. Components are ordered by their first table in
// input order, and so are their members.
func (g *Graph) ConnectedComponents() [][]string {
	component := make(map[string]int, len(g.tables))
	count := 0
	for _, start := range g.tables {
		if _, seen := component[start]; seen {
			continue
		}
		component[start] = count
		stack := []string{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range g.Dependents(cur) {
				if _, seen := component[next]; !seen {
					component[next] = count
					stack = append(stack, next)
				}
			}
			for _, next := range g.References(cur) {
				if _, seen := component[next]; !seen {
					component[next] = count
					stack = append(stack, next)
				}
			}
		}
		count++
	}

	components := make([][]string, count)
	for _, table := range g.tables {
		c := component[table]
		components[c] = append(components[c], table)
	}
	return components
}

// HasSelfReference returns true if table holds a foreign key into itself.
func (g *Graph) HasSelfReference(table string) bool {
	_, ok := g.edgeMetadata[Edge{From: table, To: table}]
	return ok
}

// DependencyMap returns a copy of the table -> dependents mapping in input
// order.
func (g *Graph) DependencyMap() *orderedmap.OrderedMap[string, []string] {
	out := orderedmap.NewOrderedMap[string, []string]()
	for el := g.dependents.Front(); el != nil; el = el.Next() {
		deps := make([]string, len(el.Value))
		copy(deps, el.Value)
		out.Set(el.Key, deps)
	}
	return out
}

// GetEdgeMeta returns metadata for an edge, or nil if not found.
func (g *Graph) GetEdgeMeta(parent, child string) *EdgeMeta {
	return g.edgeMetadata[Edge{From: parent, To: child}]
}

// TableCount returns the number of nodes in the graph.
func (g *Graph) TableCount() int {
	return len(g.tables)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edgeOrder)
}

// AllEdges returns all edges in the order they were added.
func (g *Graph) AllEdges() []Edge {
	edges := make([]Edge, len(g.edgeOrder))
	copy(edges, g.edgeOrder)
	return edges
}

// CascadeEdges returns the edges whose foreign key deletes dependent rows
// (ON DELETE CASCADE) in the order they were added.
func (g *Graph) CascadeEdges() []Edge {
	var edges []Edge
	for _, e := range g.edgeOrder {
		if meta := g.edgeMetadata[e]; meta != nil && strings.EqualFold(meta.OnDelete, "CASCADE") {
			edges = append(edges, e)
		}
	}
	return edges
}
