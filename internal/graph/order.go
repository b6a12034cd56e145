package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Group is a set of tables that must be handled together: a single table,
// or the members of a foreign-key cycle.
type Group struct {
	Tables   []string
	selfLoop bool
}

// IsCycle returns true if the tables of the group reference each other, or
// the single table of the group references itself.
func (gr Group) IsCycle() bool {
	return len(gr.Tables) > 1 || gr.selfLoop
}

// Size returns the number of tables in the group.
func (gr Group) Size() int {
	return len(gr.Tables)
}

func (g *Graph) newGroup(tables []string) Group {
	gr := Group{Tables: tables}
	if len(tables) == 1 {
		gr.selfLoop = g.HasSelfReference(tables[0])
	}
	return gr
}

// DeleteOrder returns the groups with dependent tables first: no group
// holds a foreign key into a later group. This is the order in which rows
// can be removed without violating constraints.
func (g *Graph) DeleteOrder() []Group {
	components := g.StronglyConnectedComponents()
	groups := make([]Group, len(components))
	for i, c := range components {
		groups[i] = g.newGroup(c)
	}
	return groups
}

// CopyOrder returns the groups with referenced tables first: for every
// foreign key from A to B across groups, B's group precedes A's group.
// It is the reverse of DeleteOrder.
func (g *Graph) CopyOrder() []Group {
	deleteOrder := g.DeleteOrder()
	copyOrder := make([]Group, len(deleteOrder))
	for i, gr := range deleteOrder {
		copyOrder[len(deleteOrder)-1-i] = gr
	}
	return copyOrder
}

// Groups returns the groups in dependency order (CopyOrder).
func (g *Graph) Groups() []Group {
	return g.CopyOrder()
}

// CyclePath returns one foreign-key cycle inside the group, following
// foreign keys from the first table, e.g. [a, b, a] when a references b
// and b references a. It returns nil for groups that are not cycles.
func (g *Graph) CyclePath(gr Group) []string {
	if !gr.IsCycle() {
		return nil
	}
	start := gr.Tables[0]
	if gr.selfLoop {
		return []string{start, start}
	}

	allowed := make(map[string]bool, len(gr.Tables))
	for _, t := range gr.Tables {
		allowed[t] = true
	}
	return g.FindCyclePath(start, allowed)
}

// FindCyclePath finds a path of foreign keys from start back to itself,
// using only tables in allowedNodes. The start table appears at both ends.
func (g *Graph) FindCyclePath(start string, allowedNodes map[string]bool) []string {
	visited := make(map[string]bool)
	path := []string{start}

	if g.dfsFindPath(start, start, visited, allowedNodes, &path) {
		return path
	}

	return nil
}

// dfsFindPath performs DFS along foreign keys to find a path back to target.
func (g *Graph) dfsFindPath(current, target string, visited, allowedNodes map[string]bool, path *[]string) bool {
	for _, ref := range g.References(current) {
		if !allowedNodes[ref] {
			continue
		}

		if ref == target {
			*path = append(*path, target)
			return true
		}

		if visited[ref] {
			continue
		}

		visited[ref] = true
		*path = append(*path, ref)

		if g.dfsFindPath(ref, target, visited, allowedNodes, path) {
			return true
		}

		*path = (*path)[:len(*path)-1]
	}

	return false
}

// ErrCycleDetected is matched by a *CycleError with errors.Is.
var ErrCycleDetected = errors.New("cycle detected in dependency graph")

// CycleInfo describes the foreign-key cycles of a graph.
type CycleInfo struct {
	TotalTables  int        // Number of tables in the graph
	CyclicGroups [][]string // Tables of every cyclic group, in copy order
	CyclePath    []string   // One concrete cycle of the first cyclic group
}

// CycleError is returned by Validate when the graph contains cycles.
type CycleError struct {
	Info *CycleInfo
}

// Error lists the cyclic groups and one cycle path.
func (e *CycleError) Error() string {
	tables := 0
	for _, grp := range e.Info.CyclicGroups {
		tables += len(grp)
	}
	msg := fmt.Sprintf("cycle detected in dependency graph: %d of %d tables are in %d cyclic group(s)",
		tables, e.Info.TotalTables, len(e.Info.CyclicGroups))

	if len(e.Info.CyclePath) > 0 {
		msg += fmt.Sprintf("\nCycle path: %s", strings.Join(e.Info.CyclePath, " -> "))
	}

	for _, grp := range e.Info.CyclicGroups {
		msg += fmt.Sprintf("\nTables in cycle: %s", strings.Join(grp, ", "))
	}

	return msg
}

// Is reports whether target is ErrCycleDetected.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// DetectCycles returns information about the cyclic groups of the graph,
// or nil if the graph is acyclic.
func (g *Graph) DetectCycles() *CycleInfo {
	var info *CycleInfo
	for _, gr := range g.CopyOrder() {
		if !gr.IsCycle() {
			continue
		}
		if info == nil {
			info = &CycleInfo{
				TotalTables: len(g.tables),
				CyclePath:   g.CyclePath(gr),
			}
		}
		info.CyclicGroups = append(info.CyclicGroups, gr.Tables)
	}
	return info
}

// HasCycle returns true if any group of the graph is a cycle.
func (g *Graph) HasCycle() bool {
	return g.DetectCycles() != nil
}

// Validate returns a *CycleError if the graph contains cycles. Ordering
// never fails on cycles; Validate is for callers that cannot handle them.
func (g *Graph) Validate() error {
	if info := g.DetectCycles(); info != nil {
		return &CycleError{Info: info}
	}
	return nil
}
