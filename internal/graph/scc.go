package graph

// tarjan holds the traversal state of Tarjan's strongly connected
// components algorithm over the table -> dependents edges.
type tarjan struct {
	g          *Graph
	index      map[string]int
	lowlink    map[string]int
	onStack    map[string]bool
	stack      []string
	next       int
	components [][]string
}

// StronglyConnectedComponents returns the strongly connected components of
// the graph in the order Tarjan's algorithm completes them. Nodes are
// visited in input order and dependents in the order they were added, so a
// component is emitted before every component it depends on: dependent
// tables come first. Members of a component are listed in stack order.
func (g *Graph) StronglyConnectedComponents() [][]string {
	t := &tarjan{
		g:       g,
		index:   make(map[string]int, len(g.tables)),
		lowlink: make(map[string]int, len(g.tables)),
		onStack: make(map[string]bool, len(g.tables)),
	}

	for _, table := range g.tables {
		if _, visited := t.index[table]; !visited {
			t.visit(table)
		}
	}

	return t.components
}

func (t *tarjan) visit(v string) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.Dependents(v) {
		if _, visited := t.index[w]; !visited {
			t.visit(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}

	// v is the root of a component: pop it and everything above it.
	i := len(t.stack) - 1
	for t.stack[i] != v {
		i--
	}
	component := make([]string, len(t.stack)-i)
	copy(component, t.stack[i:])
	for _, w := range component {
		t.onStack[w] = false
	}
	t.stack = t.stack[:i]
	t.components = append(t.components, component)
}
