package render

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/fkorder/internal/graph"
)

// Mermaid returns a mermaid flowchart of the result. Edges point from the
// table holding the foreign key to the referenced table, labeled with the
// constraint name. Cyclic groups are drawn as subgraphs.
//
// Node IDs are positional (t0, t1, ...) so that no table reference can
// collide with another or with a mermaid keyword. The reference itself is
// the node label.
func Mermaid(result *graph.Result) string {
	g := result.Graph
	ids := nodeIDs(g)
	var sb strings.Builder

	sb.WriteString("graph TD\n")

	cycle := 0
	for _, gr := range result.Groups {
		if !gr.IsCycle() {
			for _, t := range gr.Tables {
				sb.WriteString(fmt.Sprintf("    %s\n", mermaidNode(ids[t], t)))
			}
			continue
		}

		cycle++
		sb.WriteString(fmt.Sprintf("    subgraph cycle_%d [cycle %d]\n", cycle, cycle))
		for _, t := range gr.Tables {
			sb.WriteString(fmt.Sprintf("        %s\n", mermaidNode(ids[t], t)))
		}
		sb.WriteString("    end\n")
	}

	for _, e := range g.AllEdges() {
		child, parent := ids[e.To], ids[e.From]
		if meta := g.GetEdgeMeta(e.From, e.To); meta != nil && meta.Constraint != "" {
			sb.WriteString(fmt.Sprintf("    %s -->|%s| %s\n", child, mermaidText(meta.Constraint), parent))
		} else {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", child, parent))
		}
	}

	return sb.String()
}

// nodeIDs maps every table to an ID from its position in the graph.
func nodeIDs(g *graph.Graph) map[string]string {
	tables := g.Tables()
	ids := make(map[string]string, len(tables))
	for i, t := range tables {
		ids[t] = fmt.Sprintf("t%d", i)
	}
	return ids
}

// mermaidNode declares a node labeled with the table reference.
func mermaidNode(id, table string) string {
	return fmt.Sprintf(`%s["%s"]`, id, mermaidText(table))
}

// mermaidText escapes characters that end a label early.
func mermaidText(s string) string {
	return strings.NewReplacer(
		`"`, "#quot;",
		"|", "#124;",
	).Replace(s)
}
