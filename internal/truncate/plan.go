// Package truncate empties a table set in foreign-key delete order.
package truncate

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/fkorder/internal/config"
	"github.com/dbsmedya/fkorder/internal/graph"
	"github.com/dbsmedya/fkorder/internal/sqlutil"
)

// Step is one statement of a plan together with the tables it empties.
// Group is the delete-order position of the first group it covers.
type Step struct {
	Group  int
	Tables []string
	SQL    string
}

// Plan is the list of statements that truncate a table set.
// Setup runs before the steps and Teardown after them, also on failure.
type Plan struct {
	Driver   string
	Setup    []string
	Steps    []Step
	Teardown []string
}

// Statements returns every statement of the plan in execution order.
func (p *Plan) Statements() []string {
	out := make([]string, 0, len(p.Setup)+len(p.Steps)+len(p.Teardown))
	out = append(out, p.Setup...)
	for _, s := range p.Steps {
		out = append(out, s.SQL)
	}
	return append(out, p.Teardown...)
}

// TableCount returns the number of tables the plan empties.
func (p *Plan) TableCount() int {
	n := 0
	for _, s := range p.Steps {
		n += len(s.Tables)
	}
	return n
}

// BuildPlan creates the statements that empty every table of result, with
// dependent tables first.
//
// PostgreSQL only truncates a table in the same command as every table
// referencing it, so its TRUNCATE statements hold whole sets of tables
// connected by foreign keys. Sets are packed into statements of at most
// maxPerStatement tables (0 means a single statement) and a set is never
// split. MySQL disables foreign key checks for the session and truncates
// table by table. SQL Server and Oracle refuse TRUNCATE on referenced
// tables, so rows are removed with DELETE.
func BuildPlan(driver string, result *graph.Result, maxPerStatement int) (*Plan, error) {
	driver = config.NormalizeDriver(driver)
	plan := &Plan{Driver: driver}

	groups := result.InOrder(graph.OrderDelete)
	quoted := make([][]string, len(groups))
	for i, gr := range groups {
		for _, t := range gr.Tables {
			q, err := sqlutil.QuoteTableSafe(driver, t)
			if err != nil {
				return nil, err
			}
			quoted[i] = append(quoted[i], q)
		}
	}

	switch driver {
	case config.DriverPostgres:
		plan.Steps = postgresSteps(connectedUnits(result.Graph, groups), groups, quoted, maxPerStatement)
	case config.DriverMySQL:
		plan.Setup = []string{"SET FOREIGN_KEY_CHECKS = 0"}
		plan.Teardown = []string{"SET FOREIGN_KEY_CHECKS = 1"}
		plan.Steps = perTableSteps(groups, quoted, "TRUNCATE TABLE ")
	case config.DriverSQLServer, config.DriverOracle:
		plan.Steps = perTableSteps(groups, quoted, "DELETE FROM ")
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	return plan, nil
}

// connectedUnits collects the indexes of groups belonging to the same
// connected component of g. Units are ordered by their first group, and
// each keeps its groups in the order given.
func connectedUnits(g *graph.Graph, groups []graph.Group) [][]int {
	componentOf := make(map[string]int)
	if g != nil {
		for i, c := range g.ConnectedComponents() {
			for _, t := range c {
				componentOf[t] = i
			}
		}
	}

	var units [][]int
	unitOf := make(map[int]int)
	for i, gr := range groups {
		if len(gr.Tables) == 0 {
			continue
		}
		c, known := componentOf[gr.Tables[0]]
		if !known {
			units = append(units, []int{i})
			continue
		}
		u, ok := unitOf[c]
		if !ok {
			u = len(units)
			unitOf[c] = u
			units = append(units, nil)
		}
		units[u] = append(units[u], i)
	}
	return units
}

func postgresSteps(units [][]int, groups []graph.Group, quoted [][]string, maxPerStatement int) []Step {
	var (
		steps  []Step
		first  int
		tables []string
		names  []string
	)
	flush := func() {
		if len(tables) == 0 {
			return
		}
		steps = append(steps, Step{Group: first, Tables: tables, SQL: "TRUNCATE TABLE " + strings.Join(names, ", ")})
		tables, names = nil, nil
	}

	for _, unit := range units {
		size := 0
		for _, i := range unit {
			size += len(groups[i].Tables)
		}
		if maxPerStatement > 0 && len(tables) > 0 && len(tables)+size > maxPerStatement {
			flush()
		}
		if len(tables) == 0 {
			first = unit[0]
		}
		for _, i := range unit {
			tables = append(tables, groups[i].Tables...)
			names = append(names, quoted[i]...)
		}
	}
	flush()

	return steps
}

func perTableSteps(groups []graph.Group, quoted [][]string, prefix string) []Step {
	var steps []Step
	for i, gr := range groups {
		for j, t := range gr.Tables {
			steps = append(steps, Step{Group: i, Tables: []string{t}, SQL: prefix + quoted[i][j]})
		}
	}
	return steps
}
