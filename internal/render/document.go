// Package render formats sorted table groups for people and tools.
package render

import (
	"github.com/dbsmedya/fkorder/internal/graph"
)

// Document is the serializable form of a sort result.
type Document struct {
	Set         string      `json:"set,omitempty" yaml:"set,omitempty"`
	Order       graph.Order `json:"order" yaml:"order"`
	TableCount  int         `json:"table_count" yaml:"table_count"`
	ForeignKeys int         `json:"foreign_keys" yaml:"foreign_keys"`
	Cycles      int         `json:"cycles" yaml:"cycles"`
	Groups      []GroupDoc  `json:"groups" yaml:"groups"`
	Edges       []EdgeDoc   `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// GroupDoc is one group of a Document.
type GroupDoc struct {
	Position  int      `json:"position" yaml:"position"`
	Level     int      `json:"level" yaml:"level"`
	Tables    []string `json:"tables" yaml:"tables"`
	Cycle     bool     `json:"cycle" yaml:"cycle"`
	CyclePath []string `json:"cycle_path,omitempty" yaml:"cycle_path,omitempty"`
}

// EdgeDoc is one foreign key between two tables of the set.
type EdgeDoc struct {
	Table           string   `json:"table" yaml:"table"`
	ReferencedTable string   `json:"referenced_table" yaml:"referenced_table"`
	Constraint      string   `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Columns         []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	OnDelete        string   `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
}

// NewDocument converts a sort result into a Document with groups listed
// in the given order. Levels are always counted in copy direction.
func NewDocument(setName string, result *graph.Result, order graph.Order, withEdges bool) *Document {
	g := result.Graph

	levelOf := make(map[string]int)
	for i, level := range g.Levels() {
		for _, gr := range level {
			levelOf[gr.Tables[0]] = i
		}
	}

	doc := &Document{
		Set:         setName,
		Order:       order,
		TableCount:  g.TableCount(),
		ForeignKeys: g.EdgeCount(),
		Cycles:      result.CycleCount(),
		Groups:      make([]GroupDoc, 0, len(result.Groups)),
	}

	for i, gr := range result.InOrder(order) {
		doc.Groups = append(doc.Groups, GroupDoc{
			Position:  i + 1,
			Level:     levelOf[gr.Tables[0]],
			Tables:    gr.Tables,
			Cycle:     gr.IsCycle(),
			CyclePath: g.CyclePath(gr),
		})
	}

	if withEdges {
		for _, e := range g.AllEdges() {
			ed := EdgeDoc{Table: e.To, ReferencedTable: e.From}
			if meta := g.GetEdgeMeta(e.From, e.To); meta != nil {
				ed.Constraint = meta.Constraint
				ed.Columns = meta.Columns
				ed.OnDelete = meta.OnDelete
			}
			doc.Edges = append(doc.Edges, ed)
		}
	}

	return doc
}
