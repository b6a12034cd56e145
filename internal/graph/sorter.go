package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbsmedya/fkorder/internal/logger"
	"github.com/dbsmedya/fkorder/internal/schema"
)

// Order selects the direction groups are listed in.
type Order string

const (
	// OrderCopy lists referenced tables first.
	OrderCopy Order = "copy"
	// OrderDelete lists dependent tables first.
	OrderDelete Order = "delete"
)

// ParseOrder parses "copy" or "delete". An empty string means copy.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderCopy:
		return OrderCopy, nil
	case OrderDelete:
		return OrderDelete, nil
	default:
		return "", fmt.Errorf("invalid order %q (must be 'copy' or 'delete')", s)
	}
}

// Result is the outcome of sorting a table set.
type Result struct {
	Graph  *Graph
	Groups []Group // CopyOrder
}

// InOrder returns the groups in the requested direction.
func (r *Result) InOrder(order Order) []Group {
	if order == OrderDelete {
		out := make([]Group, len(r.Groups))
		for i, gr := range r.Groups {
			out[len(r.Groups)-1-i] = gr
		}
		return out
	}
	return r.Groups
}

// Tables returns the groups in the requested direction as plain table
// lists.
func (r *Result) Tables(order Order) [][]string {
	groups := r.InOrder(order)
	out := make([][]string, len(groups))
	for i, gr := range groups {
		out[i] = gr.Tables
	}
	return out
}

// CycleCount returns the number of cyclic groups.
func (r *Result) CycleCount() int {
	n := 0
	for _, gr := range r.Groups {
		if gr.IsCycle() {
			n++
		}
	}
	return n
}

// Sorter builds the dependency graph of a table set and orders it.
type Sorter struct {
	builder *Builder
	log     *logger.Logger
}

// NewSorter creates a sorter reading foreign keys from src.
func NewSorter(src schema.ForeignKeySource, opts BuildOptions, log *logger.Logger) *Sorter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Sorter{builder: NewBuilder(src, opts, log), log: log}
}

// Sort introspects tables and returns their groups in dependency order.
// Every call queries the source again.
//
// A source failure aborts the sort. It is returned as a *schema.SourceError
// naming the table being introspected; errors.Is and errors.As reach the
// error the source returned.
func (s *Sorter) Sort(ctx context.Context, tables []string) (*Result, error) {
	g, err := s.builder.Build(ctx, tables)
	if err != nil {
		return nil, err
	}

	result := &Result{Graph: g, Groups: g.CopyOrder()}
	s.log.Debugw("sorted tables by foreign keys",
		"tables", g.TableCount(),
		"edges", g.EdgeCount(),
		"groups", len(result.Groups),
		"cycles", result.CycleCount())

	return result, nil
}
