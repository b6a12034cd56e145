package graph

import (
	"container/list"
	"sort"
)

// ProcessingQueue wraps a list-based queue for Kahn's algorithm processing.
// It holds group indexes whose referenced groups have all been processed.
type ProcessingQueue struct {
	queue *list.List
}

// NewProcessingQueue creates a new empty processing queue.
func NewProcessingQueue() *ProcessingQueue {
	return &ProcessingQueue{
		queue: list.New(),
	}
}

// Enqueue adds a group index to the back of the queue.
func (pq *ProcessingQueue) Enqueue(group int) {
	pq.queue.PushBack(group)
}

// Dequeue removes and returns the group index at the front of the queue.
// Returns -1 and false if the queue is empty.
func (pq *ProcessingQueue) Dequeue() (int, bool) {
	if pq.queue.Len() == 0 {
		return -1, false
	}
	elem := pq.queue.Front()
	pq.queue.Remove(elem)
	return elem.Value.(int), true
}

// Len returns the number of entries in the queue.
func (pq *ProcessingQueue) Len() int {
	return pq.queue.Len()
}

// IsEmpty returns true if the queue has no entries.
func (pq *ProcessingQueue) IsEmpty() bool {
	return pq.queue.Len() == 0
}

// condensation is the DAG of groups: one node per group in copy order and
// an edge from a referenced group to each of its dependent groups.
type condensation struct {
	groups   []Group
	children [][]int
	inDegree []int
}

func (g *Graph) condense() *condensation {
	groups := g.CopyOrder()
	groupOf := make(map[string]int, len(g.tables))
	for i, gr := range groups {
		for _, t := range gr.Tables {
			groupOf[t] = i
		}
	}

	c := &condensation{
		groups:   groups,
		children: make([][]int, len(groups)),
		inDegree: make([]int, len(groups)),
	}
	seen := make(map[[2]int]bool)
	for _, e := range g.edgeOrder {
		from, to := groupOf[e.From], groupOf[e.To]
		if from == to || seen[[2]int{from, to}] {
			continue
		}
		seen[[2]int{from, to}] = true
		c.children[from] = append(c.children[from], to)
		c.inDegree[to]++
	}
	return c
}

// Levels partitions the groups into levels using Kahn's algorithm over the
// group DAG. Level 0 holds the groups that reference no other group; every
// group in level n references only groups in levels below n. Groups of one
// level are independent of each other and can be copied in parallel.
// Within a level, groups keep their CopyOrder position.
func (g *Graph) Levels() [][]Group {
	c := g.condense()

	queue := NewProcessingQueue()
	for i, degree := range c.inDegree {
		if degree == 0 {
			queue.Enqueue(i)
		}
	}

	var levels [][]Group
	for !queue.IsEmpty() {
		var current []int
		for n := queue.Len(); n > 0; n-- {
			idx, _ := queue.Dequeue()
			current = append(current, idx)
		}
		sort.Ints(current)

		level := make([]Group, 0, len(current))
		for _, idx := range current {
			level = append(level, c.groups[idx])
			for _, child := range c.children[idx] {
				c.inDegree[child]--
				if c.inDegree[child] == 0 {
					queue.Enqueue(child)
				}
			}
		}
		levels = append(levels, level)
	}

	return levels
}
