package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// StaticSource is an in-memory ForeignKeySource and TableLister. It is used
// for tests and for ordering table sets described without a database.
type StaticSource struct {
	mu     sync.RWMutex
	tables map[string][]ForeignKey
	order  []string
	errs   map[string]error
	calls  map[string]int
}

// NewStaticSource creates an empty static source.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		tables: make(map[string][]ForeignKey),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// AddTable registers a table with no foreign keys. Adding an existing table
// is a no-op.
func (s *StaticSource) AddTable(table string) *StaticSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTableLocked(table)
	return s
}

func (s *StaticSource) addTableLocked(table string) {
	if _, ok := s.tables[table]; ok {
		return
	}
	s.tables[table] = nil
	s.order = append(s.order, table)
}

// AddForeignKey registers a single-column foreign key from table to
// referenced. Both tables are registered.
func (s *StaticSource) AddForeignKey(table, column, referenced, referencedColumn string) *StaticSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTableLocked(table)
	s.addTableLocked(referenced)
	s.tables[table] = append(s.tables[table], ForeignKey{
		Name:              fmt.Sprintf("fk_%s_%s", TableKey(table), column),
		Table:             table,
		Columns:           []string{column},
		ReferencedTable:   referenced,
		ReferencedColumns: []string{referencedColumn},
		OnDelete:          "NO ACTION",
	})
	return s
}

// Add registers fk as it is. Both tables are registered.
func (s *StaticSource) Add(fk ForeignKey) *StaticSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTableLocked(fk.Table)
	s.addTableLocked(fk.ReferencedTable)
	s.tables[fk.Table] = append(s.tables[fk.Table], fk)
	return s
}

// FailOn makes ForeignKeys(table) return err.
func (s *StaticSource) FailOn(table string, err error) *StaticSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[table] = err
	return s
}

// Calls returns how many times ForeignKeys was called for table.
func (s *StaticSource) Calls(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[table]
}

func (s *StaticSource) ForeignKeys(_ context.Context, table string) ([]ForeignKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[table]++

	if err := s.errs[table]; err != nil {
		return nil, err
	}
	fks, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	out := make([]ForeignKey, len(fks))
	copy(out, fks)
	return out, nil
}

// Tables returns the registered tables. When schema is set only tables in
// that schema are returned.
func (s *StaticSource) Tables(_ context.Context, schema string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tables []string
	for _, t := range s.order {
		if schema == "" || ParseTableName(t).Schema == schema {
			tables = append(tables, t)
		}
	}
	sort.Strings(tables)
	return tables, nil
}
