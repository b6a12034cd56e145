package schema

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition describes tables and foreign keys without a database:
//
//	tables: [users]
//	foreign_keys:
//	  - name: fk_posts_user_id
//	    table: posts
//	    columns: [user_id]
//	    referenced_table: users
//	    referenced_columns: [id]
//
// Tables named by a foreign key do not need to be listed.
type Definition struct {
	Tables      []string     `yaml:"tables"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys"`
}

// ReadStaticSource decodes a Definition into a StaticSource.
func ReadStaticSource(r io.Reader) (*StaticSource, error) {
	var f Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode schema file: %w", err)
	}

	src := NewStaticSource()
	for _, t := range f.Tables {
		src.AddTable(t)
	}
	for i, fk := range f.ForeignKeys {
		if fk.Table == "" || fk.ReferencedTable == "" {
			return nil, fmt.Errorf("foreign_keys[%d]: table and referenced_table are required", i)
		}
		src.Add(fk)
	}
	return src, nil
}

// LoadStaticSource reads a Definition from path.
func LoadStaticSource(path string) (*StaticSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStaticSource(f)
}
