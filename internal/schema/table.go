// Package schema describes table references and the foreign-key sources
// that answer "which tables does this table reference" for a live database.
package schema

import "strings"

// TableName is a possibly schema-qualified table reference.
type TableName struct {
	Schema     string // empty when the reference is unqualified
	Identifier string
	raw        string
}

// ParseTableName splits a reference such as users, public.users,
// "My Schema"."Users", backtick-quoted MySQL names or [dbo].[users] into its
// schema and identifier. Quote characters are removed from the parts. When
// more than two parts are present the leading parts form the schema.
func ParseTableName(ref string) TableName {
	parts := splitQualified(strings.TrimSpace(ref))
	name := TableName{raw: ref}
	switch len(parts) {
	case 0:
	case 1:
		name.Identifier = parts[0]
	default:
		name.Schema = strings.Join(parts[:len(parts)-1], ".")
		name.Identifier = parts[len(parts)-1]
	}
	return name
}

// String returns the reference exactly as it was given.
func (t TableName) String() string {
	return t.raw
}

// IsQualified reports whether the reference names a schema.
func (t TableName) IsQualified() bool {
	return t.Schema != ""
}

// Key is the unquoted, schema-qualified form used to match references that
// differ only in quoting.
func (t TableName) Key() string {
	if t.Schema == "" {
		return t.Identifier
	}
	return t.Schema + "." + t.Identifier
}

// TableKey is shorthand for ParseTableName(ref).Key().
func TableKey(ref string) string {
	return ParseTableName(ref).Key()
}

func splitQualified(s string) []string {
	if s == "" {
		return nil
	}

	var (
		parts   []string
		current strings.Builder
		closing rune
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if closing != 0 {
			if r == closing {
				// Doubled quote inside a quoted identifier is a literal quote.
				if i+1 < len(runes) && runes[i+1] == closing && closing != ']' {
					current.WriteRune(r)
					i++
					continue
				}
				closing = 0
				continue
			}
			current.WriteRune(r)
			continue
		}

		switch r {
		case '"', '`':
			closing = r
		case '[':
			closing = ']'
		case '.':
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(parts, current.String())
}
