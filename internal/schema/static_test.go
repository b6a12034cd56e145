package schema

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestStaticSource(t *testing.T) {
	ctx := context.Background()
	src := NewStaticSource().
		AddForeignKey("posts", "user_id", "users", "id").
		AddForeignKey("comments", "post_id", "posts", "id").
		AddTable("audit.events")

	fks, err := src.ForeignKeys(ctx, "comments")
	if err != nil {
		t.Fatalf("ForeignKeys() error = %v", err)
	}
	if len(fks) != 1 || fks[0].ReferencedTable != "posts" {
		t.Errorf("unexpected foreign keys: %v", fks)
	}

	fks, err = src.ForeignKeys(ctx, "users")
	if err != nil || len(fks) != 0 {
		t.Errorf("users should have no foreign keys, got %v, %v", fks, err)
	}

	if _, err := src.ForeignKeys(ctx, "missing"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}

	all, _ := src.Tables(ctx, "")
	if !reflect.DeepEqual(all, []string{"audit.events", "comments", "posts", "users"}) {
		t.Errorf("Tables(\"\") = %v", all)
	}
	audit, _ := src.Tables(ctx, "audit")
	if !reflect.DeepEqual(audit, []string{"audit.events"}) {
		t.Errorf("Tables(audit) = %v", audit)
	}
}

func TestForeignKeyString(t *testing.T) {
	fk := ForeignKey{
		Table:             "order_items",
		Columns:           []string{"order_id", "tenant_id"},
		ReferencedTable:   "orders",
		ReferencedColumns: []string{"id", "tenant_id"},
	}
	want := "order_items(order_id, tenant_id) -> orders(id, tenant_id)"
	if fk.String() != want {
		t.Errorf("String() = %q, want %q", fk.String(), want)
	}
}

func TestSourceError(t *testing.T) {
	base := errors.New("relation \"nope\" does not exist")
	err := &SourceError{Table: "nope", Err: base}

	if !errors.Is(err, base) {
		t.Error("SourceError should unwrap to the underlying error")
	}
	want := `could not determine foreign keys for table "nope": relation "nope" does not exist`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
