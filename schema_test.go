package ormlite

import (
	"strings"
	"testing"
)

func TestBuildCreateTableSQL(t *testing.T) {
	td := itemDescriptor(t)
	got := buildCreateTableSQL(td)
	want := `CREATE TABLE IF NOT EXISTS "items"("id" integer PRIMARY KEY AUTOINCREMENT NOT NULL, "name" text NOT NULL, "tag" text NOT NULL)`
	if got != want {
		t.Fatalf("buildCreateTableSQL:\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildIndexSQL_SingleColumn(t *testing.T) {
	td := itemDescriptor(t, ColumnDescriptor{
		Name: "sku", Storage: StorageText, IsNullable: true,
		Indices: []IndexParticipation{{Unique: true}},
		Get:     func(r any) any { return "" },
		Set:     func(r any, v any) {},
	})
	stmts, err := buildIndexSQL(td)
	if err != nil {
		t.Fatalf("buildIndexSQL: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 index statement, got %d: %v", len(stmts), stmts)
	}
	want := `CREATE UNIQUE INDEX IF NOT EXISTS "items_sku" ON "items"("sku")`
	if stmts[0] != want {
		t.Fatalf("got %q, want %q", stmts[0], want)
	}
}

func TestBuildIndexSQL_MultiColumnOrdered(t *testing.T) {
	td := itemDescriptor(t,
		ColumnDescriptor{
			Name: "a", Storage: StorageText, IsNullable: true,
			Indices: []IndexParticipation{{IndexName: "items_ab", Order: 1}},
			Get:     func(r any) any { return "" }, Set: func(r any, v any) {},
		},
		ColumnDescriptor{
			Name: "b", Storage: StorageText, IsNullable: true,
			Indices: []IndexParticipation{{IndexName: "items_ab", Order: 0}},
			Get:     func(r any) any { return "" }, Set: func(r any, v any) {},
		},
	)
	stmts, err := buildIndexSQL(td)
	if err != nil {
		t.Fatalf("buildIndexSQL: %v", err)
	}
	if len(stmts) != 1 || !strings.Contains(stmts[0], `("b","a")`) {
		t.Fatalf("expected columns ordered b,a by Order ascending, got %v", stmts)
	}
}

func TestBuildIndexSQL_UniquenessConflictIsSchemaError(t *testing.T) {
	td := itemDescriptor(t,
		ColumnDescriptor{
			Name: "a", Storage: StorageText, IsNullable: true,
			Indices: []IndexParticipation{{IndexName: "items_ab", Unique: true}},
			Get:     func(r any) any { return "" }, Set: func(r any, v any) {},
		},
		ColumnDescriptor{
			Name: "b", Storage: StorageText, IsNullable: true,
			Indices: []IndexParticipation{{IndexName: "items_ab", Unique: false}},
			Get:     func(r any) any { return "" }, Set: func(r any, v any) {},
		},
	)
	_, err := buildIndexSQL(td)
	if err == nil {
		t.Fatal("expected a SchemaError for conflicting uniqueness, got nil")
	}
	var schemaErr *SchemaError
	if !asSchemaError(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %T: %v", err, err)
	}
}

func asSchemaError(err error, target **SchemaError) bool {
	se, ok := err.(*SchemaError)
	if !ok {
		return false
	}
	*target = se
	return true
}
