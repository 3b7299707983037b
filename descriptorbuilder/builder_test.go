package descriptorbuilder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/g960059/ormlite"
)

type product struct {
	ID        int64   `orm:"id,autoinc"`
	SKU       string  `orm:"sku,unique"`
	Name      string  `orm:"name"`
	Price     float64 `orm:"price"`
	Notes     *string `orm:"notes"`
	Active    bool    `orm:"active"`
	CreatedAt time.Time
	Internal  string `orm:"-"`
	hidden    int
}

func TestFromStruct_ColumnDerivation(t *testing.T) {
	td, err := FromStruct("products", &product{})
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	if td.TableName != "products" {
		t.Fatalf("expected table name %q, got %q", "products", td.TableName)
	}
	// Internal is tagged out, hidden is unexported; everything else maps.
	if len(td.Columns) != 7 {
		t.Fatalf("expected 7 columns, got %d: %+v", len(td.Columns), td.Columns)
	}
	if !td.HasAutoIncPK {
		t.Fatal("expected auto-increment primary key")
	}

	byName := map[string]ormlite.ColumnDescriptor{}
	for _, c := range td.Columns {
		byName[c.Name] = c
	}
	if c := byName["sku"]; !c.IsUnique || c.Storage != ormlite.StorageText {
		t.Fatalf("sku column derived wrong: %+v", c)
	}
	if c := byName["price"]; c.Storage != ormlite.StorageReal {
		t.Fatalf("price column derived wrong: %+v", c)
	}
	if c := byName["notes"]; !c.IsNullable {
		t.Fatalf("pointer field should be nullable: %+v", c)
	}
	if c := byName["active"]; !c.IsBool || c.Storage != ormlite.StorageInteger {
		t.Fatalf("active column derived wrong: %+v", c)
	}
	if c := byName["createdat"]; !c.IsTime || c.Storage != ormlite.StorageText {
		t.Fatalf("untagged time field derived wrong: %+v", c)
	}
}

func TestFromStruct_MemoizesPerType(t *testing.T) {
	first, err := FromStruct("products", &product{})
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	second, err := FromStruct("products", &product{})
	if err != nil {
		t.Fatalf("FromStruct (again): %v", err)
	}
	if first != second {
		t.Fatal("expected the same memoized descriptor on repeat calls")
	}
}

func TestFromStruct_RejectsNonStructPointer(t *testing.T) {
	if _, err := FromStruct("products", product{}); err == nil {
		t.Fatal("expected an error for a non-pointer prototype")
	}
	var n int
	if _, err := FromStruct("numbers", &n); err == nil {
		t.Fatal("expected an error for a pointer to non-struct")
	}
}

func TestFromStruct_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := ormlite.Open(ctx, path, ormlite.DefaultOpenOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	td, err := FromStruct("products", &product{})
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	if _, err := ormlite.MigrateTable(ctx, conn, td); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	notes := "fragile"
	created := time.Date(2026, 7, 1, 12, 30, 0, 0, time.UTC)
	p := &product{SKU: "sku-1", Name: "gizmo", Price: 4.5, Notes: &notes, Active: true, CreatedAt: created}
	if err := ormlite.Insert(ctx, conn, td, p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected auto-assigned ID after insert")
	}

	found, ok, err := ormlite.FindByKey(ctx, conn, td, func() *product { return &product{} }, p.ID)
	if err != nil || !ok {
		t.Fatalf("FindByKey: ok=%v err=%v", ok, err)
	}
	if found.SKU != "sku-1" || found.Name != "gizmo" || found.Price != 4.5 || !found.Active {
		t.Fatalf("round-trip mismatch: %+v", found)
	}
	if found.Notes == nil || *found.Notes != "fragile" {
		t.Fatalf("expected Notes round-trip, got %v", found.Notes)
	}
	if !found.CreatedAt.Equal(created) {
		t.Fatalf("expected CreatedAt %v, got %v", created, found.CreatedAt)
	}

	p2 := &product{SKU: "sku-2", Name: "doohickey", Price: 1.25}
	if err := ormlite.Insert(ctx, conn, td, p2); err != nil {
		t.Fatalf("Insert (nil notes): %v", err)
	}
	found2, ok, err := ormlite.FindByKey(ctx, conn, td, func() *product { return &product{} }, p2.ID)
	if err != nil || !ok {
		t.Fatalf("FindByKey: ok=%v err=%v", ok, err)
	}
	if found2.Notes != nil {
		t.Fatalf("expected nil Notes, got %v", *found2.Notes)
	}
}
