package ormlite

import (
	"context"
	"testing"
)

func TestMigrateTable_CreatedThenMigrated(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()
	td := itemDescriptor(t)

	result, err := MigrateTable(ctx, conn, td)
	if err != nil {
		t.Fatalf("MigrateTable (create): %v", err)
	}
	if result != Created {
		t.Fatalf("expected Created, got %v", result)
	}

	result, err = MigrateTable(ctx, conn, td)
	if err != nil {
		t.Fatalf("MigrateTable (idempotent): %v", err)
	}
	if result != Migrated {
		t.Fatalf("expected Migrated on second call, got %v", result)
	}
}

func TestDropTable_ThenCreateAgain(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()
	td := itemDescriptor(t)

	if _, err := MigrateTable(ctx, conn, td); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}
	if err := DropTable(ctx, conn, td); err != nil {
		t.Fatalf("DropTable: %v", err)
	}
	// Dropping a table that no longer exists is a no-op.
	if err := DropTable(ctx, conn, td); err != nil {
		t.Fatalf("DropTable (absent): %v", err)
	}

	result, err := MigrateTable(ctx, conn, td)
	if err != nil {
		t.Fatalf("MigrateTable after drop: %v", err)
	}
	if result != Created {
		t.Fatalf("expected Created after drop, got %v", result)
	}
}

func TestMigrateTable_AdditiveColumn(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()

	baseCols := []ColumnDescriptor{
		{Name: "id", Storage: StorageInteger, IsPrimaryKey: true, IsAutoIncrement: true,
			Get: func(r any) any { return r.(*item).ID }, Set: func(r any, v any) { r.(*item).ID = v.(int64) }},
	}
	baseTD, err := NewTableDescriptor("items", baseCols)
	if err != nil {
		t.Fatalf("NewTableDescriptor: %v", err)
	}
	if _, err := MigrateTable(ctx, conn, baseTD); err != nil {
		t.Fatalf("create base table: %v", err)
	}

	existingBefore, err := readExistingColumns(ctx, conn.db, "items")
	if err != nil {
		t.Fatalf("readExistingColumns: %v", err)
	}
	if existingBefore["name"] || existingBefore["tag"] {
		t.Fatalf("expected name/tag absent before migration, got %v", existingBefore)
	}

	fullTD := itemDescriptor(t)
	result, err := MigrateTable(ctx, conn, fullTD)
	if err != nil {
		t.Fatalf("migrate additive: %v", err)
	}
	if result != Migrated {
		t.Fatalf("expected Migrated, got %v", result)
	}

	existingAfter, err := readExistingColumns(ctx, conn.db, "items")
	if err != nil {
		t.Fatalf("readExistingColumns: %v", err)
	}
	if !existingAfter["name"] || !existingAfter["tag"] {
		t.Fatalf("expected name and tag columns added, got %v", existingAfter)
	}

	if err := Insert(ctx, conn, fullTD, &item{Name: "x", Tag: "t"}); err != nil {
		t.Fatalf("insert after migration: %v", err)
	}
}
