package ormlite

import (
	"context"
	"path/filepath"
	"testing"
)

// item is the package's shared test record: an auto-increment PK and two
// NOT NULL text columns.
type item struct {
	ID   int64
	Name string
	Tag  string
	Note string
}

func itemDescriptor(t *testing.T, extraCols ...ColumnDescriptor) *TableDescriptor {
	t.Helper()
	cols := []ColumnDescriptor{
		{
			Name: "id", Storage: StorageInteger,
			IsPrimaryKey: true, IsAutoIncrement: true,
			Get: func(r any) any { return r.(*item).ID },
			Set: func(r any, v any) { r.(*item).ID = v.(int64) },
		},
		{
			Name: "name", Storage: StorageText,
			Get: func(r any) any { return r.(*item).Name },
			Set: func(r any, v any) { r.(*item).Name = v.(string) },
		},
		{
			Name: "tag", Storage: StorageText,
			Get: func(r any) any { return r.(*item).Tag },
			Set: func(r any, v any) { r.(*item).Tag = v.(string) },
		},
	}
	cols = append(cols, extraCols...)
	td, err := NewTableDescriptor("items", cols)
	if err != nil {
		t.Fatalf("NewTableDescriptor: %v", err)
	}
	return td
}

func newItem() *item { return &item{} }

func openTestConn(t *testing.T) *Connection {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := Open(ctx, path, DefaultOpenOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("Connection.Close: %v", err)
		}
	})
	return conn
}
