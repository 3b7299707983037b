package ormlite

import (
	"context"
	"testing"
	"time"
)

// richRecord exercises every supported storage family: integer,
// real, text, blob, bool-as-integer, and time (both ISO-8601 text and
// Unix-ticks integer representations).
type richRecord struct {
	ID        int64
	Count     int32
	Price     float64
	Label     string
	Payload   []byte
	Done      bool
	UpdatedAt time.Time
	ExpiresAt time.Time
}

func richRecordDescriptor(t *testing.T) *TableDescriptor {
	t.Helper()
	td, err := NewTableDescriptor("rich_records", []ColumnDescriptor{
		{Name: "id", Storage: StorageInteger, IsPrimaryKey: true, IsAutoIncrement: true,
			Get: func(r any) any { return r.(*richRecord).ID }, Set: func(r any, v any) { r.(*richRecord).ID = v.(int64) }},
		{Name: "count", Storage: StorageInteger,
			Get: func(r any) any { return r.(*richRecord).Count }, Set: func(r any, v any) { r.(*richRecord).Count = int32(v.(int64)) }},
		{Name: "price", Storage: StorageReal,
			Get: func(r any) any { return r.(*richRecord).Price }, Set: func(r any, v any) { r.(*richRecord).Price = v.(float64) }},
		{Name: "label", Storage: StorageText,
			Get: func(r any) any { return r.(*richRecord).Label }, Set: func(r any, v any) { r.(*richRecord).Label = v.(string) }},
		{Name: "payload", Storage: StorageBlob, IsNullable: true,
			Get: func(r any) any { return r.(*richRecord).Payload }, Set: func(r any, v any) {
				if v == nil {
					return
				}
				r.(*richRecord).Payload = v.([]byte)
			}},
		{Name: "done", Storage: StorageInteger, IsBool: true,
			Get: func(r any) any { return r.(*richRecord).Done }, Set: func(r any, v any) { r.(*richRecord).Done = v.(bool) }},
		{Name: "updated_at", Storage: StorageText, IsTime: true,
			Get: func(r any) any { return r.(*richRecord).UpdatedAt }, Set: func(r any, v any) { r.(*richRecord).UpdatedAt = v.(time.Time) }},
		{Name: "expires_at", Storage: StorageInteger, IsTime: true, TimeAsTicks: true,
			Get: func(r any) any { return r.(*richRecord).ExpiresAt }, Set: func(r any, v any) { r.(*richRecord).ExpiresAt = v.(time.Time) }},
	})
	if err != nil {
		t.Fatalf("NewTableDescriptor: %v", err)
	}
	return td
}

func TestRoundTrip_AllStorageFamilies(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)
	td := richRecordDescriptor(t)
	if _, err := MigrateTable(ctx, conn, td); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	updated := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	expires := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	rec := &richRecord{
		Count: 7, Price: 19.99, Label: "widget", Payload: []byte{0x01, 0x02, 0x03},
		Done: true, UpdatedAt: updated, ExpiresAt: expires,
	}
	if err := Insert(ctx, conn, td, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	found, ok, err := FindByKey(ctx, conn, td, func() *richRecord { return &richRecord{} }, rec.ID)
	if err != nil || !ok {
		t.Fatalf("FindByKey: ok=%v err=%v", ok, err)
	}
	if found.Count != 7 || found.Price != 19.99 || found.Label != "widget" || !found.Done {
		t.Fatalf("round-trip mismatch: %+v", found)
	}
	if len(found.Payload) != 3 || found.Payload[1] != 0x02 {
		t.Fatalf("expected payload round-trip, got %v", found.Payload)
	}
	if !found.UpdatedAt.Equal(updated) {
		t.Fatalf("expected UpdatedAt %v, got %v", updated, found.UpdatedAt)
	}
	if !found.ExpiresAt.Equal(expires) {
		t.Fatalf("expected ExpiresAt %v, got %v", expires, found.ExpiresAt)
	}
}
